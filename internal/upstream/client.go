package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"feedshop-gateway/internal/entity"
	"feedshop-gateway/pkg/config"
	"feedshop-gateway/pkg/logger"
)

// authorIDPlaceholder is sent when no profile id is cached; the
// upstream derives the real author from the bearer token and only
// requires the field to be present.
const authorIDPlaceholder = "ignore"

// Error is the flat failure kind for every upstream call: any non-2xx
// status with whatever detail message the body carried.
type Error struct {
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Detail)
}

// Client is a typed client for the remote feed/shop API. It never
// retries; failures are terminal to the triggering action.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.UpstreamBaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.UpstreamTimeout},
		logger:     log,
	}
}

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

type createPostRequest struct {
	Content  string `json:"content"`
	ImageURL string `json:"image_url,omitempty"`
	AuthorID string `json:"author_id"`
}

type orderResponse struct {
	OrderID string `json:"order_id"`
}

// Signup registers a new account and returns the issued bearer token.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (string, error) {
	var resp tokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/signup", "", req, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp tokenResponse
	req := loginRequest{Username: username, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", "", req, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// Me fetches the profile behind the given token.
func (c *Client) Me(ctx context.Context, token string) (*entity.Profile, error) {
	var profile entity.Profile
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me", token, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListPosts returns the full feed in server order.
func (c *Client) ListPosts(ctx context.Context, token string) ([]entity.Post, error) {
	var posts []entity.Post
	if err := c.doJSON(ctx, http.MethodGet, "/posts", token, nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// CreatePost publishes new content. authorID may be empty; the upstream
// resolves the author from the token either way.
func (c *Client) CreatePost(ctx context.Context, token, content, imageURL, authorID string) (*entity.Post, error) {
	if authorID == "" {
		authorID = authorIDPlaceholder
	}
	req := createPostRequest{Content: content, ImageURL: imageURL, AuthorID: authorID}

	var post entity.Post
	if err := c.doJSON(ctx, http.MethodPost, "/posts", token, req, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// LikePost toggles the caller's like. The response body is the updated
// like state, which the caller ignores in favor of a full refetch.
func (c *Client) LikePost(ctx context.Context, token, postID string) error {
	return c.doJSON(ctx, http.MethodPost, "/posts/"+postID+"/like", token, nil, nil)
}

// ListProducts returns the full catalog.
func (c *Client) ListProducts(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	if err := c.doJSON(ctx, http.MethodGet, "/products", "", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Seed asks the upstream to populate sample data. Its response body is
// not consumed.
func (c *Client) Seed(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/seed", "", nil, nil)
}

// CreateOrder submits the order payload and returns the order id.
func (c *Client) CreateOrder(ctx context.Context, order *entity.Order) (string, error) {
	var resp orderResponse
	if err := c.doJSON(ctx, http.MethodPost, "/orders", "", order, &resp); err != nil {
		return "", err
	}
	return resp.OrderID, nil
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Error("Upstream request %s %s failed: %v", method, path, err)
		}
		return fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{StatusCode: resp.StatusCode, Detail: extractDetail(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode upstream response: %w", err)
	}
	return nil
}

// extractDetail pulls a "detail" message from an error body on a
// best-effort basis; malformed JSON falls back to a generic message.
func extractDetail(body io.Reader) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return "request failed"
}

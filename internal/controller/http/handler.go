package http

import (
	"errors"
	"net/http"

	"feedshop-gateway/internal/session"
	"feedshop-gateway/internal/upstream"
	"feedshop-gateway/internal/usecase"
	"feedshop-gateway/pkg/logger"
	"feedshop-gateway/pkg/s3"

	"github.com/gin-gonic/gin"
)

// Handler bundles the gateway's HTTP surface: auth/session, feed,
// shop, and image uploads.
type Handler struct {
	auth    usecase.AuthUseCase
	feed    usecase.FeedUseCase
	shop    usecase.ShopUseCase
	uploads *s3.Client
	logger  *logger.Logger
}

func NewHandler(
	auth usecase.AuthUseCase,
	feed usecase.FeedUseCase,
	shop usecase.ShopUseCase,
	uploads *s3.Client,
	logger *logger.Logger,
) *Handler {
	return &Handler{
		auth:    auth,
		feed:    feed,
		shop:    shop,
		uploads: uploads,
		logger:  logger,
	}
}

// sessionID pulls the session id set by the session middleware; a
// missing value means the route was wired without it.
func (h *Handler) sessionID(c *gin.Context) (string, bool) {
	sid := c.GetString("session_id")
	if sid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return sid, true
}

// respondError maps domain and upstream failures onto HTTP statuses.
// fallback replaces the generic upstream message so each action keeps
// its own failure wording.
func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
	case errors.Is(err, usecase.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrEmptyContent), errors.Is(err, usecase.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrCheckoutInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		var upstreamErr *upstream.Error
		if errors.As(err, &upstreamErr) {
			msg := upstreamErr.Detail
			if msg == "" || msg == "request failed" {
				msg = fallback
			}
			status := upstreamErr.StatusCode
			if status >= http.StatusInternalServerError {
				status = http.StatusBadGateway
			}
			c.JSON(status, gin.H{"error": msg})
			return
		}
		h.logger.Error("Request failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": fallback})
	}
}

package usecase

import (
	"context"
	"errors"
	"strings"

	"feedshop-gateway/internal/entity"
	"feedshop-gateway/internal/session"
	"feedshop-gateway/internal/upstream"
	"feedshop-gateway/pkg/jwt"
	"feedshop-gateway/pkg/logger"
)

// ErrNotAuthenticated marks operations that need an upstream token on
// the session (the feed) when only a guest session is present.
var ErrNotAuthenticated = errors.New("login required")

type SignupInput struct {
	Username string
	Email    string
	Password string
	FullName string
}

type AuthUseCase interface {
	Signup(ctx context.Context, input SignupInput) (*entity.Session, string, error)
	Login(ctx context.Context, username, password string) (*entity.Session, string, error)
	GuestSession(ctx context.Context) (*entity.Session, string, error)
	Logout(ctx context.Context, sessionID string) error
	CurrentProfile(ctx context.Context, sessionID string) (*entity.Profile, error)
}

type authUseCase struct {
	api        *upstream.Client
	sessions   session.Store
	jwtService *jwt.Service
	logger     *logger.Logger
}

func NewAuthUseCase(api *upstream.Client, sessions session.Store, jwtService *jwt.Service, logger *logger.Logger) AuthUseCase {
	return &authUseCase{
		api:        api,
		sessions:   sessions,
		jwtService: jwtService,
		logger:     logger,
	}
}

func (uc *authUseCase) Signup(ctx context.Context, input SignupInput) (*entity.Session, string, error) {
	req := upstream.SignupRequest{
		Username: strings.TrimSpace(input.Username),
		Email:    strings.TrimSpace(input.Email),
		Password: input.Password,
		FullName: strings.TrimSpace(input.FullName),
	}

	token, err := uc.api.Signup(ctx, req)
	if err != nil {
		return nil, "", err
	}
	return uc.establishSession(ctx, token)
}

func (uc *authUseCase) Login(ctx context.Context, username, password string) (*entity.Session, string, error) {
	token, err := uc.api.Login(ctx, strings.TrimSpace(username), password)
	if err != nil {
		return nil, "", err
	}
	return uc.establishSession(ctx, token)
}

// GuestSession issues an unauthenticated session so shoppers can hold a
// cart and check out without an account.
func (uc *authUseCase) GuestSession(ctx context.Context) (*entity.Session, string, error) {
	return uc.establishSession(ctx, "")
}

func (uc *authUseCase) Logout(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}

// CurrentProfile returns the profile cached at login. A nil profile is
// not an error: the login-time fetch may have silently degraded.
func (uc *authUseCase) CurrentProfile(ctx context.Context, sessionID string) (*entity.Profile, error) {
	sess, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Profile, nil
}

// establishSession stores the token and fetches the profile exactly
// once. A failed profile fetch leaves the profile unset but keeps the
// session usable.
func (uc *authUseCase) establishSession(ctx context.Context, token string) (*entity.Session, string, error) {
	sess, err := uc.sessions.Create(ctx, token)
	if err != nil {
		uc.logger.Error("Failed to create session: %v", err)
		return nil, "", errors.New("failed to create session")
	}

	if token != "" {
		profile, err := uc.api.Me(ctx, token)
		if err != nil {
			uc.logger.Warn("Profile fetch failed, continuing without profile: %v", err)
		} else {
			sess.Profile = profile
			if err := uc.sessions.Save(ctx, sess); err != nil {
				uc.logger.Error("Failed to save session profile: %v", err)
			}
		}
	}

	gatewayToken, err := uc.jwtService.GenerateToken(sess.ID)
	if err != nil {
		uc.logger.Error("Failed to generate session token: %v", err)
		return nil, "", errors.New("failed to generate session token")
	}
	return sess, gatewayToken, nil
}

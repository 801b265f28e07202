package usecase

import (
	"context"
	"errors"
	"strings"

	"feedshop-gateway/internal/entity"
	"feedshop-gateway/internal/session"
	"feedshop-gateway/internal/upstream"
	"feedshop-gateway/pkg/logger"
)

// ErrEmptyContent rejects posts that are empty after trimming.
var ErrEmptyContent = errors.New("content must not be empty")

type FeedUseCase interface {
	ListPosts(ctx context.Context, sessionID string) ([]entity.Post, error)
	CreatePost(ctx context.Context, sessionID, content, imageURL string) (*entity.Post, error)
	LikePost(ctx context.Context, sessionID, postID string) ([]entity.Post, error)
}

type feedUseCase struct {
	api      *upstream.Client
	sessions session.Store
	logger   *logger.Logger
}

func NewFeedUseCase(api *upstream.Client, sessions session.Store, logger *logger.Logger) FeedUseCase {
	return &feedUseCase{
		api:      api,
		sessions: sessions,
		logger:   logger,
	}
}

// ListPosts replaces the whole view with whatever the upstream returns;
// no client-side ordering or pagination.
func (uc *feedUseCase) ListPosts(ctx context.Context, sessionID string) ([]entity.Post, error) {
	sess, err := uc.authenticated(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return uc.api.ListPosts(ctx, sess.Token)
}

func (uc *feedUseCase) CreatePost(ctx context.Context, sessionID, content, imageURL string) (*entity.Post, error) {
	sess, err := uc.authenticated(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	var authorID string
	if sess.Profile != nil {
		authorID = sess.Profile.ID
	}
	return uc.api.CreatePost(ctx, sess.Token, content, imageURL, authorID)
}

// LikePost toggles the like upstream, ignores the mutation response and
// refetches the whole feed so counts always come from the server.
func (uc *feedUseCase) LikePost(ctx context.Context, sessionID, postID string) ([]entity.Post, error) {
	sess, err := uc.authenticated(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := uc.api.LikePost(ctx, sess.Token, postID); err != nil {
		return nil, err
	}
	return uc.api.ListPosts(ctx, sess.Token)
}

func (uc *feedUseCase) authenticated(ctx context.Context, sessionID string) (*entity.Session, error) {
	sess, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	return sess, nil
}

package session

import (
	"context"
	"errors"

	"feedshop-gateway/internal/entity"
)

var (
	// ErrNotFound is returned for unknown or expired session ids.
	ErrNotFound = errors.New("session not found")

	// ErrCheckoutInFlight is returned when an idempotency key is
	// reserved but its order has not been recorded yet.
	ErrCheckoutInFlight = errors.New("checkout already in progress")
)

// Store holds gateway sessions: the upstream token plus the profile
// cached at login. Implementations also track checkout idempotency
// keys so a replayed submission maps back to the original order.
type Store interface {
	Create(ctx context.Context, token string) (*entity.Session, error)
	Get(ctx context.Context, id string) (*entity.Session, error)
	Save(ctx context.Context, s *entity.Session) error
	Delete(ctx context.Context, id string) error

	// ReserveCheckout claims key for a checkout attempt. fresh is true
	// when this attempt is the first; otherwise orderID carries the
	// recorded order, or ErrCheckoutInFlight is returned while the
	// first attempt is still pending.
	ReserveCheckout(ctx context.Context, sessionID, key string) (orderID string, fresh bool, err error)

	// CompleteCheckout records the order id behind key.
	CompleteCheckout(ctx context.Context, sessionID, key, orderID string) error

	// ReleaseCheckout frees key after a failed attempt so the user can
	// retry with the preserved cart.
	ReleaseCheckout(ctx context.Context, sessionID, key string) error
}

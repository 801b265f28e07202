package session

import (
	"context"
	"testing"
	"time"

	"feedshop-gateway/internal/entity"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStore_CreateAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess, err := store.Create(ctx, "upstream-token")
	assert.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "upstream-token", sess.Token)
	assert.True(t, sess.Authenticated())

	got, err := store.Get(ctx, sess.ID)
	assert.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, "upstream-token", got.Token)
	assert.Nil(t, got.Profile)
}

func TestMemoryStore_GuestSession(t *testing.T) {
	store := NewMemoryStore()

	sess, err := store.Create(context.Background(), "")
	assert.NoError(t, err)
	assert.False(t, sess.Authenticated())
}

func TestMemoryStore_Get_NotFound(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_SaveProfile(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess, _ := store.Create(ctx, "tok")
	sess.Profile = &entity.Profile{Username: "alice", FullName: "Alice A"}
	assert.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, sess.ID)
	assert.NoError(t, err)
	assert.NotNil(t, got.Profile)
	assert.Equal(t, "alice", got.Profile.Username)
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess, _ := store.Create(ctx, "tok")
	assert.NoError(t, store.Delete(ctx, sess.ID))

	_, err := store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Get_ReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess, _ := store.Create(ctx, "tok")
	sess.Profile = &entity.Profile{Username: "alice"}
	_ = store.Save(ctx, sess)

	got, _ := store.Get(ctx, sess.ID)
	got.Profile.Username = "mallory"

	again, _ := store.Get(ctx, sess.ID)
	assert.Equal(t, "alice", again.Profile.Username)
}

func TestMemoryStore_CheckoutReservation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	// First reservation is fresh
	orderID, fresh, err := store.ReserveCheckout(ctx, "s1", "key-1")
	assert.NoError(t, err)
	assert.True(t, fresh)
	assert.Empty(t, orderID)

	// Same key while pending → in flight
	_, _, err = store.ReserveCheckout(ctx, "s1", "key-1")
	assert.ErrorIs(t, err, ErrCheckoutInFlight)

	// Completion records the order; replay returns it
	assert.NoError(t, store.CompleteCheckout(ctx, "s1", "key-1", "ord-1"))
	orderID, fresh, err = store.ReserveCheckout(ctx, "s1", "key-1")
	assert.NoError(t, err)
	assert.False(t, fresh)
	assert.Equal(t, "ord-1", orderID)
}

func TestMemoryStore_CheckoutRelease(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, fresh, _ := store.ReserveCheckout(ctx, "s1", "key-1")
	assert.True(t, fresh)

	// Release after a failed attempt frees the key for retry
	assert.NoError(t, store.ReleaseCheckout(ctx, "s1", "key-1"))

	_, fresh, err := store.ReserveCheckout(ctx, "s1", "key-1")
	assert.NoError(t, err)
	assert.True(t, fresh)
}

func TestMemoryStore_CheckoutScopedBySession(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, fresh1, _ := store.ReserveCheckout(ctx, "s1", "key-1")
	_, fresh2, _ := store.ReserveCheckout(ctx, "s2", "key-1")
	assert.True(t, fresh1)
	assert.True(t, fresh2)
}

func TestMemoryStore_SessionExpires(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()
	store.now = func() time.Time { return now }

	sess, _ := store.Create(ctx, "tok")

	now = now.Add(memorySessionTTL + time.Second)
	_, err := store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, store.sessions)
}

func TestMemoryStore_CheckoutExpires(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()
	store.now = func() time.Time { return now }

	_, fresh, _ := store.ReserveCheckout(ctx, "s1", "key-1")
	assert.True(t, fresh)
	assert.NoError(t, store.CompleteCheckout(ctx, "s1", "key-1", "ord-1"))

	// After the retention window the same key reserves fresh again
	now = now.Add(checkoutTTL + time.Second)
	_, fresh, err := store.ReserveCheckout(ctx, "s1", "key-1")
	assert.NoError(t, err)
	assert.True(t, fresh)
}

func TestMemoryStore_SweepDropsExpired(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()
	store.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		_, _, _ = store.ReserveCheckout(ctx, "s1", string(rune('a'+i)))
	}
	_, _ = store.Create(ctx, "tok")

	now = now.Add(memorySessionTTL + time.Second)
	_, _ = store.Create(ctx, "tok2")

	assert.Len(t, store.sessions, 1)
	assert.Empty(t, store.checkouts)
}

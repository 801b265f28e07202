package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"feedshop-gateway/internal/cart"
	"feedshop-gateway/internal/entity"
	"feedshop-gateway/internal/session"
	"feedshop-gateway/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func newShopFixture(serverURL string) (ShopUseCase, *cart.Store, string) {
	carts := cart.NewStore()
	store := session.NewMemoryStore()
	sess, _ := store.Create(context.Background(), "")
	uc := NewShopUseCase(newUpstreamClient(serverURL), carts, store, logger.New())
	return uc, carts, sess.ID
}

func phone() entity.Product {
	return entity.Product{ID: "prod-1", Title: "Galaxy S24", Price: 10.00, Category: "phones"}
}

func TestListProducts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]entity.Product{phone()})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	uc, _, _ := newShopFixture(server.URL)
	products, err := uc.ListProducts(context.Background())

	assert.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, "Galaxy S24", products[0].Title)
}

func TestSeedProducts_SeedThenRefetch(t *testing.T) {
	var seeded atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/seed", func(w http.ResponseWriter, r *http.Request) {
		seeded.Store(true)
		w.Write([]byte(`{"inserted": 8}`))
	})
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		if !seeded.Load() {
			json.NewEncoder(w).Encode([]entity.Product{})
			return
		}
		json.NewEncoder(w).Encode([]entity.Product{phone()})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	uc, _, _ := newShopFixture(server.URL)
	products, err := uc.SeedProducts(context.Background())

	assert.NoError(t, err)
	assert.True(t, seeded.Load())
	assert.Len(t, products, 1)
}

func TestSeedProducts_SeedFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/seed", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"detail": "seeding unavailable"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	uc, _, _ := newShopFixture(server.URL)
	_, err := uc.SeedProducts(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "seeding unavailable")
}

func TestAddToCart_View(t *testing.T) {
	uc, _, sid := newShopFixture("http://unused.invalid")

	view := uc.AddToCart(sid, phone())
	assert.Equal(t, 1, view.Count)
	assert.Equal(t, 10.00, view.Subtotal)

	view = uc.AddToCart(sid, phone())
	assert.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.Equal(t, 20.00, view.Subtotal)
}

func TestCheckout_Success_ClearsCart(t *testing.T) {
	var gotOrder entity.Order
	mux := http.NewServeMux()
	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotOrder)
		json.NewEncoder(w).Encode(map[string]string{"order_id": "ord-1"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	uc, _, sid := newShopFixture(server.URL)
	uc.AddToCart(sid, phone())
	uc.AddToCart(sid, phone())

	orderID, err := uc.Checkout(context.Background(), sid, CheckoutInput{})

	assert.NoError(t, err)
	assert.Equal(t, "ord-1", orderID)

	// Cart is empty after success
	assert.Empty(t, uc.Cart(sid).Items)

	// Order payload: one line, qty 2, subtotal 20, shipping 0
	assert.Len(t, gotOrder.Items, 1)
	assert.Equal(t, 2, gotOrder.Items[0].Quantity)
	assert.Equal(t, 20.00, gotOrder.Subtotal)
	assert.Equal(t, 0.0, gotOrder.Shipping)
	assert.Equal(t, 20.00, gotOrder.Total)
	assert.NotEmpty(t, gotOrder.IdempotencyKey)

	// Placeholder identity fills in when the caller sends none
	assert.Equal(t, "Guest Shopper", gotOrder.Customer.Name)
	assert.Equal(t, "1 Demo Street", gotOrder.ShippingAddress.Line1)
}

func TestCheckout_ExplicitCustomer(t *testing.T) {
	var gotOrder entity.Order
	mux := http.NewServeMux()
	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotOrder)
		json.NewEncoder(w).Encode(map[string]string{"order_id": "ord-2"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	uc, _, sid := newShopFixture(server.URL)
	uc.AddToCart(sid, phone())

	_, err := uc.Checkout(context.Background(), sid, CheckoutInput{
		Customer: entity.Customer{Name: "Alice A", Email: "alice@example.com"},
		ShippingAddress: entity.ShippingAddress{
			Line1: "42 Real Road", City: "Oakland", State: "CA", Zip: "94601", Country: "US",
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, "Alice A", gotOrder.Customer.Name)
	assert.Equal(t, "42 Real Road", gotOrder.ShippingAddress.Line1)
}

func TestCheckout_Failure_PreservesCart(t *testing.T) {
	var failNext atomic.Bool
	failNext.Store(true)

	mux := http.NewServeMux()
	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		if failNext.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"detail": "orders unavailable"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"order_id": "ord-retry"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	uc, _, sid := newShopFixture(server.URL)
	uc.AddToCart(sid, phone())
	uc.AddToCart(sid, phone())

	_, err := uc.Checkout(context.Background(), sid, CheckoutInput{IdempotencyKey: "key-1"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "orders unavailable")

	// Cart unchanged, ready for retry
	view := uc.Cart(sid)
	assert.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)

	// The failed attempt released its key, so the same key retries
	failNext.Store(false)
	orderID, err := uc.Checkout(context.Background(), sid, CheckoutInput{IdempotencyKey: "key-1"})
	assert.NoError(t, err)
	assert.Equal(t, "ord-retry", orderID)
	assert.Empty(t, uc.Cart(sid).Items)
}

func TestCheckout_IdempotentReplay(t *testing.T) {
	var orderCalls int64
	mux := http.NewServeMux()
	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&orderCalls, 1)
		json.NewEncoder(w).Encode(map[string]string{"order_id": "ord-1"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	uc, _, sid := newShopFixture(server.URL)
	uc.AddToCart(sid, phone())

	first, err := uc.Checkout(context.Background(), sid, CheckoutInput{IdempotencyKey: "key-1"})
	assert.NoError(t, err)
	assert.Empty(t, uc.Cart(sid).Items)

	// The success cleared the cart; a client that lost the response and
	// retries the same key still gets the recorded order id, with no
	// second upstream POST and no empty-cart rejection
	second, err := uc.Checkout(context.Background(), sid, CheckoutInput{IdempotencyKey: "key-1"})
	assert.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "ord-1", second)
	assert.Equal(t, int64(1), atomic.LoadInt64(&orderCalls))
}

func TestCheckout_EmptyCartReleasesKey(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"order_id": "ord-2"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	uc, _, sid := newShopFixture(server.URL)

	// Rejected for the empty cart, but the key must not stay reserved
	_, err := uc.Checkout(context.Background(), sid, CheckoutInput{IdempotencyKey: "key-2"})
	assert.ErrorIs(t, err, ErrEmptyCart)

	uc.AddToCart(sid, phone())
	orderID, err := uc.Checkout(context.Background(), sid, CheckoutInput{IdempotencyKey: "key-2"})
	assert.NoError(t, err)
	assert.Equal(t, "ord-2", orderID)
}

func TestCheckout_EmptyCart(t *testing.T) {
	uc, _, sid := newShopFixture("http://unused.invalid")

	_, err := uc.Checkout(context.Background(), sid, CheckoutInput{})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckout_InFlightGuard(t *testing.T) {
	uc, _, sid := newShopFixture("http://unused.invalid")
	uc.AddToCart(sid, phone())

	// Simulate a pending first attempt by reserving the key directly
	shop := uc.(*shopUseCase)
	_, _, err := shop.sessions.ReserveCheckout(context.Background(), sid, "key-1")
	assert.NoError(t, err)

	_, err = uc.Checkout(context.Background(), sid, CheckoutInput{IdempotencyKey: "key-1"})
	assert.ErrorIs(t, err, session.ErrCheckoutInFlight)
}

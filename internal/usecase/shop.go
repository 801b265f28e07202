package usecase

import (
	"context"
	"errors"

	"feedshop-gateway/internal/cart"
	"feedshop-gateway/internal/entity"
	"feedshop-gateway/internal/session"
	"feedshop-gateway/internal/upstream"
	"feedshop-gateway/pkg/logger"

	"github.com/google/uuid"
)

// ErrEmptyCart rejects checkout attempts with nothing to order.
var ErrEmptyCart = errors.New("cart is empty")

// Demo fallbacks for the one-click flow; explicit checkout fields win
// when the caller provides them.
var (
	defaultCustomer = entity.Customer{
		Name:  "Guest Shopper",
		Email: "guest@example.com",
	}
	defaultAddress = entity.ShippingAddress{
		Line1:   "1 Demo Street",
		City:    "Springfield",
		State:   "CA",
		Zip:     "94000",
		Country: "US",
	}
)

type CheckoutInput struct {
	Customer        entity.Customer
	ShippingAddress entity.ShippingAddress
	IdempotencyKey  string
}

// CartView is the cart as rendered to clients: items in insertion
// order plus derived count and subtotal.
type CartView struct {
	Items    []entity.CartItem `json:"items"`
	Count    int               `json:"count"`
	Subtotal float64           `json:"subtotal"`
}

type ShopUseCase interface {
	ListProducts(ctx context.Context) ([]entity.Product, error)
	SeedProducts(ctx context.Context) ([]entity.Product, error)
	Cart(sessionID string) CartView
	AddToCart(sessionID string, product entity.Product) CartView
	Checkout(ctx context.Context, sessionID string, input CheckoutInput) (string, error)
}

type shopUseCase struct {
	api      *upstream.Client
	carts    *cart.Store
	sessions session.Store
	logger   *logger.Logger
}

func NewShopUseCase(api *upstream.Client, carts *cart.Store, sessions session.Store, logger *logger.Logger) ShopUseCase {
	return &shopUseCase{
		api:      api,
		carts:    carts,
		sessions: sessions,
		logger:   logger,
	}
}

func (uc *shopUseCase) ListProducts(ctx context.Context) ([]entity.Product, error) {
	return uc.api.ListProducts(ctx)
}

// SeedProducts triggers upstream sample-data seeding, then refetches
// the catalog so the caller sees the populated list.
func (uc *shopUseCase) SeedProducts(ctx context.Context) ([]entity.Product, error) {
	if err := uc.api.Seed(ctx); err != nil {
		return nil, err
	}
	return uc.api.ListProducts(ctx)
}

func (uc *shopUseCase) Cart(sessionID string) CartView {
	return viewOf(uc.carts.Items(sessionID))
}

func (uc *shopUseCase) AddToCart(sessionID string, product entity.Product) CartView {
	return viewOf(uc.carts.Add(sessionID, product))
}

// Checkout serializes the cart into an order and submits it once per
// idempotency key. Success clears the cart; failure preserves it and
// releases the key for retry.
func (uc *shopUseCase) Checkout(ctx context.Context, sessionID string, input CheckoutInput) (string, error) {
	key := input.IdempotencyKey
	if key == "" {
		key = uuid.New().String()
	}

	// Replay lookup comes before the cart check: a retried key whose
	// first attempt succeeded arrives with an already cleared cart and
	// must still get the recorded order id back.
	orderID, fresh, err := uc.sessions.ReserveCheckout(ctx, sessionID, key)
	if err != nil {
		return "", err
	}
	if !fresh {
		uc.logger.Info("Checkout replay for key %s, returning order %s", key, orderID)
		return orderID, nil
	}

	items := uc.carts.Items(sessionID)
	if len(items) == 0 {
		if relErr := uc.sessions.ReleaseCheckout(ctx, sessionID, key); relErr != nil {
			uc.logger.Error("Failed to release checkout key %s: %v", key, relErr)
		}
		return "", ErrEmptyCart
	}

	order := buildOrder(items, input, key)
	orderID, err = uc.api.CreateOrder(ctx, order)
	if err != nil {
		if relErr := uc.sessions.ReleaseCheckout(ctx, sessionID, key); relErr != nil {
			uc.logger.Error("Failed to release checkout key %s: %v", key, relErr)
		}
		return "", err
	}

	if err := uc.sessions.CompleteCheckout(ctx, sessionID, key, orderID); err != nil {
		uc.logger.Error("Failed to record checkout key %s: %v", key, err)
	}
	uc.carts.Clear(sessionID)

	uc.logger.Info("Order %s placed for session %s", orderID, sessionID)
	return orderID, nil
}

func buildOrder(items []entity.CartItem, input CheckoutInput, key string) *entity.Order {
	customer := input.Customer
	if customer.Name == "" {
		customer.Name = defaultCustomer.Name
	}
	if customer.Email == "" {
		customer.Email = defaultCustomer.Email
	}

	address := input.ShippingAddress
	if address.Line1 == "" {
		address = defaultAddress
	}

	orderItems := make([]entity.OrderItem, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, entity.OrderItem{
			ProductID: item.ID,
			Title:     item.Title,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	subtotal := cart.Subtotal(items)
	return &entity.Order{
		Customer:        customer,
		ShippingAddress: address,
		Items:           orderItems,
		Subtotal:        subtotal,
		Shipping:        0,
		Total:           subtotal,
		IdempotencyKey:  key,
	}
}

func viewOf(items []entity.CartItem) CartView {
	return CartView{
		Items:    items,
		Count:    cart.Count(items),
		Subtotal: cart.Subtotal(items),
	}
}

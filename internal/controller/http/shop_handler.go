package http

import (
	"errors"
	"io"
	"net/http"

	"feedshop-gateway/internal/entity"
	"feedshop-gateway/internal/usecase"

	"github.com/gin-gonic/gin"
)

// AddCartItemRequest carries the product snapshot the cart line is
// built from, the same shape the catalog returned it in.
type AddCartItemRequest struct {
	ID          string  `json:"id" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"gte=0"`
	ImageURL    string  `json:"image_url"`
	Category    string  `json:"category"`
}

type CheckoutRequest struct {
	Customer        entity.Customer        `json:"customer"`
	ShippingAddress entity.ShippingAddress `json:"shipping_address"`
	IdempotencyKey  string                 `json:"idempotency_key"`
}

// ListProducts godoc
// @Summary      List products
// @Description  Return the full catalog from the upstream service
// @Tags         shop
// @Produce      json
// @Success      200  {array}   entity.Product
// @Failure      502  {object}  map[string]string
// @Router       /products [get]
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.shop.ListProducts(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to load products")
		return
	}
	c.JSON(http.StatusOK, products)
}

// SeedProducts godoc
// @Summary      Seed sample data
// @Description  Ask the upstream to seed sample products, then return the refreshed catalog
// @Tags         shop
// @Produce      json
// @Success      200  {array}   entity.Product
// @Failure      502  {object}  map[string]string
// @Router       /products/seed [post]
func (h *Handler) SeedProducts(c *gin.Context) {
	products, err := h.shop.SeedProducts(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to seed products")
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetCart godoc
// @Summary      View the cart
// @Description  Return line items with derived count and subtotal
// @Tags         shop
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  usecase.CartView
// @Failure      401  {object}  map[string]string
// @Router       /cart [get]
func (h *Handler) GetCart(c *gin.Context) {
	sid, ok := h.sessionID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.shop.Cart(sid))
}

// AddCartItem godoc
// @Summary      Add to cart
// @Description  Add a product snapshot; repeated adds bump the quantity
// @Tags         shop
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body AddCartItemRequest true "Product snapshot"
// @Success      200  {object}  usecase.CartView
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /cart/items [post]
func (h *Handler) AddCartItem(c *gin.Context) {
	sid, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view := h.shop.AddToCart(sid, entity.Product{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
	})
	c.JSON(http.StatusOK, view)
}

// Checkout godoc
// @Summary      Check out
// @Description  Submit the cart as an order; success clears the cart, failure preserves it
// @Tags         shop
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CheckoutRequest false "Checkout details"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /checkout [post]
func (h *Handler) Checkout(c *gin.Context) {
	sid, ok := h.sessionID(c)
	if !ok {
		return
	}

	// An absent body means "all defaults"; binding is attempted either
	// way so chunked requests (unknown ContentLength) keep their fields.
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orderID, err := h.shop.Checkout(c.Request.Context(), sid, usecase.CheckoutInput{
		Customer:        req.Customer,
		ShippingAddress: req.ShippingAddress,
		IdempotencyKey:  req.IdempotencyKey,
	})
	if err != nil {
		h.respondError(c, err, "Checkout failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": orderID})
}

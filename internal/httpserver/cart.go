package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	cartsvc "storefront/internal/service/cart"
)

type updateLineItemRequest struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  *int   `json:"quantity"`
}

func (h *handlers) getCart(c *gin.Context) {
	key := c.Param(storageKeyParam)
	view, err := h.carts.Get(c.Request.Context(), key)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(key, view, h.drain(key)))
}

// addLineItem adds to the cart and then reveals the drawer, the way the
// product surfaces expect after "add to cart".
func (h *handlers) addLineItem(c *gin.Context) {
	key := c.Param(storageKeyParam)
	var req cartsvc.AddInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	ctx := c.Request.Context()
	if _, err := h.carts.AddItem(ctx, key, req); err != nil {
		h.writeError(c, err)
		return
	}
	view, err := h.carts.Open(ctx, key)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCartResponse(key, view, h.drain(key)))
}

func (h *handlers) updateLineItem(c *gin.Context) {
	key := c.Param(storageKeyParam)
	var req updateLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId required"})
		return
	}
	if req.Quantity == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity required"})
		return
	}
	line := cartsvc.LineInput{ProductID: req.ProductID, Size: req.Size, Color: req.Color}
	view, err := h.carts.UpdateQuantity(c.Request.Context(), key, line, *req.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(key, view, h.drain(key)))
}

func (h *handlers) removeLineItem(c *gin.Context) {
	key := c.Param(storageKeyParam)
	productID := strings.TrimSpace(c.Query("productId"))
	if productID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId required"})
		return
	}
	line := cartsvc.LineInput{ProductID: productID, Size: c.Query("size"), Color: c.Query("color")}
	view, err := h.carts.RemoveItem(c.Request.Context(), key, line)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(key, view, h.drain(key)))
}

func (h *handlers) clearCart(c *gin.Context) {
	h.cartAction(c, h.carts.Clear)
}

func (h *handlers) openCart(c *gin.Context) {
	h.cartAction(c, h.carts.Open)
}

func (h *handlers) closeCart(c *gin.Context) {
	h.cartAction(c, h.carts.Close)
}

func (h *handlers) toggleCart(c *gin.Context) {
	h.cartAction(c, h.carts.Toggle)
}

func (h *handlers) checkout(c *gin.Context) {
	key := c.Param(storageKeyParam)
	handoff, err := h.carts.Checkout(c.Request.Context(), key)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkoutResponse{
		StorageKey: handoff.StorageKey,
		Items:      toLineItems(handoff.Items),
		Totals:     toTotals(handoff.Totals),
		PreparedAt: time.Now().UTC(),
	})
}

func (h *handlers) cartAction(c *gin.Context, action func(ctx context.Context, key string) (cartsvc.View, error)) {
	key := c.Param(storageKeyParam)
	view, err := action(c.Request.Context(), key)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(key, view, h.drain(key)))
}

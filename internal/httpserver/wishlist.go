package httpserver

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"storefront/internal/domain"
)

type addWishlistItemRequest struct {
	Product domain.Product `json:"product"`
}

type moveToCartRequest struct {
	Size  string `json:"size"`
	Color string `json:"color"`
}

func (h *handlers) listWishlist(c *gin.Context) {
	key := c.Param(storageKeyParam)
	items, err := h.wishlists.List(c.Request.Context(), key)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWishlistResponse(key, items, h.drain(key)))
}

func (h *handlers) clearWishlist(c *gin.Context) {
	key := c.Param(storageKeyParam)
	items, err := h.wishlists.Clear(c.Request.Context(), key)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWishlistResponse(key, items, h.drain(key)))
}

// addWishlistItem answers 201 when the product was saved and 200 with
// added=false when it already was.
func (h *handlers) addWishlistItem(c *gin.Context) {
	key := c.Param(storageKeyParam)
	var req addWishlistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if strings.TrimSpace(req.Product.ID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product id required"})
		return
	}
	added, items, err := h.wishlists.Add(c.Request.Context(), key, req.Product)
	if err != nil {
		h.writeError(c, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"added":    added,
		"wishlist": toWishlistResponse(key, items, h.drain(key)),
	})
}

func (h *handlers) removeWishlistItem(c *gin.Context) {
	key := c.Param(storageKeyParam)
	items, err := h.wishlists.Remove(c.Request.Context(), key, c.Param("productId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWishlistResponse(key, items, h.drain(key)))
}

func (h *handlers) toggleWishlistItem(c *gin.Context) {
	key := c.Param(storageKeyParam)
	productID := c.Param("productId")
	var req addWishlistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if req.Product.ID == "" {
		req.Product.ID = productID
	}
	if req.Product.ID != productID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product id mismatch"})
		return
	}
	saved, items, err := h.wishlists.Toggle(c.Request.Context(), key, req.Product)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"saved":    saved,
		"wishlist": toWishlistResponse(key, items, h.drain(key)),
	})
}

// moveToCart accepts an optional body naming the variant to add.
func (h *handlers) moveToCart(c *gin.Context) {
	key := c.Param(storageKeyParam)
	var req moveToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	ctx := c.Request.Context()
	variant := domain.Variant{Size: req.Size, Color: req.Color}
	if _, err := h.wishlists.MoveToCart(ctx, key, c.Param("productId"), variant); err != nil {
		h.writeError(c, err)
		return
	}
	view, err := h.carts.Open(ctx, key)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(key, view, h.drain(key)))
}

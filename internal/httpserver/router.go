package httpserver

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type cartService interface {
	Get(ctx context.Context, storageKey string) (cartsvc.View, error)
	AddItem(ctx context.Context, storageKey string, in cartsvc.AddInput) (cartsvc.View, error)
	RemoveItem(ctx context.Context, storageKey string, in cartsvc.LineInput) (cartsvc.View, error)
	UpdateQuantity(ctx context.Context, storageKey string, in cartsvc.LineInput, quantity int) (cartsvc.View, error)
	Clear(ctx context.Context, storageKey string) (cartsvc.View, error)
	Open(ctx context.Context, storageKey string) (cartsvc.View, error)
	Close(ctx context.Context, storageKey string) (cartsvc.View, error)
	Toggle(ctx context.Context, storageKey string) (cartsvc.View, error)
	Checkout(ctx context.Context, storageKey string) (cartsvc.Handoff, error)
}

type wishlistService interface {
	List(ctx context.Context, storageKey string) ([]domain.WishlistItem, error)
	Add(ctx context.Context, storageKey string, p domain.Product) (bool, []domain.WishlistItem, error)
	Toggle(ctx context.Context, storageKey string, p domain.Product) (bool, []domain.WishlistItem, error)
	Remove(ctx context.Context, storageKey, productID string) ([]domain.WishlistItem, error)
	Clear(ctx context.Context, storageKey string) ([]domain.WishlistItem, error)
	MoveToCart(ctx context.Context, storageKey, productID string, variant domain.Variant) (cartsvc.View, error)
}

type noticeDrainer interface {
	Drain(storageKey string) []domain.Notice
}

// Deps lists the collaborators the handlers call into.
type Deps struct {
	Storage     pinger
	CartSvc     cartService
	WishlistSvc wishlistService
	Notices     noticeDrainer
	NewKey      func() string
}

// Options carries router settings that are not services.
type Options struct {
	AllowOrigins []string
}

const storageKeyParam = "key"

var storageKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, deps Deps, opts Options) (*gin.Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.CartSvc == nil {
		return nil, errors.New("cart service required")
	}
	if deps.WishlistSvc == nil {
		return nil, errors.New("wishlist service required")
	}
	if deps.NewKey == nil {
		return nil, errors.New("key generator required")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(zap.NewStdLog(logger.Named("http")).Writer()), gin.Recovery())
	router.Use(cors.New(corsConfig(opts.AllowOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Storage))
	router.POST("/sessions", sessionHandler(deps.NewKey))

	h := &handlers{logger: logger, carts: deps.CartSvc, wishlists: deps.WishlistSvc, notices: deps.Notices}

	carts := router.Group("/carts/:"+storageKeyParam, storageKeyMiddleware())
	carts.GET("", h.getCart)
	carts.DELETE("", h.clearCart)
	carts.POST("/line-items", h.addLineItem)
	carts.PATCH("/line-items", h.updateLineItem)
	carts.DELETE("/line-items", h.removeLineItem)
	carts.POST("/open", h.openCart)
	carts.POST("/close", h.closeCart)
	carts.POST("/toggle", h.toggleCart)
	carts.GET("/checkout", h.checkout)

	wishlists := router.Group("/wishlists/:"+storageKeyParam, storageKeyMiddleware())
	wishlists.GET("", h.listWishlist)
	wishlists.DELETE("", h.clearWishlist)
	wishlists.POST("/items", h.addWishlistItem)
	wishlists.DELETE("/items/:productId", h.removeWishlistItem)
	wishlists.POST("/items/:productId/toggle", h.toggleWishlistItem)
	wishlists.POST("/items/:productId/move-to-cart", h.moveToCart)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

func storageKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !storageKeyPattern.MatchString(c.Param(storageKeyParam)) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid storage key"})
			return
		}
		c.Next()
	}
}

func sessionHandler(newKey func() string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"key": newKey()})
	}
}

type handlers struct {
	logger    *zap.Logger
	carts     cartService
	wishlists wishlistService
	notices   noticeDrainer
}

func (h *handlers) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidLineItem), errors.Is(err, domain.ErrStorageKeyRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h *handlers) drain(key string) []domain.Notice {
	if h.notices == nil {
		return []domain.Notice{}
	}
	return h.notices.Drain(key)
}

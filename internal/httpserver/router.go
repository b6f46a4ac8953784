package httpserver

import (
	"context"
	"errors"
	"log"
	"time"

	"restaurant-ops/internal/auth"
	"restaurant-ops/internal/domain"
	"restaurant-ops/internal/lifecycle"
	orderrepo "restaurant-ops/internal/repository/order"
	cartsvc "restaurant-ops/internal/service/cart"
	couponsvc "restaurant-ops/internal/service/coupon"
	menusvc "restaurant-ops/internal/service/menu"
	ordersvc "restaurant-ops/internal/service/order"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type establishmentRepo interface {
	GetByKey(ctx context.Context, key string) (*domain.Establishment, error)
}

type menuService interface {
	Menu(ctx context.Context, establishmentID string) (*menusvc.Menu, error)
	Products(ctx context.Context, establishmentID string) ([]domain.Product, error)
	Product(ctx context.Context, establishmentID, id string) (*domain.Product, error)
}

type couponService interface {
	Validate(ctx context.Context, establishmentID, code string, orderTotalCents int64) (*couponsvc.Validation, error)
	Create(ctx context.Context, rule domain.DiscountRule) (*domain.DiscountRule, error)
	List(ctx context.Context, establishmentID string) ([]domain.DiscountRule, error)
	Get(ctx context.Context, establishmentID, code string) (*domain.DiscountRule, error)
	Deactivate(ctx context.Context, establishmentID, code string) (*domain.DiscountRule, error)
}

type orderService interface {
	Quote(ctx context.Context, est domain.Establishment, in ordersvc.QuoteInput) (*ordersvc.Quote, error)
	Create(ctx context.Context, est domain.Establishment, in ordersvc.CreateInput) (*domain.Order, error)
	Get(ctx context.Context, establishmentID, id string) (*domain.Order, error)
	List(ctx context.Context, establishmentID string, filter orderrepo.ListFilter) ([]domain.Order, error)
	Events(ctx context.Context, establishmentID, orderID string) ([]domain.StatusEvent, error)
}

type cartService interface {
	Create(ctx context.Context, est domain.Establishment, in cartsvc.CreateInput) (*cartsvc.View, error)
	Get(ctx context.Context, est domain.Establishment, id string) (*cartsvc.View, error)
	Update(ctx context.Context, est domain.Establishment, id string, in cartsvc.UpdateInput, staff bool) (*cartsvc.View, error)
	Delete(ctx context.Context, est domain.Establishment, id string) error
	Checkout(ctx context.Context, est domain.Establishment, id string, in cartsvc.CheckoutInput) (*domain.Order, error)
}

type boardService interface {
	Columns(ctx context.Context, establishmentID string) ([]lifecycle.Column, error)
	Move(ctx context.Context, establishmentID string, req lifecycle.MoveRequest) (*domain.Order, error)
	Cancel(ctx context.Context, establishmentID string, req lifecycle.MoveRequest) (*domain.Order, error)
	Transition(ctx context.Context, establishmentID string, req lifecycle.MoveRequest) (*domain.Order, error)
}

type staffService interface {
	Login(ctx context.Context, establishmentID, email, password string) (*domain.Staff, string, error)
	Get(ctx context.Context, establishmentID, id string) (*domain.Staff, error)
}

// Deps are the services the router dispatches to.
type Deps struct {
	Establishments establishmentRepo
	Menu           menuService
	Coupons        couponService
	Orders         orderService
	Carts          cartService
	Board          boardService
	Staff          staffService
	Tokens         *auth.Tokens
	CORSOrigins    []string
	ReadyChecks    map[string]ReadyCheck
}

func (d Deps) validate() error {
	switch {
	case d.Establishments == nil:
		return errors.New("establishment repository required")
	case d.Menu == nil, d.Coupons == nil, d.Orders == nil, d.Carts == nil, d.Board == nil, d.Staff == nil:
		return errors.New("all services required")
	case d.Tokens == nil:
		return errors.New("token issuer required")
	}
	return nil
}

var (
	allStaff   = []string{domain.RoleOwner, domain.RoleManager, domain.RoleCashier, domain.RoleKitchen}
	frontStaff = []string{domain.RoleOwner, domain.RoleManager, domain.RoleCashier}
	managers   = []string{domain.RoleOwner, domain.RoleManager}
)

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(corsConfig(deps.CORSOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db, deps.ReadyChecks))

	h := &handlers{deps: deps, logger: logger}

	est := router.Group("/:establishmentKey", establishmentMiddleware(deps.Establishments), auth.Optional(deps.Tokens))
	est.POST("/staff/login", h.staffLogin)
	est.GET("/staff/me", auth.Guard(deps.Tokens, allStaff...), h.staffMe)

	est.GET("/menu", h.menu)
	est.GET("/products", h.listProducts)
	est.GET("/products/:id", h.getProduct)
	est.POST("/pricing/quote", h.quote)
	est.POST("/coupons/validate", h.validateCoupon)

	est.POST("/carts", h.createCart)
	est.GET("/carts/:id", h.getCart)
	est.POST("/carts/:id", h.updateCart)
	est.DELETE("/carts/:id", h.deleteCart)
	est.POST("/carts/:id/checkout", h.checkoutCart)

	orders := est.Group("/orders", auth.Guard(deps.Tokens, allStaff...))
	orders.GET("", h.listOrders)
	orders.GET("/:id", h.getOrder)
	orders.GET("/:id/events", h.orderEvents)
	orders.PATCH("/:id/status", h.updateOrderStatus)
	orders.POST("", auth.Guard(deps.Tokens, frontStaff...), h.createOrder)

	board := est.Group("/board", auth.Guard(deps.Tokens, allStaff...))
	board.GET("", h.board)
	board.POST("/moves", h.moveCard)
	board.POST("/orders/:id/cancel", h.cancelCard)

	coupons := est.Group("/coupons", auth.Guard(deps.Tokens, managers...))
	coupons.POST("", h.createCoupon)
	coupons.GET("", h.listCoupons)
	coupons.GET("/:code", h.getCoupon)
	coupons.POST("/:code/deactivate", h.deactivateCoupon)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

type handlers struct {
	deps   Deps
	logger *log.Logger
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"restaurant-ops/internal/auth"
	"restaurant-ops/internal/config"
	"restaurant-ops/internal/db"
	"restaurant-ops/internal/httpserver"
	"restaurant-ops/internal/lifecycle"
	"restaurant-ops/internal/redisstore"
	categoryrepo "restaurant-ops/internal/repository/category"
	couponrepo "restaurant-ops/internal/repository/coupon"
	establishmentrepo "restaurant-ops/internal/repository/establishment"
	orderrepo "restaurant-ops/internal/repository/order"
	productrepo "restaurant-ops/internal/repository/product"
	staffrepo "restaurant-ops/internal/repository/staff"
	boardsvc "restaurant-ops/internal/service/board"
	cartsvc "restaurant-ops/internal/service/cart"
	couponsvc "restaurant-ops/internal/service/coupon"
	menusvc "restaurant-ops/internal/service/menu"
	ordersvc "restaurant-ops/internal/service/order"
	staffsvc "restaurant-ops/internal/service/staff"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, db.Options{AppName: "restaurant-ops-api", MaxConns: cfg.DBMaxConns})
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	var (
		locks     lifecycle.Locker
		cartStore cartsvc.Store
		checks    = map[string]httpserver.ReadyCheck{}
	)
	if cfg.RedisAddr != "" {
		client, err := redisstore.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Fatalf("connect to redis: %v", err)
		}
		defer client.Close()
		locks = redisstore.NewLocker(client)
		cartStore = redisstore.NewCartStore(client, cfg.CartTTL)
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		logger.Printf("using redis at %s for transition locks and carts", cfg.RedisAddr)
	} else {
		locks = lifecycle.NewMemoryLocker()
		cartStore = cartsvc.NewMemoryStore(cfg.CartTTL)
		logger.Printf("REDIS_ADDR not set; transition locks and carts are process-local")
	}

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.AccessTokenTTL)

	establishmentRepo := establishmentrepo.NewPostgres(dbpool, logger)
	menuService := menusvc.New(categoryrepo.NewPostgres(dbpool, logger), productrepo.NewPostgres(dbpool, logger))
	couponService := couponsvc.New(couponrepo.NewPostgres(dbpool, logger), logger)
	orderService := ordersvc.New(orderrepo.NewPostgres(dbpool, logger), menuService, couponService, logger)
	boardService := boardsvc.New(orderService, orderService, locks, cfg.TransitionTimeout, logger)
	orderService.SetNotifier(boardService)
	cartService := cartsvc.New(cartStore, menuService, couponService, orderService, logger)
	staffService := staffsvc.New(staffrepo.NewPostgres(dbpool, logger), tokens, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Establishments: establishmentRepo,
		Menu:           menuService,
		Coupons:        couponService,
		Orders:         orderService,
		Carts:          cartService,
		Board:          boardService,
		Staff:          staffService,
		Tokens:         tokens,
		CORSOrigins:    cfg.CORSOrigins,
		ReadyChecks:    checks,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/thunww/Furniture-Web-sub002/api/controllers"
	"github.com/thunww/Furniture-Web-sub002/api/routes"
	cartsvc "github.com/thunww/Furniture-Web-sub002/internal/cart"
	"github.com/thunww/Furniture-Web-sub002/internal/catalog"
	checkoutsvc "github.com/thunww/Furniture-Web-sub002/internal/checkout"
	couponsvc "github.com/thunww/Furniture-Web-sub002/internal/coupon"
	incomesvc "github.com/thunww/Furniture-Web-sub002/internal/income"
	ordersvc "github.com/thunww/Furniture-Web-sub002/internal/orders"
	"github.com/thunww/Furniture-Web-sub002/pkg/config"
	"github.com/thunww/Furniture-Web-sub002/pkg/db"
	"github.com/thunww/Furniture-Web-sub002/pkg/logger"
	"github.com/thunww/Furniture-Web-sub002/pkg/metrics"
	"github.com/thunww/Furniture-Web-sub002/pkg/migrate"
	"github.com/thunww/Furniture-Web-sub002/pkg/outbox"
	"github.com/thunww/Furniture-Web-sub002/pkg/payments"
	"github.com/thunww/Furniture-Web-sub002/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	var initiator payments.Initiator
	if cfg.Square.AccessToken != "" {
		squareClient, err := payments.NewSquareClient(context.Background(), cfg.Square, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap square client", err)
			os.Exit(1)
		}
		initiator = squareClient
	} else {
		logg.Warn(context.Background(), "square access token not set, card checkout disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	fulfillment := metrics.NewFulfillmentMetrics(registry)

	gormDB := dbClient.DB()
	outboxSvc := outbox.NewService(outbox.NewRepository(gormDB), logg)

	productReader, err := catalog.NewProductReader(gormDB)
	if err != nil {
		logg.Error(context.Background(), "failed to create product reader", err)
		os.Exit(1)
	}
	addressReader, err := catalog.NewAddressReader(gormDB)
	if err != nil {
		logg.Error(context.Background(), "failed to create address reader", err)
		os.Exit(1)
	}

	cartService, err := cartsvc.NewService(cartsvc.NewRepository(gormDB), productReader)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	couponService, err := couponsvc.NewService(
		couponsvc.NewRepository(gormDB),
		cartService,
		redisClient,
		cfg.Checkout.AppliedCouponTTL,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create coupon service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(
		checkoutsvc.NewRepository(gormDB),
		dbClient,
		cartService,
		checkoutsvc.NewLineRemover(),
		couponService,
		addressReader,
		checkoutsvc.FlatFeeQuoter{FeeCents: cfg.Checkout.FlatShippingFeeCents},
		initiator,
		outboxSvc,
		fulfillment,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	ordersService, err := ordersvc.NewService(ordersvc.NewRepository(gormDB), dbClient, outboxSvc, fulfillment)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	incomeService, err := incomesvc.NewService(incomesvc.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create income service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config: cfg,
			Logger: logg,
			Pingers: map[string]controllers.Pinger{
				"database": dbClient,
				"redis":    redisClient,
			},
			CartService:     cartService,
			CouponService:   couponService,
			CheckoutService: checkoutService,
			OrdersService:   ordersService,
			IncomeService:   incomeService,
			MetricsGatherer: registry,
		}),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-shutdownCtx.Done()
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "error during server shutdown", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shut down gracefully")
}

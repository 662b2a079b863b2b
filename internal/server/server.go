// Package server boots the application: configuration, MongoDB, Redis,
// storage, queue workers, the scheduler and the HTTP listener.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shashiranjanraj/emart/app/jobs"
	"github.com/shashiranjanraj/emart/app/repositories"
	"github.com/shashiranjanraj/emart/app/routes"
	"github.com/shashiranjanraj/emart/app/services"
	"github.com/shashiranjanraj/emart/config"
	"github.com/shashiranjanraj/emart/database/indexes"
	"github.com/shashiranjanraj/emart/pkg/cache"
	"github.com/shashiranjanraj/emart/pkg/database"
	"github.com/shashiranjanraj/emart/pkg/logger"
	"github.com/shashiranjanraj/emart/pkg/metrics"
	"github.com/shashiranjanraj/emart/pkg/middleware"
	"github.com/shashiranjanraj/emart/pkg/queue"
	"github.com/shashiranjanraj/emart/pkg/reqid"
	"github.com/shashiranjanraj/emart/pkg/response"
	"github.com/shashiranjanraj/emart/pkg/router"
	"github.com/shashiranjanraj/emart/pkg/schedule"
	"github.com/shashiranjanraj/emart/pkg/storage"
)

// storageDocs adapts the storage facade to the invoice document store.
type storageDocs struct{}

func (storageDocs) Put(path string, content []byte) error { return storage.Put(path, content) }
func (storageDocs) Get(path string) ([]byte, error)       { return storage.Get(path) }

// BuildServices wires repositories, the notifier, the payment gateway and
// document storage into the service layer.
func BuildServices() routes.Services {
	users := repositories.NewUserRepository()
	products := repositories.NewProductRepository()
	orders := repositories.NewOrderRepository()
	payments := repositories.NewPaymentRepository()
	invoices := repositories.NewInvoiceRepository()

	notifier := jobs.NewQueueNotifier()
	barcodes := services.NewBarcodeService()

	userSvc := services.NewUserService(users, notifier)
	productSvc := services.NewProductService(products, users, barcodes, notifier)
	invoiceSvc := services.NewInvoiceService(invoices, users, storageDocs{}, notifier)
	orderSvc := services.NewOrderService(orders, products, users, invoiceSvc, notifier)
	paymentSvc := services.NewPaymentService(payments, orders, invoiceSvc, services.GatewayFromConfig(), notifier)

	return routes.Services{
		Users:    userSvc,
		Products: productSvc,
		Orders:   orderSvc,
		Payments: paymentSvc,
		Invoices: invoiceSvc,
		Barcodes: barcodes,
	}
}

// BuildRouter assembles the middleware stack and the API routes.
func BuildRouter(s routes.Services) *router.Router {
	r := router.New()

	r.Use(
		metrics.Middleware(),
		middleware.Recovery,
		reqid.Middleware(),
		middleware.Logger,
		middleware.CORS(middleware.DefaultCORSOptions()),
		middleware.RateLimit(config.GetInt("RATE_LIMIT_MAX", 300), time.Minute),
	)

	routes.RegisterAPI(r, s)

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/healthz", "healthz", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"status": "ok"})
	})

	return r
}

// registerSchedule sets up the recurring housekeeping tasks.
func registerSchedule(s routes.Services, notifier services.Notifier) {
	schedule.Hourly().Name("invoices.sweep-overdue").WithoutOverlapping().Run(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		n, err := s.Invoices.SweepOverdue(ctx)
		if err != nil {
			logger.Error("schedule: overdue sweep failed", "error", err)
			return
		}
		if n > 0 {
			logger.Info("schedule: invoices marked overdue", "count", n)
		}
	})

	schedule.Daily().Name("products.low-stock-alert").WithoutOverlapping().Run(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		products, err := s.Products.LowStock(ctx, 0)
		if err != nil {
			logger.Error("schedule: low stock scan failed", "error", err)
			return
		}
		if len(products) > 0 {
			notifier.LowStock(products)
		}
	})

	schedule.Daily().Name("products.expiry-alert").WithoutOverlapping().Run(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		now := time.Now().UTC()
		products, err := s.Products.ExpiringBetween(ctx, now, now.AddDate(0, 0, 7))
		if err != nil {
			logger.Error("schedule: expiry scan failed", "error", err)
			return
		}
		if len(products) > 0 {
			notifier.ExpiringProducts(products)
		}
	})
}

// Start boots every subsystem and serves HTTP until SIGINT or SIGTERM.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Connect(ctx); err != nil {
		return err
	}
	defer database.Disconnect(context.Background()) //nolint:errcheck

	if err := indexes.Ensure(ctx, database.DB()); err != nil {
		return err
	}

	// Redis is optional: without it, token revocation and the Redis queue
	// driver degrade to their in-process fallbacks.
	if err := cache.Connect(); err != nil {
		logger.Warn("cache: redis unavailable, continuing without it", "error", err)
	}

	storage.Connect()

	jobs.Register()
	queue.UseCollection(database.Collection("failed_jobs"))
	if cache.RDB != nil {
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
	}
	queue.StartWorkers(ctx, config.GetInt("QUEUE_WORKERS", 4))

	svcs := BuildServices()
	registerSchedule(svcs, jobs.NewQueueNotifier())
	schedule.Start(ctx)

	r := BuildRouter(svcs)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server: listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

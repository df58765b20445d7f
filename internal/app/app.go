package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	sdkapp "github.com/go-faster/sdk/app"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/modahub/storefront-api/internal/domain/cart"
	"github.com/modahub/storefront-api/internal/domain/order"
	"github.com/modahub/storefront-api/internal/domain/user"
	"github.com/modahub/storefront-api/internal/events"
	"github.com/modahub/storefront-api/internal/handler"
	"github.com/modahub/storefront-api/internal/mail"
	"github.com/modahub/storefront-api/internal/storage/mongo"
	"github.com/modahub/storefront-api/internal/token"
	"github.com/modahub/storefront-api/pkg/health"
	"github.com/modahub/storefront-api/pkg/httpmiddleware"
)

// Run wires the storefront API together and serves it until ctx is done.
func Run(ctx context.Context, lg *zap.Logger, m *sdkapp.Telemetry, cfg *Config) error {
	store, err := mongo.Connect(ctx, cfg.MongoURL, cfg.MongoDB)
	if err != nil {
		return errors.Wrap(err, "connect mongodb")
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			lg.Warn("Close mongodb", zap.Error(err))
		}
	}()

	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutine-count", 2*time.Second, health.GoroutineCountCheck(2000))
	healthSvc.AddReadinessCheck("mongodb", 5*time.Second, store.Ping)
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	users := mongo.NewUserRepository(store)
	products := mongo.NewProductRepository(store)
	carts := mongo.NewCartRepository(store)
	orders := mongo.NewOrderRepository(store)

	var mailer user.Mailer = mail.Noop{}
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			From:     cfg.SMTP.From,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
		})
	}

	var publisher order.Publisher = events.Noop{}
	if cfg.NATSURL != "" {
		np, err := events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			lg.Warn("NATS unavailable, order events disabled", zap.Error(err))
		} else {
			publisher = np
			defer np.Close()
		}
	}

	userSvc := user.NewService(users, mailer)
	cartSvc := cart.NewService(carts, products)
	orderSvc := order.NewService(orders, carts, users, publisher)
	tokens := token.NewManager([]byte(cfg.JWTSecret), cfg.TokenTTL)

	h := handler.New(handler.Config{
		ImageBaseURL: cfg.ImageBaseURL,
		UploadDir:    cfg.UploadDir,
	}, userSvc, products, cartSvc, orderSvc, tokens)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))
	mux.Handle("/api/", otelhttp.NewHandler(h.Routes(), "storefront-api",
		otelhttp.WithMeterProvider(m.MeterProvider()),
		otelhttp.WithTracerProvider(m.TracerProvider()),
	))

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(lg),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

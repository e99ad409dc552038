package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/bzbookit/bzbookit-backend/internal/booking"
	"github.com/bzbookit/bzbookit-backend/internal/dashboard"
	"github.com/bzbookit/bzbookit-backend/internal/genai"
	"github.com/bzbookit/bzbookit-backend/internal/handlers"
	"github.com/bzbookit/bzbookit-backend/internal/identity"
	"github.com/bzbookit/bzbookit-backend/internal/obs"
	"github.com/bzbookit/bzbookit-backend/internal/outbox"
	"github.com/bzbookit/bzbookit-backend/internal/storage"
	"github.com/bzbookit/bzbookit-backend/libs/config"
	"github.com/bzbookit/bzbookit-backend/libs/db"
	"github.com/bzbookit/bzbookit-backend/libs/httpx"
	"github.com/bzbookit/bzbookit-backend/libs/kafkax"
	otelx "github.com/bzbookit/bzbookit-backend/libs/otel"
	"github.com/bzbookit/bzbookit-backend/libs/runtime"
)

func main() {
	service := config.String("SERVICE_NAME", "bzbookit-api")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	identityURL, err := config.RequiredString("SUPABASE_URL")
	if err != nil {
		panic(err)
	}
	identityClient := identity.NewClient(
		identityURL,
		config.String("SUPABASE_ANON_KEY", ""),
		config.String("SUPABASE_SERVICE_KEY", ""),
	)

	repo := storage.NewRepository(pool)
	outboxRepo := outbox.NewRepository(pool)
	recorder := outbox.NewRecorder(pool, outboxRepo)
	bookingService := booking.NewService(repo, repo, repo, recorder, logger)
	dashboardService := dashboard.NewService(repo, repo, logger)
	generator := genai.NewClient(
		config.String("GENAI_BASE_URL", "https://generativelanguage.googleapis.com"),
		config.String("GEMINI_API_KEY", ""),
		config.String("GENAI_MODEL", ""),
	)

	kafkaBrokers := config.String("KAFKA_BROKERS", "")
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   kafkaBrokers,
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	appointmentHandler := handlers.NewAppointmentHandler(bookingService, logger)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, logger)
	authHandler := handlers.NewAuthHandler(identityClient, repo, logger)
	catalogHandler := handlers.NewCatalogHandler(repo, logger)
	notificationHandler := handlers.NewNotificationHandler(repo, logger)
	aiHandler := handlers.NewAIHandler(generator, logger)

	obs.Init()

	readyChecks := []runtime.ReadyCheck{
		{Name: "db", Check: db.ReadyCheck(pool)},
	}
	if kafkaBrokers != "" {
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(kafkaBrokers)})
	}
	mux := runtime.NewBaseMux(readyChecks...)
	mux.Handle("/metrics", obs.Handler())

	protected := identity.RequireAuth(identityClient)
	mux.Handle("/api/appointments", protected(http.HandlerFunc(appointmentHandler.Collection)))
	mux.Handle("/api/appointments/me", protected(http.HandlerFunc(appointmentHandler.Mine)))
	mux.Handle("/api/appointments/", protected(http.HandlerFunc(appointmentHandler.ByID)))
	mux.Handle("/api/dashboard/business", protected(http.HandlerFunc(dashboardHandler.Business)))
	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.HandleFunc("/api/auth/signup", authHandler.Signup)
	mux.Handle("/api/auth/me", protected(http.HandlerFunc(authHandler.Me)))
	mux.HandleFunc("/api/businesses", catalogHandler.Businesses)
	mux.HandleFunc("/api/services", catalogHandler.Services)
	mux.Handle("/api/notifications/me", protected(http.HandlerFunc(notificationHandler.Mine)))
	mux.Handle("/api/ai/generate-description", protected(http.HandlerFunc(aiHandler.GenerateDescription)))
	mux.Handle("/api/chat", protected(http.HandlerFunc(aiHandler.Chat)))

	httpHandler := httpx.Chain(obs.Instrument(mux),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: config.List("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(int64(config.Int("MAX_BODY_BYTES", 1<<20))),
		httpx.WithTimeout(30*time.Second),
		rateLimitMiddleware(ctx, logger),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, service)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

// rateLimitMiddleware prefers the shared Redis window when REDIS_ADDR is set,
// so multiple replicas count against one budget; otherwise each process falls
// back to its own in-memory window.
func rateLimitMiddleware(ctx context.Context, logger *slog.Logger) httpx.Middleware {
	limit := config.Int("RATE_LIMIT", 120)
	window := time.Duration(config.Int("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second

	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable; using in-memory rate limiter", "err", err)
		} else {
			return httpx.NewRedisRateLimiter(rdb, limit, window, "ratelimit").Middleware(logger, true)
		}
	}
	return httpx.NewRateLimiter(limit, window).Middleware()
}

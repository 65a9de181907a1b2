package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/reservalocales/api/internal/booking"
	"github.com/reservalocales/api/internal/config"
	"github.com/reservalocales/api/internal/db"
	"github.com/reservalocales/api/internal/handlers"
	"github.com/reservalocales/api/internal/httpx"
	"github.com/reservalocales/api/internal/kafkax"
	"github.com/reservalocales/api/internal/model"
	otelx "github.com/reservalocales/api/internal/otel"
	"github.com/reservalocales/api/internal/outbox"
	"github.com/reservalocales/api/internal/runtime"
	"github.com/reservalocales/api/internal/storage"
	"github.com/reservalocales/api/migrations"
)

func main() {
	_ = godotenv.Load()

	service := config.String("SERVICE_NAME", "reserva-locales-api")
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

	secret, err := config.RequiredString("JWT_SECRET")
	if err != nil {
		panic(err)
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
	if err := migrations.Apply(ctx, pool); err != nil {
		logger.Error("migrations failed", "err", err)
		panic(err)
	}

	kafkaBrokers := config.String("KAFKA_BROKERS", "")
	outboxRepo := outbox.NewRepository(pool)
	userRepo := storage.NewUserRepository(pool)
	localeRepo := storage.NewLocaleRepository(pool)
	reservationRepo := storage.NewReservationRepository(pool, outboxRepo)

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   kafkaBrokers,
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	tokenTTL := time.Duration(config.Int("TOKEN_TTL_MINUTES", 15)) * time.Minute
	slotDuration := time.Duration(config.Int("SLOT_MINUTES", 60)) * time.Minute

	authHandler := handlers.NewAuthHandler(userRepo, logger, secret, tokenTTL)
	localeHandler := handlers.NewLocaleHandler(localeRepo, reservationRepo, logger, slotDuration)
	reservationHandler := handlers.NewReservationHandler(
		booking.NewValidator(localeRepo), reservationRepo, logger)
	adminHandler := handlers.NewAdminHandler(reservationRepo, logger)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(kafkaBrokers)},
	)

	// Auth endpoints are rate limited per client; Redis keeps the counters
	// shared when several instances run behind one load balancer.
	var authLimit httpx.Middleware
	authRateLimit := config.Int("AUTH_RATE_LIMIT_PER_MINUTE", 20)
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		authLimit = httpx.NewRedisRateLimiter(rdb, authRateLimit, time.Minute, "rl:auth").
			Middleware(logger, true)
	} else {
		authLimit = httpx.NewRateLimiter(authRateLimit, time.Minute).Middleware()
	}

	authed := httpx.WithAuth(secret)
	adminOnly := httpx.WithRole(model.RoleAdmin)

	mux.Handle("POST /api/auth/register", httpx.Chain(http.HandlerFunc(authHandler.Register), authLimit))
	mux.Handle("POST /api/auth/login", httpx.Chain(http.HandlerFunc(authHandler.Login), authLimit))
	mux.Handle("GET /api/auth/me", httpx.Chain(http.HandlerFunc(authHandler.Me), authed))

	mux.HandleFunc("GET /api/locales", localeHandler.List)
	mux.HandleFunc("GET /api/locales/{id}", localeHandler.Get)
	mux.HandleFunc("GET /api/locales/{id}/availability", localeHandler.Availability)

	mux.Handle("POST /api/reservations", httpx.Chain(http.HandlerFunc(reservationHandler.Create), authed))
	mux.Handle("GET /api/reservations/my", httpx.Chain(http.HandlerFunc(reservationHandler.My), authed))
	mux.Handle("POST /api/reservations/{id}/cancel", httpx.Chain(http.HandlerFunc(reservationHandler.Cancel), authed))

	mux.Handle("GET /api/admin/conflicts", httpx.Chain(http.HandlerFunc(adminHandler.Conflicts), authed, adminOnly))
	mux.Handle("PATCH /api/admin/resolve/{id}", httpx.Chain(http.HandlerFunc(adminHandler.Resolve), authed, adminOnly))

	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: splitList(config.String("CORS_ALLOWED_ORIGINS", "*")),
			AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
		}),
		httpx.WithBodyLimit(1<<20),
		httpx.WithTimeout(15*time.Second),
	)
	handler = otelhttp.NewHandler(handler, service)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
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

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

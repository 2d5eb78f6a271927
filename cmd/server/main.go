// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"foodshare/internal/application"
	applicationrepository "foodshare/internal/application/repository"
	applicationservice "foodshare/internal/application/service"
	applicationhttp "foodshare/internal/application/transport/http"
	"foodshare/internal/authz"
	"foodshare/internal/config"
	"foodshare/internal/listing"
	listingrepository "foodshare/internal/listing/repository"
	listingservice "foodshare/internal/listing/service"
	listinghttp "foodshare/internal/listing/transport/http"
	"foodshare/internal/metrics"
	"foodshare/internal/orchestrator"
	"foodshare/internal/payment"
	paymentcache "foodshare/internal/payment/cache"
	paymentrepository "foodshare/internal/payment/repository"
	paymentservice "foodshare/internal/payment/service"
	paymenthttp "foodshare/internal/payment/transport/http"
	"foodshare/internal/settings"
	settingshttp "foodshare/internal/settings/transport/http"
	"foodshare/internal/storage/memory"
	"foodshare/internal/subscription"
	subscriptionrepository "foodshare/internal/subscription/repository"
	subscriptionservice "foodshare/internal/subscription/service"
	"foodshare/internal/token"
	tokenrepository "foodshare/internal/token/repository"
	"foodshare/internal/user"
	userrepository "foodshare/internal/user/repository"
	userservice "foodshare/internal/user/service"
	userhttp "foodshare/internal/user/transport/http"
	"foodshare/pkg/db"
	"foodshare/pkg/logger"
	"foodshare/pkg/middleware"
)

type repositories struct {
	users         user.Repository
	listings      listing.Repository
	applications  application.Repository
	payments      payment.Repository
	subscriptions subscription.Repository
	tokens        token.Repository
	close         func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zl := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer zl.Sync()
	log := logger.NewZapAdapter(zl)
	log.Info("foodshare API starting", map[string]interface{}{
		"storage": cfg.StorageDriver,
		"policy":  cfg.ApplicationPolicy,
	})

	metrics.InitMetrics()

	repos, err := openRepositories(context.Background(), cfg, log)
	if err != nil {
		log.Error("storage init failed", map[string]interface{}{"error": err})
		os.Exit(1)
	}
	defer repos.close()

	// --- ИНИЦИАЛИЗАЦИЯ СЛОЁВ ---
	evaluator := authz.NewEvaluator()
	subService := subscriptionservice.NewService(repos.subscriptions)
	userService := userservice.NewUserService(repos.users, subService, log)
	tokenService := token.NewService(repos.tokens)

	listingService := listingservice.NewService(repos.listings, evaluator, log,
		listingservice.WithModeration(cfg.ModerationEnabled))
	applicationService := applicationservice.NewService(repos.applications, listingService, evaluator, log)
	paymentService := paymentservice.NewService(repos.payments, subService, evaluator, log, cfg.PaymentCallbackBaseURL)

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		paymentService.WithCache(paymentcache.NewRedisCache(rdb, paymentcache.DefaultTTL, log))
		log.Info("payment callback cache enabled", map[string]interface{}{"addr": cfg.RedisAddr})
	}

	proPrice, err := decimal.NewFromString(cfg.ProPlanPrice)
	if err != nil {
		log.Error("invalid PRO_PLAN_PRICE", map[string]interface{}{"value": cfg.ProPlanPrice, "error": err})
		os.Exit(1)
	}
	policy, err := orchestrator.ParsePolicy(cfg.ApplicationPolicy)
	if err != nil {
		log.Error("invalid APPLICATION_POLICY", map[string]interface{}{"error": err})
		os.Exit(1)
	}

	orch := orchestrator.New(orchestrator.Deps{
		Users:        userService,
		Listings:     listingService,
		Applications: applicationService,
		Payments:     paymentService,
		Settings:     settings.NewStore(proPrice),
		Authz:        evaluator,
	}, policy, log)

	h := userhttp.NewHandler(userService, cfg.JWTSecret, tokenService, orch)
	listingHandler := listinghttp.NewListingHandler(orch)
	applicationHandler := applicationhttp.NewApplicationHandler(orch)
	paymentHandler := paymenthttp.NewPaymentHandler(orch)
	settingsHandler := settingshttp.NewSettingsHandler(orch)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log)

	// --- РОУТЕР ---
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.MetricsMiddleware)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Публичные роуты
	r.Group(func(pub chi.Router) {
		pub.Use(limiter.Middleware)
		pub.Use(middleware.ValidateRequest)
		pub.Post("/auth/register", h.Register)
		pub.Post("/auth/login", h.Login)
		pub.Post("/auth/refresh", h.Refresh)
		pub.Get("/api/plans", paymentHandler.Plans)
		pub.Post("/api/payments/callback", paymentHandler.Callback)
		pub.Get("/api/payments/gateway/{ref}", paymentHandler.Gateway)
	})

	// 🔐 Защищённая группа маршрутов
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.JWTAuth(cfg.JWTSecret))
		pr.Use(limiter.Middleware)
		pr.Use(middleware.ValidateRequest)

		pr.Get("/auth/me", h.Me)

		pr.Post("/api/listings", listingHandler.Create)
		pr.Get("/api/listings/{id}", listingHandler.Get)
		pr.Post("/api/listings/{id}/claim", listingHandler.Claim)
		pr.Post("/api/listings/{id}/approve", listingHandler.Approve)
		pr.Post("/api/listings/{id}/pickup", listingHandler.ConfirmPickup)
		pr.Post("/api/listings/{id}/expire", listingHandler.Expire)

		pr.Post("/api/applications", applicationHandler.Create)
		pr.Get("/api/applications/{id}", applicationHandler.Get)
		pr.Post("/api/applications/{id}/status", applicationHandler.UpdateStatus)
		pr.Post("/api/applications/{id}/confirm-pickup", applicationHandler.ConfirmPickup)

		pr.Post("/api/payments/initiate", paymentHandler.Initiate)
		pr.Get("/api/payments/history", paymentHandler.History)
		pr.Get("/api/subscription", paymentHandler.Subscription)

		pr.Get("/api/admin/settings", settingsHandler.Get)
		pr.Put("/api/admin/settings", settingsHandler.Update)
		pr.Post("/api/admin/users/{id}/verify", h.Verify)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	if cfg.MetricsUser != "" {
		r.With(middleware.BasicAuth(cfg.MetricsUser, cfg.MetricsPassword)).Handle("/metrics", promhttp.Handler())
	} else {
		log.Warn("METRICS_USER not set, /metrics disabled", nil)
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				limiter.Cleanup(30 * time.Minute)
			}
		}
	}()

	go func() {
		log.Info("server running", map[string]interface{}{"addr": cfg.HTTPAddr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", map[string]interface{}{"error": err})
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received, starting graceful shutdown", nil)

	// Создаем контекст с таймаутом
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", map[string]interface{}{"error": err})
	}
	log.Info("server stopped", nil)
}

func openRepositories(ctx context.Context, cfg *config.Config, log logger.Logger) (*repositories, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		store := memory.New()
		store.AddPlan(subscription.Plan{Name: "Pro Monthly", Price: decimal.NewFromInt(10), DurationDays: 30})
		store.AddPlan(subscription.Plan{Name: "Pro Yearly", Price: decimal.NewFromInt(100), DurationDays: 365})
		log.Warn("using in-memory storage, data is lost on restart", nil)
		return &repositories{
			users:         store.Users(),
			listings:      store.Listings(),
			applications:  store.Applications(),
			payments:      store.Payments(),
			subscriptions: store.Subscriptions(),
			tokens:        store.Tokens(),
			close:         func() {},
		}, nil
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(database.DB); err != nil {
		database.Close()
		return nil, err
	}
	log.Info("connected to PostgreSQL", nil)

	return &repositories{
		users:         userrepository.NewPostgresUserRepository(database),
		listings:      listingrepository.NewPostgresListingRepository(database),
		applications:  applicationrepository.NewPostgresApplicationRepository(database),
		payments:      paymentrepository.NewPostgresPaymentRepository(database),
		subscriptions: subscriptionrepository.NewSubscriptionRepository(database),
		tokens:        tokenrepository.NewRefreshTokenRepository(database),
		close:         func() { database.Close() },
	}, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cardealer-backend/config"
	"cardealer-backend/db"
	"cardealer-backend/internal/delivery/http/middleware"
	v1 "cardealer-backend/internal/delivery/http/v1"
	"cardealer-backend/internal/domain"
	"cardealer-backend/internal/infrastructure/cache"
	"cardealer-backend/internal/infrastructure/loginguard"
	"cardealer-backend/internal/infrastructure/messaging"
	"cardealer-backend/internal/repository/postgres"
	"cardealer-backend/internal/usecase"
	"cardealer-backend/pkg/logger"
	"cardealer-backend/pkg/storage"
	"cardealer-backend/pkg/utils"

	"github.com/NYTimes/gziphandler"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"
)

const serviceName = "cardealer-api"

var version = "dev"

func main() {
	cfg := config.LoadConfig()
	utils.SetSecret(cfg.JWTSecret)

	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	ctx := context.Background()

	pool, err := postgres.NewPgxPool(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()
	log.Info().Msg("Connected to PostgreSQL")

	if cfg.DBAutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply schema")
		}
		log.Info().Msg("Database schema applied")
	}

	// Repositories
	userRepo := postgres.NewUserRepository(pool)
	catalogRepo := postgres.NewCatalogRepository(pool)
	cartRepo := postgres.NewCartRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	contactRepo := postgres.NewContactRepository(pool)
	dashboardRepo := postgres.NewDashboardRepository(pool)
	txManager := postgres.NewTransactionManager(pool)

	// Default expiration 30m, cleanup every 60m
	memCache := cache.NewMemoryCache(30*time.Minute, 60*time.Minute)

	attempts := loginguard.NewMemoryStore(cfg.LoginLockoutWindow)
	if cfg.RedisURL != "" {
		client, err := loginguard.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer client.Close()
		attempts = loginguard.NewRedisStore(client, cfg.LoginLockoutWindow)
		log.Info().Msg("Login lockout backed by Redis")
	}

	var publisher domain.OrderEventPublisher = messaging.NewLogPublisher()
	if cfg.RabbitMQURL != "" {
		p, err := messaging.NewRabbitPublisher(cfg.RabbitMQURL, cfg.OrderQueue)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to RabbitMQ")
		}
		publisher = p
		log.Info().Str("queue", cfg.OrderQueue).Msg("Order events published to RabbitMQ")
	} else {
		log.Warn().Msg("RABBITMQ_URL not set, order events are only logged")
	}
	defer publisher.Close()

	var images v1.ImageStore
	if cfg.StorageEnabled() {
		s3Storage, err := storage.NewS3Storage(ctx, storage.S3Options{
			Endpoint:      cfg.S3Endpoint,
			Region:        cfg.S3Region,
			AccessKey:     cfg.S3AccessKeyID,
			SecretKey:     cfg.S3AccessKeySecret,
			BucketName:    cfg.S3BucketName,
			PublicURL:     cfg.S3PublicURL,
			UploadTimeout: cfg.UploadTimeout,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize image storage")
		}
		images = s3Storage
	} else {
		log.Warn().Msg("S3 storage not configured, image uploads disabled")
	}

	// Usecases
	authUC := usecase.NewAuthUsecase(userRepo, attempts, cfg)
	catalogUC := usecase.NewCatalogUsecase(catalogRepo, txManager, memCache, cfg)
	searchUC := usecase.NewSearchUsecase(catalogRepo, cfg.SearchTimeout)
	cartUC := usecase.NewCartUsecase(cartRepo, catalogRepo, cfg)
	orderUC := usecase.NewOrderUsecase(orderRepo, cartRepo, catalogRepo, userRepo, txManager, publisher, memCache, cfg)
	dashboardUC := usecase.NewDashboardUsecase(dashboardRepo, memCache, cfg)
	contactUC := usecase.NewContactUsecase(contactRepo, memCache)
	sitemapUC := usecase.NewSitemapUsecase(catalogRepo, memCache, cfg)

	mux := http.NewServeMux()
	registerRoutes(mux, handlers{
		auth:         v1.NewAuthHandler(authUC, cfg),
		adminUser:    v1.NewAdminUserHandler(authUC),
		catalog:      v1.NewCatalogHandler(catalogUC),
		adminCatalog: v1.NewAdminCatalogHandler(catalogUC),
		search:       v1.NewSearchHandler(searchUC),
		sitemap:      v1.NewSitemapHandler(sitemapUC),
		cart:         v1.NewCartHandler(cartUC),
		order:        v1.NewOrderHandler(orderUC),
		adminOrder:   v1.NewAdminOrderHandler(orderUC),
		dashboard:    v1.NewDashboardHandler(dashboardUC),
		contact:      v1.NewContactHandler(contactUC),
		config:       v1.NewConfigHandler(memCache, cfg),
		upload:       v1.NewUploadHandler(images, cfg.MaxUploadSizeMB),
	}, pool)

	rateLimiter := middleware.NewRateLimiter(ctx, rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst, time.Minute, 3*time.Minute)

	// CORS -> request logger -> rate limit -> gzip
	handler := middleware.NewCORSMiddleware(cfg)(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()
	logger.ServiceStart(serviceName, version, addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")
	rateLimiter.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.ServiceStop(serviceName)
}

type handlers struct {
	auth         *v1.AuthHandler
	adminUser    *v1.AdminUserHandler
	catalog      *v1.CatalogHandler
	adminCatalog *v1.AdminCatalogHandler
	search       *v1.SearchHandler
	sitemap      *v1.SitemapHandler
	cart         *v1.CartHandler
	order        *v1.OrderHandler
	adminOrder   *v1.AdminOrderHandler
	dashboard    *v1.DashboardHandler
	contact      *v1.ContactHandler
	config       *v1.ConfigHandler
	upload       *v1.UploadHandler
}

func registerRoutes(mux *http.ServeMux, h handlers, pool *pgxpool.Pool) {
	auth := middleware.Authenticated
	admin := middleware.Admin

	// Health
	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "db": "unreachable"})
			return
		}
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "db": "connected"})
	}
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /api/v1/health", healthHandler)

	// Public
	mux.HandleFunc("GET /sitemap.xml", h.sitemap.ServeHTTP)
	mux.HandleFunc("GET /api/v1/config/enums", h.config.GetEnums)
	mux.HandleFunc("GET /api/v1/cars", h.catalog.ListCars)
	mux.HandleFunc("GET /api/v1/cars/{slug}", h.catalog.GetCar)
	mux.HandleFunc("GET /api/v1/parts", h.catalog.ListParts)
	mux.HandleFunc("GET /api/v1/parts/{slug}", h.catalog.GetPart)
	mux.HandleFunc("GET /api/v1/brands", h.catalog.GetBrands)
	mux.HandleFunc("GET /api/v1/categories", h.catalog.GetCategories)
	mux.HandleFunc("GET /api/v1/search", h.search.Search)
	mux.HandleFunc("POST /api/v1/contact", h.contact.Submit)

	// Auth
	mux.HandleFunc("POST /api/v1/auth/register", h.auth.Register)
	mux.HandleFunc("POST /api/v1/auth/login", h.auth.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", h.auth.Refresh)
	mux.HandleFunc("POST /api/v1/auth/logout", h.auth.Logout)
	mux.Handle("GET /api/v1/auth/me", auth(h.auth.Me))
	mux.Handle("PUT /api/v1/user/profile", auth(h.auth.UpdateProfile))
	mux.Handle("PUT /api/v1/user/password", auth(h.auth.ChangePassword))

	// Cart & orders
	mux.Handle("GET /api/v1/cart", auth(h.cart.GetCart))
	mux.Handle("POST /api/v1/cart", auth(h.cart.AddItem))
	mux.Handle("PUT /api/v1/cart", auth(h.cart.UpdateItem))
	mux.Handle("DELETE /api/v1/cart", auth(h.cart.Clear))
	mux.Handle("DELETE /api/v1/cart/{itemType}/{itemId}", auth(h.cart.RemoveItem))
	mux.Handle("POST /api/v1/checkout", auth(h.order.Checkout))
	mux.Handle("GET /api/v1/orders", auth(h.order.GetMyOrders))
	mux.Handle("GET /api/v1/orders/{id}", auth(h.order.GetMyOrder))
	mux.Handle("POST /api/v1/orders/{id}/cancel", auth(h.order.CancelMyOrder))
	mux.Handle("GET /api/v1/dashboard", auth(h.dashboard.Customer))

	// Admin catalog
	mux.Handle("GET /api/v1/admin/cars", admin(h.adminCatalog.ListCars))
	mux.Handle("GET /api/v1/admin/cars/{id}", admin(h.adminCatalog.GetCar))
	mux.Handle("POST /api/v1/admin/cars", admin(h.adminCatalog.CreateCar))
	mux.Handle("PUT /api/v1/admin/cars/{id}", admin(h.adminCatalog.UpdateCar))
	mux.Handle("PATCH /api/v1/admin/cars/{id}/status", admin(h.adminCatalog.SetCarStatus))
	mux.Handle("DELETE /api/v1/admin/cars/{id}", admin(h.adminCatalog.DeleteCar))

	mux.Handle("GET /api/v1/admin/parts", admin(h.adminCatalog.ListParts))
	mux.Handle("GET /api/v1/admin/parts/{id}", admin(h.adminCatalog.GetPart))
	mux.Handle("POST /api/v1/admin/parts", admin(h.adminCatalog.CreatePart))
	mux.Handle("PUT /api/v1/admin/parts/{id}", admin(h.adminCatalog.UpdatePart))
	mux.Handle("PATCH /api/v1/admin/parts/{id}/status", admin(h.adminCatalog.SetPartStatus))
	mux.Handle("DELETE /api/v1/admin/parts/{id}", admin(h.adminCatalog.DeletePart))

	mux.Handle("POST /api/v1/admin/brands", admin(h.adminCatalog.CreateBrand))
	mux.Handle("PUT /api/v1/admin/brands/{id}", admin(h.adminCatalog.UpdateBrand))
	mux.Handle("DELETE /api/v1/admin/brands/{id}", admin(h.adminCatalog.DeleteBrand))
	mux.Handle("POST /api/v1/admin/categories", admin(h.adminCatalog.CreateCategory))
	mux.Handle("PUT /api/v1/admin/categories/{id}", admin(h.adminCatalog.UpdateCategory))
	mux.Handle("DELETE /api/v1/admin/categories/{id}", admin(h.adminCatalog.DeleteCategory))

	mux.Handle("POST /api/v1/admin/inventory/adjust", admin(h.adminCatalog.AdjustStock))
	mux.Handle("GET /api/v1/admin/inventory/logs", admin(h.adminCatalog.GetInventoryLogs))

	mux.Handle("POST /api/v1/admin/uploads", admin(h.upload.UploadFile))
	mux.Handle("DELETE /api/v1/admin/uploads", admin(h.upload.DeleteFile))

	// Admin orders
	mux.Handle("GET /api/v1/admin/orders", admin(h.adminOrder.ListOrders))
	mux.Handle("GET /api/v1/admin/orders/{id}", admin(h.adminOrder.GetOrder))
	mux.Handle("PATCH /api/v1/admin/orders/{id}/status", admin(h.adminOrder.UpdateStatus))
	mux.Handle("PATCH /api/v1/admin/orders/{id}/payment-status", admin(h.adminOrder.UpdatePaymentStatus))
	mux.Handle("GET /api/v1/admin/orders/{id}/history", admin(h.adminOrder.GetOrderHistory))

	// Admin users, messages, dashboard
	mux.Handle("GET /api/v1/admin/users", admin(h.adminUser.ListUsers))
	mux.Handle("GET /api/v1/admin/users/{id}", admin(h.adminUser.GetUser))
	mux.Handle("PATCH /api/v1/admin/users/{id}/role", admin(h.adminUser.SetRole))
	mux.Handle("PATCH /api/v1/admin/users/{id}/status", admin(h.adminUser.SetActive))

	mux.Handle("GET /api/v1/admin/messages", admin(h.contact.List))
	mux.Handle("PATCH /api/v1/admin/messages/{id}/read", admin(h.contact.MarkRead))
	mux.Handle("DELETE /api/v1/admin/messages/{id}", admin(h.contact.Delete))

	mux.Handle("GET /api/v1/admin/dashboard", admin(h.dashboard.Admin))
}

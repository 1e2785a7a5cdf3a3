package server

import (
	"fmt"
	"net/http"
	"time"

	"priceboard/internal/cache"
	"priceboard/internal/config"
	"priceboard/internal/database"
	custommiddleware "priceboard/internal/middleware"
	"priceboard/internal/repository"
	"priceboard/internal/service"
	"priceboard/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     database.Service
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service, redisClient *redis.Client) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env != "production"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithJSON(w, http.StatusOK, db.Health())
	})

	// Initialize repositories
	categoryRepo := repository.NewCategoryRepository(db.DB())
	productRepo := repository.NewProductRepository(db.DB())
	priceRepo := repository.NewPriceRepository(db.DB())
	catalogRepo := repository.NewCatalogRepository(db.DB())
	adminRepo := repository.NewAdminRepository(db.DB())

	// Catalog tree cache; mutations invalidate it eagerly
	treeCache := cache.New(redisClient, cfg.Catalog.CacheTTL, logger)

	// Initialize services
	catalogService := service.NewCatalogService(catalogRepo, treeCache)
	pricingService := service.NewPricingService(categoryRepo, productRepo, priceRepo, treeCache)
	orderingService := service.NewOrderingService(categoryRepo, productRepo, treeCache)
	authService := service.NewAuthService(adminRepo, cfg.JWT.Secret, cfg.JWT.AccessExpiry)

	// Initialize handlers
	catalogHandler := transport.NewCatalogHandler(catalogService, logger)
	adminHandler := transport.NewAdminHandler(catalogService, pricingService, orderingService, logger)
	authHandler := transport.NewAuthHandler(authService, logger)

	// Admin routes require a valid token carrying the admin role
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	requireAdmin := custommiddleware.RequireAdmin(logger)
	adminAuth := func(next http.Handler) http.Handler {
		return authMiddleware(requireAdmin(next))
	}

	// Register routes
	catalogHandler.RegisterRoutes(router)
	adminHandler.RegisterRoutes(router, adminAuth)

	// Login is rate limited to slow down credential guessing
	router.Group(func(r chi.Router) {
		r.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: 10,
			Window:            time.Minute,
			KeyPrefix:         "priceboard:ratelimit:login",
		}, logger))
		authHandler.RegisterRoutes(r)
	})

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}

package server

import (
	"fmt"
	"net/http"
	"time"

	"reelworks/internal/catalog"
	"reelworks/internal/config"
	custommiddleware "reelworks/internal/middleware"
	"reelworks/internal/selection"
	"reelworks/internal/service"
	"reelworks/internal/transport"
	"reelworks/internal/workflow"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	redis  *redislib.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, redisClient *redislib.Client) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env == "development"))
	router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
		Window:            cfg.RateLimit.Window,
		KeyPrefix:         "rate_limit",
	}, logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Initialize the catalog and selection store
	cat := catalog.Default()
	store := selection.NewRedisStore(redisClient, cfg.Session.TTL)

	// Initialize the submit workflow
	submitter := workflow.NewSubmitter(workflow.Config{
		RelayURL:       cfg.Submit.RelayURL,
		PaymentURL:     cfg.Submit.PaymentURL,
		RedirectDelay:  cfg.Submit.RedirectDelay,
		RequestTimeout: cfg.Submit.RequestTimeout,
		StateTTL:       cfg.Session.TTL,
	}, workflow.LogNotifier{Logger: logger}, logger)

	// Initialize services
	orderService := service.NewOrderService(cat, store, submitter, logger)

	// Initialize handlers
	orderHandler := transport.NewOrderHandler(cat, orderService, logger)

	// Register routes
	orderHandler.RegisterRoutes(router)

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
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	// Close Redis connection
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}

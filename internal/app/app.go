package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feedshop-gateway/internal/cart"
	gatewayHTTP "feedshop-gateway/internal/controller/http"
	"feedshop-gateway/internal/session"
	"feedshop-gateway/internal/upstream"
	"feedshop-gateway/internal/usecase"
	"feedshop-gateway/pkg/config"
	"feedshop-gateway/pkg/jwt"
	"feedshop-gateway/pkg/logger"
	"feedshop-gateway/pkg/middleware"
	"feedshop-gateway/pkg/s3"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const redisDialTimeout = 3 * time.Second

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	redisClient *redis.Client
	sessions    session.Store
	carts       *cart.Store
	jwtService  *jwt.Service
	api         *upstream.Client
	s3Client    *s3.Client
	httpServer  *http.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.New()

	api := upstream.NewClient(cfg, log)
	jwtService := jwt.NewService(cfg.JWTSecret, cfg.SessionTTL)

	// Sessions live in redis so they survive a gateway restart; when
	// redis is unreachable the gateway still runs with volatile ones.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisHost + ":" + cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	var sessions session.Store
	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unavailable, falling back to in-memory sessions: %v", err)
		_ = redisClient.Close()
		redisClient = nil
		sessions = session.NewMemoryStore()
	} else {
		sessions = session.NewRedisStore(redisClient, cfg.SessionTTL)
	}

	// Uploads are optional; without credentials the endpoint reports
	// itself unavailable.
	var s3Client *s3.Client
	if cfg.AWSAccessKeyID != "" || cfg.AWSEndpoint != "" {
		client, err := s3.NewClient(cfg)
		if err != nil {
			log.Warn("Failed to create S3 client, continuing without uploads: %v", err)
		} else {
			s3Client = client
		}
	}

	return &App{
		cfg:         cfg,
		log:         log,
		redisClient: redisClient,
		sessions:    sessions,
		carts:       cart.NewStore(),
		jwtService:  jwtService,
		api:         api,
		s3Client:    s3Client,
	}, nil
}

func (a *App) Run() error {
	// Initialize use cases
	authUseCase := usecase.NewAuthUseCase(a.api, a.sessions, a.jwtService, a.log)
	feedUseCase := usecase.NewFeedUseCase(a.api, a.sessions, a.log)
	shopUseCase := usecase.NewShopUseCase(a.api, a.carts, a.sessions, a.log)

	handler := gatewayHTTP.NewHandler(authUseCase, feedUseCase, shopUseCase, a.s3Client, a.log)

	// Setup router
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	{
		public := api.Group("")
		if a.redisClient != nil {
			public.Use(middleware.RateLimitMiddleware(a.redisClient, a.cfg.AuthRateLimit, a.cfg.AuthRateWindow))
		}
		{
			public.POST("/auth/signup", handler.Signup)
			public.POST("/auth/login", handler.Login)
			public.POST("/session", handler.GuestSession)
		}

		api.GET("/products", handler.ListProducts)
		api.POST("/products/seed", handler.SeedProducts)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.SessionMiddleware(a.jwtService))
		{
			protected.GET("/auth/me", handler.Me)
			protected.POST("/auth/logout", handler.Logout)

			protected.GET("/feed", handler.ListFeed)
			protected.POST("/posts", handler.CreatePost)
			protected.POST("/posts/:id/like", handler.LikePost)
			protected.POST("/uploads", handler.UploadImage)

			protected.GET("/cart", handler.GetCart)
			protected.POST("/cart/items", handler.AddCartItem)
			protected.POST("/checkout", handler.Checkout)
		}
	}

	a.httpServer = &http.Server{
		Addr:    ":" + a.cfg.ServerPort,
		Handler: r,
	}

	go func() {
		a.log.Info("Gateway starting on port %s (upstream %s)", a.cfg.ServerPort, a.cfg.UpstreamBaseURL)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	return nil
}

func (a *App) Wait() {
	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.log.Info("Shutting down gateway...")
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis: %v", err)
		}
	}

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("Server forced to shutdown: %v", err)
		return err
	}

	a.log.Info("Gateway exited")
	return nil
}

package main

import (
	"feedshop-gateway/internal/app"
	"feedshop-gateway/pkg/config"

	_ "feedshop-gateway/docs" // Swagger docs
)

// @title           Feedshop Gateway API
// @version         1.0
// @description     Session, feed, cart and checkout gateway in front of the feedshop upstream API

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the gateway session token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if cfg.JWTSecret == "your-secret-key-change-in-production" || cfg.JWTSecret == "" {
		panic("JWT_SECRET must be set in environment variables")
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		panic(err)
	}

	if err := application.Run(); err != nil {
		panic(err)
	}

	application.Wait()

	if err := application.Shutdown(); err != nil {
		panic(err)
	}
}

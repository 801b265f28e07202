package main

import (
	"context"
	"flag"
	"time"

	"feedshop-gateway/internal/upstream"
	"feedshop-gateway/pkg/config"
	"feedshop-gateway/pkg/logger"
)

// Seeds the upstream catalog and prints what came back, so a fresh
// environment has products to browse before the gateway is opened up.
func main() {
	timeout := flag.Duration("timeout", 30*time.Second, "overall timeout for seeding")
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load config: %v", err)
		panic(err)
	}

	api := upstream.NewClient(cfg, log)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	log.Info("Seeding catalog at %s", cfg.UpstreamBaseURL)
	if err := api.Seed(ctx); err != nil {
		log.Error("Seed failed: %v", err)
		panic(err)
	}

	products, err := api.ListProducts(ctx)
	if err != nil {
		log.Error("Failed to list products after seeding: %v", err)
		panic(err)
	}

	for _, p := range products {
		log.Info("  %s  $%.2f  (%s)", p.Title, p.Price, p.Category)
	}
	log.Info("Catalog seeded: %d products", len(products))
}

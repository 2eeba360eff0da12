package main

import (
	"context"
	"fmt"
	"log"

	"anishare-admin/core"
)

func main() {
	cfg := core.Load()
	ctx := context.Background()

	logCloser, err := core.SetupLogging(cfg, "admin.log")
	if err != nil {
		log.Fatalf("failed to setup logging: %v", err)
	}
	defer logCloser.Close()

	settings, err := core.LoadSiteSettings(cfg.SiteSettingsPath)
	if err != nil {
		log.Fatalf("failed to load site settings: %v", err)
	}
	cfg = settings.Apply(cfg)
	log.Printf("starting %s", settings.SiteTitle)

	// Credentials are resolved exactly once and injected everywhere as a value.
	creds := core.CredentialsFromConfig(cfg)

	db, err := core.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	redisClient, err := core.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer redisClient.Close()

	storage, err := core.NewStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init storage: %v", err)
	}

	works := core.NewPgWorkRepository(db)
	events := core.NewPgEventRepository(db)
	views := core.NewViewCounter(redisClient)

	router := core.NewRouter(cfg, creds, works, events, views, storage, db, redisClient)

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("starting admin api server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

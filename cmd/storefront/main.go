package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/trendbasket/storefront/internal/auth"
	"github.com/trendbasket/storefront/internal/cart"
	"github.com/trendbasket/storefront/internal/category"
	"github.com/trendbasket/storefront/internal/checkout"
	"github.com/trendbasket/storefront/internal/intent"
	"github.com/trendbasket/storefront/internal/products"
	"github.com/trendbasket/storefront/internal/voice"
	"github.com/trendbasket/storefront/pkg/config"
	"github.com/trendbasket/storefront/pkg/logger"
	"github.com/trendbasket/storefront/pkg/storage"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	store, err := storage.NewSQLite(cfg.Storage)
	if err != nil {
		logg.Error(context.Background(), "failed to open local storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logg.Error(context.Background(), "error closing local storage", err)
		}
	}()

	productsClient, err := products.NewClient(cfg.API, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create products client", err)
		os.Exit(1)
	}

	authClient, err := auth.NewClient(cfg.API)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth client", err)
		os.Exit(1)
	}

	authStore, err := auth.NewStore(auth.StoreParams{
		Client:  authClient,
		Storage: store,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth store", err)
		os.Exit(1)
	}
	authStore.InitializeFromStorage(context.Background())

	cartStore, err := cart.NewStore(store, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart store", err)
		os.Exit(1)
	}

	categoryStore := category.NewStore()

	intentClient, err := intent.NewClient(cfg.Intent, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create intent client", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Client:   productsClient,
		Cart:     cartStore,
		Checkout: cfg.Checkout,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	shell := newShell(shellParams{
		Config:   cfg,
		Logger:   logg,
		Products: productsClient,
		Auth:     authStore,
		Cart:     cartStore,
		Category: categoryStore,
		Checkout: checkoutService,
	})

	username := func() string {
		if state := authStore.State(); state.User != nil {
			return state.User.Username
		}
		return ""
	}

	pipeline, err := voice.NewPipeline(voice.PipelineParams{
		Recognizer:  shell.recognizer(),
		Synthesizer: shell.synthesizer(),
		Classifier:  intentClient,
		Categories:  categoryStore,
		Navigate:    shell.navigate,
		Username:    username,
		Speech:      cfg.Speech,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create voice pipeline", err)
		os.Exit(1)
	}
	shell.pipeline = pipeline

	ctx := logg.WithField(context.Background(), "env", cfg.App.Env)
	logg.Info(ctx, "storefront shell starting")

	if err := shell.Run(ctx); err != nil {
		logg.Error(ctx, "storefront shell stopped unexpectedly", err)
		os.Exit(1)
	}
}

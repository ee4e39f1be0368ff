package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hashhaven/aggregator"
	"hashhaven/cache"
	"hashhaven/cms"
	"hashhaven/config"
	"hashhaven/contact"
	"hashhaven/httpclient"
	"hashhaven/logger"
	"hashhaven/providers"
	"hashhaven/server"
)

// newBlogStore connects to Redis when an address is configured. An
// unreachable Redis only means a cold cache.
func newBlogStore(cfg *config.Config) cache.Store {
	if cfg.Redis.Addr == "" {
		return cache.NopStore{}
	}
	store := cache.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.CMS.CacheTTL)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		logger.Warn("Redis at %s not reachable yet: %v", cfg.Redis.Addr, err)
	}
	return store
}

func main() {
	cfg := config.Load()
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	client := httpclient.New(cfg.UpstreamTimeout)

	paypal := providers.NewPayPalProvider(providers.PayPalConfig{
		ClientID:      cfg.PayPal.ClientID,
		ClientSecret:  cfg.PayPal.ClientSecret,
		BaseURL:       cfg.PayPal.BaseURL,
		ReturnBaseURL: cfg.PublicBaseURL,
	}, client)
	mpesa := providers.NewMPesaProvider(providers.MPesaConfig{
		ConsumerKey:     cfg.MPesa.ConsumerKey,
		ConsumerSecret:  cfg.MPesa.ConsumerSecret,
		ShortCode:       cfg.MPesa.ShortCode,
		Passkey:         cfg.MPesa.Passkey,
		BaseURL:         cfg.MPesa.BaseURL,
		CallbackBaseURL: cfg.MPesa.CallbackBaseURL,
	}, client)

	store := newBlogStore(cfg)
	logger.Info("Blog cache: %s", cache.Describe(store))

	router := server.NewRouter(server.Deps{
		Payments:  aggregator.New(paypal, mpesa),
		Callbacks: aggregator.NewReceiver(),
		Contacts: contact.NewService(
			contact.NewSendGridMailer(cfg.Email.APIKey, cfg.Email.Endpoint, client),
			cfg.Email.From,
			cfg.Email.To,
		),
		Blog: cms.NewBlog(cms.NewClient(cfg.CMS.BaseURL, client), store),
	})
	router.RegisterRoutes()

	go func() {
		logger.Info("Starting server on port %s...", cfg.Port)
		if err := router.Listen(":" + cfg.Port); err != nil {
			logger.Error("Server stopped: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := router.Shutdown(ctx); err != nil {
		logger.Error("Shutdown: %v", err)
	}
	if rs, ok := store.(*cache.RedisStore); ok {
		rs.Close()
	}
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything the service reads from the environment.
// Credentials are not checked here; a missing key only surfaces when the
// upstream call that needs it fails.
type Config struct {
	Port            string
	LogLevel        string
	UpstreamTimeout time.Duration

	// PublicBaseURL is where customers are sent back to after a PayPal approval.
	PublicBaseURL string

	Email  EmailConfig
	PayPal PayPalConfig
	MPesa  MPesaConfig
	CMS    CMSConfig
	Redis  RedisConfig
}

// EmailConfig configures the outbound mail API.
type EmailConfig struct {
	APIKey   string
	Endpoint string
	From     string
	To       string
}

// PayPalConfig configures the card/wallet gateway.
type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
}

// MPesaConfig configures the mobile-money gateway.
type MPesaConfig struct {
	ConsumerKey    string
	ConsumerSecret string
	ShortCode      string
	Passkey        string
	BaseURL        string
	// CallbackBaseURL is the public origin M-Pesa posts STK results to.
	CallbackBaseURL string
}

// CMSConfig configures the WordPress backend used for the blog.
type CMSConfig struct {
	BaseURL  string
	CacheTTL time.Duration
}

// RedisConfig is optional; an empty Addr disables the blog cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load builds a Config from environment variables, falling back to defaults.
func Load() *Config {
	publicBase := strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:3000"), "/")

	return &Config{
		Port:            getEnv("PORT", "8080"),
		LogLevel:        strings.ToUpper(getEnv("LOG_LEVEL", "INFO")),
		UpstreamTimeout: getDuration("UPSTREAM_TIMEOUT", 30*time.Second),
		PublicBaseURL:   publicBase,
		Email: EmailConfig{
			APIKey:   os.Getenv("SENDGRID_API_KEY"),
			Endpoint: getEnv("SENDGRID_ENDPOINT", "https://api.sendgrid.com/v3/mail/send"),
			From:     getEnv("FROM_EMAIL", "noreply@hashhavenltd.com"),
			To:       getEnv("CONTACT_EMAIL", "info@hashhavenltd.com"),
		},
		PayPal: PayPalConfig{
			ClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
			ClientSecret: os.Getenv("PAYPAL_CLIENT_SECRET"),
			BaseURL:      strings.TrimRight(getEnv("PAYPAL_BASE_URL", "https://api-m.paypal.com"), "/"),
		},
		MPesa: MPesaConfig{
			ConsumerKey:     os.Getenv("MPESA_CONSUMER_KEY"),
			ConsumerSecret:  os.Getenv("MPESA_CONSUMER_SECRET"),
			ShortCode:       os.Getenv("MPESA_SHORTCODE"),
			Passkey:         os.Getenv("MPESA_PASSKEY"),
			BaseURL:         strings.TrimRight(getEnv("MPESA_BASE_URL", "https://sandbox.safaricom.co.ke"), "/"),
			CallbackBaseURL: strings.TrimRight(getEnv("MPESA_CALLBACK_BASE_URL", publicBase), "/"),
		},
		CMS: CMSConfig{
			BaseURL:  strings.TrimRight(getEnv("WORDPRESS_API_URL", "https://hashhavenltd.com/wp-json/wp/v2"), "/"),
			CacheTTL: getDuration("CMS_CACHE_TTL", 5*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

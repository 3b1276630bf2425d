package cmd

import (
	"errors"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrPaymentSaltRequired is returned when payment notifications could not be
// authenticated because no HitPay salt is configured.
var ErrPaymentSaltRequired = errors.New("HITPAY_SALT is required unless PAYMENT_MOCK_MODE is on")

// Config is read once at start-up and passed by value; nothing below cmd reads
// the environment.
type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	LogLevel   slog.Level

	PublicBaseURL  string
	PricingVariant string

	HitPayAPIURL    string
	HitPayAPIKey    string
	HitPaySalt      string
	PaymentMockMode bool

	DetrackAPIURL        string
	DetrackAPIKey        string
	DetrackWebhookSecret string
	DetrackGroupName     string
	ProviderTimeout      time.Duration

	DispatchMaxAttempts   int
	DispatchBaseDelay     time.Duration
	DispatchConcurrency   int
	DispatchRunTimeout    time.Duration
	DispatchRetrySchedule string
	DispatchRetryBatch    int
	DispatchRetryMinAge   time.Duration

	AMQPURL      string
	AMQPExchange string

	ResolverCacheSize int
}

var configDefaults = map[string]any{
	"HTTP_PORT":               "8080",
	"DB_HOST":                 "localhost",
	"DB_PORT":                 "5432",
	"DB_USER":                 "postgres",
	"DB_PASSWORD":             "",
	"DB_NAME":                 "fulfillment",
	"DB_SSLMODE":              "disable",
	"LOG_LEVEL":               "info",
	"PUBLIC_BASE_URL":         "http://localhost:8080",
	"PRICING_VARIANT":         "weight",
	"HITPAY_API_URL":          "https://api.sandbox.hit-pay.com/v1/payment-requests",
	"HITPAY_API_KEY":          "",
	"HITPAY_SALT":             "",
	"PAYMENT_MOCK_MODE":       false,
	"DETRACK_API_URL":         "https://app.detrack.com/api/v2/dn/jobs",
	"DETRACK_API_KEY":         "",
	"DETRACK_WEBHOOK_SECRET":  "",
	"DETRACK_GROUP_NAME":      "",
	"PROVIDER_TIMEOUT":        "30s",
	"DISPATCH_MAX_ATTEMPTS":   3,
	"DISPATCH_BASE_DELAY":     "500ms",
	"DISPATCH_CONCURRENCY":    4,
	"DISPATCH_RUN_TIMEOUT":    "2m",
	"DISPATCH_RETRY_SCHEDULE": "0 * * * * *",
	"DISPATCH_RETRY_BATCH":    25,
	"DISPATCH_RETRY_MIN_AGE":  "5m",
	"AMQP_URL":                "",
	"AMQP_EXCHANGE":           "fulfillment.events",
	"RESOLVER_CACHE_SIZE":     1024,
}

// LoadConfig reads envFile when it exists and then the process environment,
// which wins over the file.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	v := viper.New()
	for key, value := range configDefaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(v.GetString("LOG_LEVEL")))); err != nil {
		return Config{}, err
	}

	config := Config{
		HTTPPort:   v.GetString("HTTP_PORT"),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSslMode:  v.GetString("DB_SSLMODE"),
		LogLevel:   level,

		PublicBaseURL:  v.GetString("PUBLIC_BASE_URL"),
		PricingVariant: v.GetString("PRICING_VARIANT"),

		HitPayAPIURL:    v.GetString("HITPAY_API_URL"),
		HitPayAPIKey:    v.GetString("HITPAY_API_KEY"),
		HitPaySalt:      v.GetString("HITPAY_SALT"),
		PaymentMockMode: v.GetBool("PAYMENT_MOCK_MODE"),

		DetrackAPIURL:        v.GetString("DETRACK_API_URL"),
		DetrackAPIKey:        v.GetString("DETRACK_API_KEY"),
		DetrackWebhookSecret: v.GetString("DETRACK_WEBHOOK_SECRET"),
		DetrackGroupName:     v.GetString("DETRACK_GROUP_NAME"),
		ProviderTimeout:      v.GetDuration("PROVIDER_TIMEOUT"),

		DispatchMaxAttempts:   v.GetInt("DISPATCH_MAX_ATTEMPTS"),
		DispatchBaseDelay:     v.GetDuration("DISPATCH_BASE_DELAY"),
		DispatchConcurrency:   v.GetInt("DISPATCH_CONCURRENCY"),
		DispatchRunTimeout:    v.GetDuration("DISPATCH_RUN_TIMEOUT"),
		DispatchRetrySchedule: v.GetString("DISPATCH_RETRY_SCHEDULE"),
		DispatchRetryBatch:    v.GetInt("DISPATCH_RETRY_BATCH"),
		DispatchRetryMinAge:   v.GetDuration("DISPATCH_RETRY_MIN_AGE"),

		AMQPURL:      v.GetString("AMQP_URL"),
		AMQPExchange: v.GetString("AMQP_EXCHANGE"),

		ResolverCacheSize: v.GetInt("RESOLVER_CACHE_SIZE"),
	}

	if config.HitPaySalt == "" && !config.PaymentMockMode {
		return Config{}, ErrPaymentSaltRequired
	}
	return config, nil
}

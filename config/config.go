package config

import (
	"time"

	"paygate/internal/domain/credentials"

	"github.com/caarlos0/env/v11"
)

// Config is read once from the environment. Provider credentials are optional
// here: a missing key only disables that provider, reported per request.
type Config struct {
	Port      int    `env:"PORT" envDefault:"3000"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	AppEnv       string `env:"APP_ENV" envDefault:"sandbox"`
	AppBaseURL   string `env:"APP_BASE_URL"`
	CallbackPath string `env:"CALLBACK_PATH" envDefault:"/payments/callback"`
	CancelPath   string `env:"CANCEL_PATH" envDefault:"/payments/cancel"`

	StripeSecretKey      string `env:"STRIPE_SECRET_KEY"`
	StripePublishableKey string `env:"STRIPE_PUBLISHABLE_KEY"`
	StripeAPIBaseURL     string `env:"STRIPE_API_BASE_URL"`

	PayPalClientID     string `env:"PAYPAL_CLIENT_ID"`
	PayPalClientSecret string `env:"PAYPAL_CLIENT_SECRET"`
	PayPalAPIBaseURL   string `env:"PAYPAL_API_BASE_URL"`
	PayPalBrandName    string `env:"PAYPAL_BRAND_NAME"`

	PaystackSecretKey  string `env:"PAYSTACK_SECRET_KEY"`
	PaystackPublicKey  string `env:"PAYSTACK_PUBLIC_KEY"`
	PaystackAPIBaseURL string `env:"PAYSTACK_API_BASE_URL"`

	TokenTimeout   time.Duration `env:"TOKEN_TIMEOUT" envDefault:"5s"`
	SessionTimeout time.Duration `env:"SESSION_TIMEOUT" envDefault:"15s"`

	BreakerEnabled     bool          `env:"BREAKER_ENABLED" envDefault:"true"`
	BreakerFailures    uint32        `env:"BREAKER_FAILURES" envDefault:"5"`
	BreakerOpenTimeout time.Duration `env:"BREAKER_OPEN_TIMEOUT" envDefault:"30s"`

	// Empty PG_URL, REDIS_ADDR or KAFKA_BROKERS disables that component.
	PgURL     string `env:"PG_URL"`
	PgPoolMax int    `env:"PG_POOL_MAX" envDefault:"10"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	KafkaBrokers       []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaSessionsTopic string   `env:"KAFKA_SESSIONS_TOPIC" envDefault:"checkout.sessions"`
}

func New() (Config, error) {
	c, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}

	return c, nil
}

func (c Config) Credentials() credentials.Credentials {
	return credentials.Credentials{
		Environment: credentials.ParseEnvironment(c.AppEnv),
		AppBaseURL:  c.AppBaseURL,
		Stripe: credentials.Stripe{
			SecretKey:      c.StripeSecretKey,
			PublishableKey: c.StripePublishableKey,
			APIBaseURL:     c.StripeAPIBaseURL,
		},
		PayPal: credentials.PayPal{
			ClientID:     c.PayPalClientID,
			ClientSecret: c.PayPalClientSecret,
			APIBaseURL:   c.PayPalAPIBaseURL,
		},
		Paystack: credentials.Paystack{
			SecretKey:  c.PaystackSecretKey,
			PublicKey:  c.PaystackPublicKey,
			APIBaseURL: c.PaystackAPIBaseURL,
		},
	}
}

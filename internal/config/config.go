package config

import "time"

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Log         Log
	HTTP        HTTPServer

	// Marketplace is the upstream REST API holding the authoritative cart
	// and payment records.
	MarketplaceBaseURL string `env:"MARKETPLACE_BASE_URL"`

	Currency    string `env:"CURRENCY" envDefault:"NGN"`
	PaymentType string `env:"PAYMENT_TYPE" envDefault:"videocv"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	Paystack Paystack `envPrefix:"PAYSTACK_"`
	Redis    Redis    `envPrefix:"REDIS_"`
	Postgres Postgres `envPrefix:"POSTGRES_"`
	Kafka    Kafka    `envPrefix:"KAFKA_"`
}

type Log struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

type Paystack struct {
	BaseAPIURL string `env:"BASE_API_URL" envDefault:"https://api.paystack.co"`
	SecretKey  string `env:"SECRET_KEY"`
}

type Redis struct {
	Addr     string `env:"ADDR"` // empty means in-memory cart storage
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type Postgres struct {
	Host              string `env:"HOST" envDefault:"localhost"`
	Port              int    `env:"PORT" envDefault:"5432"`
	User              string `env:"USER" envDefault:"cartd"`
	Password          string `env:"PASSWORD"`
	DBName            string `env:"DB_NAME" envDefault:"cartd"`
	MigrationsDirPath string `env:"MIGRATIONS_DIR" envDefault:"internal/journal/migrations"`
}

type Kafka struct {
	Brokers []string `env:"BROKERS" envSeparator:","` // empty disables the outbox publisher
}

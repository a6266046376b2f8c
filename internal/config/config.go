package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENV" default:"production"`

	DBConnectionString string `envconfig:"DB_CONNECTION_STRING" required:"true"`
	RunMigrations      bool   `envconfig:"RUN_MIGRATIONS" default:"false"`

	// HS secret or PEM public key of the auth provider
	JWTSecret string `envconfig:"SUPABASE_JWT_SECRET" required:"true"`

	// Supabase storage through its S3 protocol endpoint
	S3URL          string        `envconfig:"S3_URL"`
	S3Bucket       string        `envconfig:"S3_BUCKET" default:"contracts"`
	S3Region       string        `envconfig:"S3_REGION" default:"us-east-1"`
	S3AccessKey    string        `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey    string        `envconfig:"S3_SECRET_KEY"`
	ContractURLTTL time.Duration `envconfig:"CONTRACT_URL_TTL" default:"15m"`

	// AI generation endpoint
	AIGenerationURL  string        `envconfig:"AI_GENERATION_URL" required:"true"`
	AIAPIKey         string        `envconfig:"AI_API_KEY"`
	AIAPIKeySecret   string        `envconfig:"AI_API_KEY_SECRET"` // Secret Manager secret id, used when AI_API_KEY is empty
	AIRequestTimeout time.Duration `envconfig:"AI_REQUEST_TIMEOUT" default:"60s"`

	// Pub/Sub
	GCPProjectID                  string `envconfig:"GCP_PROJECT_ID"`
	PubSubGenerationTopic         string `envconfig:"PUBSUB_GENERATION_TOPIC" default:"content-generation"`
	PubSubGenerationSubscription  string `envconfig:"PUBSUB_GENERATION_SUBSCRIPTION" default:"content-generation-worker"`
	PubSubEmulatorHost            string `envconfig:"PUBSUB_EMULATOR_HOST"`
	PubSubPushAudience            string `envconfig:"PUBSUB_PUSH_AUDIENCE"`
	PubSubPushServiceAccountEmail string `envconfig:"PUBSUB_PUSH_SERVICE_ACCOUNT_EMAIL"`

	// Stripe
	StripeSecretKey     string `envconfig:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`
	StripePricePro      string `envconfig:"STRIPE_PRICE_PRO"`
	StripeReturnURL     string `envconfig:"STRIPE_RETURN_URL" default:"http://localhost:3000/settings/billing"`

	// Checklist read cache; in-process when REDIS_URL is empty
	RedisURL          string        `envconfig:"REDIS_URL"`
	ChecklistCacheTTL time.Duration `envconfig:"CHECKLIST_CACHE_TTL" default:"5m"`

	// Generation worker
	GenerationMaxRetries     int           `envconfig:"GENERATION_MAX_RETRIES" default:"5"`
	GenerationBackoffInitial time.Duration `envconfig:"GENERATION_BACKOFF_INITIAL" default:"1s"`
	GenerationBackoffMax     time.Duration `envconfig:"GENERATION_BACKOFF_MAX" default:"60s"`
	GenerationMaxOutstanding int           `envconfig:"GENERATION_MAX_OUTSTANDING" default:"4"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment reports whether the service runs locally.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// StorageEnabled reports whether contract storage is configured.
func (c *Config) StorageEnabled() bool {
	return c.S3URL != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// PubSubEnabled reports whether asynchronous generation is configured.
func (c *Config) PubSubEnabled() bool {
	return c.GCPProjectID != ""
}

// BillingEnabled reports whether Stripe is configured.
func (c *Config) BillingEnabled() bool {
	return c.StripeSecretKey != ""
}

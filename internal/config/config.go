package config

import (
	"fmt"
	"os"
	"path/filepath"

	pkgconfig "github.com/acdc-digital/solopro-sub000/pkg/config"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	JWT      JWTConfig      `yaml:"jwt"`
	Redis    RedisConfig    `yaml:"redis"`
	Replay   ReplayConfig   `yaml:"replay"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	Output      string `yaml:"output"`
	FilePath    string `yaml:"file_path"`
	Development bool   `yaml:"development"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

type ReplayConfig struct {
	BatchSize int `yaml:"batch_size"`
}

func LoadConfig() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/billing.yaml"
	}

	// Ensure absolute path
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data, pkgconfig.NewEnv("billing"))
}

// Parse decodes YAML config data and applies environment overrides on top.
func Parse(data []byte, env pkgconfig.Env) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if env != nil {
		cfg.applyEnv(env)
	}
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overrides secrets and deployment-specific values, e.g.
// BILLING_SERVICE_STRIPE_WEBHOOK_SECRET or BILLING_DATABASE_PASSWORD.
func (c *Config) applyEnv(env pkgconfig.Env) {
	overrideString(env, "service.environment", &c.Service.Environment)
	overrideString(env, "service.stripe_secret_key", &c.Service.StripeSecretKey)
	overrideString(env, "service.stripe_webhook_secret", &c.Service.StripeWebhookSecret)
	overrideString(env, "service.identity.unresolved_policy", &c.Service.Identity.UnresolvedPolicy)
	overrideString(env, "database.host", &c.Database.Host)
	overrideString(env, "database.name", &c.Database.Name)
	overrideString(env, "database.user", &c.Database.User)
	overrideString(env, "database.password", &c.Database.Password)
	overrideString(env, "jwt.secret", &c.JWT.Secret)
	overrideString(env, "redis.addr", &c.Redis.Addr)
	overrideString(env, "redis.password", &c.Redis.Password)
	overrideString(env, "log.level", &c.Log.Level)

	if env.IsSet("database.port") {
		c.Database.Port = env.GetInt("database.port")
	}
	if env.IsSet("service.enable_test_endpoints") {
		c.Service.EnableTestEndpoints = env.GetBool("service.enable_test_endpoints")
	}
}

func overrideString(env pkgconfig.Env, key string, dst *string) {
	if v := env.GetString(key); v != "" {
		*dst = v
	}
}

func (c *Config) setDefaults() {
	if c.Service.Name == "" {
		c.Service.Name = "billing"
	}
	if c.Service.Environment == "" {
		c.Service.Environment = "development"
	}
	if c.Service.Identity.UnresolvedPolicy == "" {
		c.Service.Identity.UnresolvedPolicy = UnresolvedPolicyFail
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Redis.Channel == "" {
		c.Redis.Channel = "billing.subscription"
	}
	if c.Replay.BatchSize <= 0 {
		c.Replay.BatchSize = 50
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// Validate rejects configurations that must never reach production.
func (c *Config) Validate() error {
	switch c.Service.Identity.UnresolvedPolicy {
	case UnresolvedPolicyFail:
	case UnresolvedPolicyUseFirst:
		if c.Service.IsProduction() {
			return fmt.Errorf("identity.unresolved_policy %q is not allowed in production", UnresolvedPolicyUseFirst)
		}
	default:
		return fmt.Errorf("unknown identity.unresolved_policy %q", c.Service.Identity.UnresolvedPolicy)
	}

	// The payments and subscription routes are always mounted.
	if c.Service.IsProduction() && c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required in production (set BILLING_JWT_SECRET)")
	}
	return nil
}

package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	ApplicationPolicyOpen      = "open"
	ApplicationPolicyExclusive = "exclusive"
)

type Config struct {
	HTTPAddr      string   `mapstructure:"http_addr"`
	DatabaseURL   string   `mapstructure:"database_url"`
	StorageDriver string   `mapstructure:"storage_driver"`
	RedisAddr     string   `mapstructure:"redis_addr"`
	RedisPassword string   `mapstructure:"redis_password"`
	JWTSecret     string   `mapstructure:"jwt_secret"`
	CORSOrigins   []string `mapstructure:"cors_origins"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	ModerationEnabled      bool   `mapstructure:"moderation_enabled"`
	ApplicationPolicy      string `mapstructure:"application_policy"`
	PaymentCallbackBaseURL string `mapstructure:"payment_callback_base_url"`
	ProPlanPrice           string `mapstructure:"pro_plan_price"`

	MetricsUser     string `mapstructure:"metrics_user"`
	MetricsPassword string `mapstructure:"metrics_password"`
	RateLimitRPS    int    `mapstructure:"rate_limit_rps"`
	RateLimitBurst  int    `mapstructure:"rate_limit_burst"`
}

var keys = []string{
	"http_addr", "database_url", "storage_driver", "redis_addr", "redis_password",
	"jwt_secret", "cors_origins", "log_level", "log_format", "moderation_enabled",
	"application_policy", "payment_callback_base_url", "pro_plan_price",
	"metrics_user", "metrics_password", "rate_limit_rps", "rate_limit_burst",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("storage_driver", StorageDriverPostgres)
	v.SetDefault("cors_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("moderation_enabled", false)
	v.SetDefault("application_policy", ApplicationPolicyOpen)
	v.SetDefault("payment_callback_base_url", "http://localhost:8080/api/payments/gateway")
	v.SetDefault("pro_plan_price", "10.00")
	v.SetDefault("rate_limit_rps", 10)
	v.SetDefault("rate_limit_burst", 20)
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only applies to keys viper already knows about.
	for _, k := range keys {
		if err := v.BindEnv(k, strings.ToUpper(k)); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", k, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for storage driver %q", c.StorageDriver)
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}

	switch c.ApplicationPolicy {
	case ApplicationPolicyOpen, ApplicationPolicyExclusive:
	default:
		return fmt.Errorf("unknown application policy %q", c.ApplicationPolicy)
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

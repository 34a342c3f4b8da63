package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string        `mapstructure:"PORT"`
	Env             string        `mapstructure:"ENV"`
	JWTSecret       string        `mapstructure:"JWT_SECRET"`
	TokenTTL        time.Duration `mapstructure:"TOKEN_TTL"`
	CORSOrigins     []string      `mapstructure:"CORS_ORIGINS"`
	EventBufferSize int           `mapstructure:"EVENT_BUFFER_SIZE"`
	WSWriteTimeout  time.Duration `mapstructure:"WS_WRITE_TIMEOUT"`
	SeedDemoData    bool          `mapstructure:"SEED_DEMO_DATA"`
	SeedDoctorCount int           `mapstructure:"SEED_DOCTOR_COUNT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "4000")
	v.SetDefault("ENV", "development")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", "8h")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("EVENT_BUFFER_SIZE", 256)
	v.SetDefault("WS_WRITE_TIMEOUT", "10s")
	v.SetDefault("SEED_DEMO_DATA", true)
	v.SetDefault("SEED_DOCTOR_COUNT", 8)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("TOKEN_TTL")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("EVENT_BUFFER_SIZE")
	v.BindEnv("WS_WRITE_TIMEOUT")
	v.BindEnv("SEED_DEMO_DATA")
	v.BindEnv("SEED_DOCTOR_COUNT")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.JWTSecret == "" && cfg.IsDev() {
		cfg.JWTSecret = "dev-secret"
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. Outside development
// a real JWT_SECRET must be provided so that bearer tokens cannot be forged.
func (c *Config) Validate() error {
	if !c.IsDev() && (c.JWTSecret == "" || c.JWTSecret == "dev-secret") {
		return fmt.Errorf("JWT_SECRET must be set when ENV=%q", c.Env)
	}
	if c.EventBufferSize <= 0 {
		return fmt.Errorf("EVENT_BUFFER_SIZE must be positive, got %d", c.EventBufferSize)
	}
	if c.WSWriteTimeout <= 0 {
		return fmt.Errorf("WS_WRITE_TIMEOUT must be positive, got %s", c.WSWriteTimeout)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	return nil
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName        string
	AppEnv         string
	AppPort        string
	DatabaseURL    string
	RedisURL       string
	NATSURL        string
	NATSSubject    string
	JWTSecret      string
	JWTTTL         time.Duration
	CacheTTL       time.Duration
	ActivityBuffer int
	SubmitLimit    int
	AdminUsername  string
	AdminPassword  string
	SeedEnabled    bool
	SeedToken      string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EVALINK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "EvaLink API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "3001")
	v.SetDefault("nats.subject", "evalink.activity")
	v.SetDefault("jwt.ttl", "24h")
	v.SetDefault("cache.ttl", "2m")
	v.SetDefault("activity.buffer", 64)
	v.SetDefault("submit.limit", 20)
	v.SetDefault("seed.enabled", false)

	jwtTTL, err := parseDuration(v, "jwt.ttl", "24h")
	if err != nil {
		return Config{}, fmt.Errorf("invalid jwt ttl: %w", err)
	}

	cacheTTL, err := parseDuration(v, "cache.ttl", "2m")
	if err != nil {
		return Config{}, fmt.Errorf("invalid cache ttl: %w", err)
	}

	cfg := Config{
		AppName:        v.GetString("app.name"),
		AppEnv:         v.GetString("app.env"),
		AppPort:        v.GetString("app.port"),
		DatabaseURL:    v.GetString("database.url"),
		RedisURL:       v.GetString("redis.url"),
		NATSURL:        v.GetString("nats.url"),
		NATSSubject:    v.GetString("nats.subject"),
		JWTSecret:      v.GetString("jwt.secret"),
		JWTTTL:         jwtTTL,
		CacheTTL:       cacheTTL,
		ActivityBuffer: v.GetInt("activity.buffer"),
		SubmitLimit:    v.GetInt("submit.limit"),
		AdminUsername:  strings.TrimSpace(v.GetString("admin.username")),
		AdminPassword:  v.GetString("admin.password"),
		SeedEnabled:    v.GetBool("seed.enabled"),
		SeedToken:      strings.TrimSpace(v.GetString("seed.token")),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.ActivityBuffer <= 0 {
		cfg.ActivityBuffer = 64
	}

	if cfg.SubmitLimit <= 0 {
		cfg.SubmitLimit = 20
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key, fallback string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		raw = fallback
	}
	return time.ParseDuration(raw)
}

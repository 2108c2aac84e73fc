package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvDevelopment disables Secure session cookies so the app works over plain http locally.
const EnvDevelopment = "development"

const defaultAddr = "0.0.0.0:5000"

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr        string
		Env         string
		CORSOrigins []string
	}
	Database struct {
		Path string
	}
	Auth struct {
		JWTSecret string
		TokenTTL  time.Duration
	}
	Storage struct {
		Bucket        string
		KeyPrefix     string
		Region        string
		Endpoint      string
		PublicBaseURL string
	}
	AWS struct {
		Profile string
	}
	Log struct {
		Level string
	}
}

// legacyEnv maps keys to the unprefixed variable names deployments already use.
var legacyEnv = map[string][]string{
	"server.env":     {"SOCIAL_SERVER_ENV", "APP_ENV", "NODE_ENV"},
	"auth.jwtsecret": {"SOCIAL_AUTH_JWTSECRET", "JWT_SECRET"},
	"database.path":  {"SOCIAL_DATABASE_PATH", "DATABASE_PATH"},
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	// .env never overrides variables that are already set
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SOCIAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range legacyEnv {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	// keys without a default are unknown to Unmarshal unless bound
	if err := v.BindEnv("server.addr"); err != nil {
		return Config{}, fmt.Errorf("bind env server.addr: %w", err)
	}
	if err := v.BindEnv("port", "PORT"); err != nil {
		return Config{}, fmt.Errorf("bind env port: %w", err)
	}

	v.SetDefault("server.env", "production")
	v.SetDefault("server.corsorigins", []string{})
	v.SetDefault("database.path", "data/social.db")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttl", "360h")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "social-media")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.publicbaseurl", "")
	v.SetDefault("aws.profile", "")
	v.SetDefault("log.level", "info")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultAddr
		if port := strings.TrimSpace(v.GetString("port")); port != "" {
			cfg.Server.Addr = ":" + port
		}
	}
	cfg.Server.CORSOrigins = splitList(v.GetStringSlice("server.corsorigins"))

	return cfg, nil
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("auth jwt secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth token ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	return nil
}

// IsDevelopment reports whether the server runs in the development environment.
func (c Config) IsDevelopment() bool {
	return c.Server.Env == EnvDevelopment
}

// splitList accepts both list values and a single comma separated env string.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

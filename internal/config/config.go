package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Mode     string
	HTTP     HTTPConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
}

type HTTPConfig struct {
	Host         string
	Port         int
	AllowOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Debug    bool
	Seed     bool
}

type JWTConfig struct {
	Secret    string
	ExpiresIn time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DSN builds the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// Address is host:port for the HTTP listener.
func (h HTTPConfig) Address() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// Release reports whether the server runs in gin release mode.
func (c *Config) Release() bool {
	return c.Mode == "release"
}

const devJWTSecret = "default_super_secret_key"

// Load reads configs/.env (when present) and the process environment.
// Environment variables use the upper-cased key with dots replaced by
// underscores, e.g. DATABASE_HOST or JWT_SECRET.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{"configs/.env"}
	}
	if err := godotenv.Load(envFiles...); err != nil {
		log.Debug("no env file loaded, using process environment")
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Mode: v.GetString("gin_mode"),
		HTTP: HTTPConfig{
			Host:         v.GetString("http.host"),
			Port:         v.GetInt("port"),
			AllowOrigins: v.GetStringSlice("http.allow_origins"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("db.host"),
			Port:     v.GetString("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			Name:     v.GetString("db.name"),
			SSLMode:  v.GetString("db.sslmode"),
			Debug:    v.GetBool("db.debug"),
			Seed:     v.GetBool("db.seed"),
		},
		JWT: JWTConfig{
			Secret:    v.GetString("jwt.secret"),
			ExpiresIn: v.GetDuration("jwt.expires_in"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
	}

	if cfg.JWT.Secret == "" {
		if cfg.Release() {
			return nil, fmt.Errorf("JWT_SECRET environment variable is required in release mode")
		}
		cfg.JWT.Secret = devJWTSecret
	}
	if cfg.JWT.ExpiresIn <= 0 {
		return nil, fmt.Errorf("jwt.expires_in must be positive, got %s", cfg.JWT.ExpiresIn)
	}

	log.WithFields(log.Fields{
		"mode":  cfg.Mode,
		"addr":  cfg.HTTP.Address(),
		"db":    cfg.Database.Host + ":" + cfg.Database.Port,
		"redis": cfg.Redis.Addr,
	}).Info("config parsed")

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("gin_mode", "debug")
	v.SetDefault("http.host", "")
	v.SetDefault("port", 3000)
	v.SetDefault("http.allow_origins", []string{"http://localhost:5173", "http://127.0.0.1:5173"})
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "postgres")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.debug", false)
	v.SetDefault("db.seed", false)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expires_in", 24*time.Hour)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
}

// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMinio    = "minio"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr       string        `validate:"required"`
	Env        string        `validate:"oneof=dev prod"`
	LogLevel   string        `validate:"oneof=debug info warn error"`
	SessionTTL time.Duration `validate:"gte=0"`
	Store      Store
	Redis      RedisConfig
	Postgres   PostgresConfig
	Minio      MinioConfig
	Lookup     LookupConfig
	Kafka      KafkaConfig
}

// Store selects the persistence backend of the address book.
type Store struct {
	Backend string `validate:"oneof=memory redis postgres minio"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	URL          string `validate:"required_if=Enabled true"`
	Key          string
	PoolSize     int `validate:"gte=0"`
	MinIdleConns int `validate:"gte=0"`
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Enabled      bool
}

// PostgresConfig holds the PostgreSQL connection string.
type PostgresConfig struct {
	URL     string `validate:"required_if=Enabled true"`
	Name    string
	Enabled bool
}

// MinioConfig holds object storage settings.
type MinioConfig struct {
	Endpoint  string `validate:"required_if=Enabled true"`
	AccessKey string `validate:"required_if=Enabled true"`
	SecretKey string `validate:"required_if=Enabled true"`
	Bucket    string `validate:"required_if=Enabled true"`
	UseSSL    bool
	Enabled   bool
}

// LookupConfig selects the address source. An empty URL uses the built-in
// region generator.
type LookupConfig struct {
	URL     string `validate:"omitempty,url"`
	Latency time.Duration
}

// KafkaConfig enables change events when Brokers is set.
type KafkaConfig struct {
	Brokers []string `validate:"dive,hostname_port"`
	Topic   string
}

// Enabled reports whether a broker is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// FromEnv builds a Server config from environment variables so main stays
// lean. A .env file in the working directory is loaded first when present;
// real environment variables take precedence.
func FromEnv() (Server, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Server{}, fmt.Errorf("load .env: %w", err)
	}
	return Load(os.Getenv)
}

// Load builds and validates a Server config from getenv.
func Load(getenv func(string) string) (Server, error) {
	env := envSource(getenv)
	var errs []error

	cfg := Server{
		Addr:       env.str("ADDRESSBOOK_ADDR", ":8080"),
		Env:        env.str("ENV", "dev"),
		LogLevel:   strings.ToLower(env.str("LOG_LEVEL", "info")),
		SessionTTL: env.duration("SESSION_TTL", 30*time.Minute, &errs),
		Store:      Store{Backend: strings.ToLower(env.str("STORE_BACKEND", BackendMemory))},
		Redis: RedisConfig{
			URL:          env.str("REDIS_URL", ""),
			Key:          env.str("REDIS_KEY", "addressbook:entries"),
			PoolSize:     env.integer("REDIS_POOL_SIZE", 10, &errs),
			MinIdleConns: env.integer("REDIS_MIN_IDLE_CONNS", 2, &errs),
			DialTimeout:  env.duration("REDIS_DIAL_TIMEOUT", 5*time.Second, &errs),
			ReadTimeout:  env.duration("REDIS_READ_TIMEOUT", 3*time.Second, &errs),
			WriteTimeout: env.duration("REDIS_WRITE_TIMEOUT", 3*time.Second, &errs),
		},
		Postgres: PostgresConfig{
			URL:  env.str("DATABASE_URL", ""),
			Name: env.str("ADDRESSBOOK_NAME", "default"),
		},
		Minio: MinioConfig{
			Endpoint:  env.str("MINIO_ENDPOINT", ""),
			AccessKey: env.str("MINIO_ACCESS_KEY", ""),
			SecretKey: env.str("MINIO_SECRET_KEY", ""),
			Bucket:    env.str("MINIO_BUCKET", "addressbook"),
			UseSSL:    env.boolean("MINIO_USE_SSL", false, &errs),
		},
		Lookup: LookupConfig{
			URL:     env.str("LOOKUP_URL", ""),
			Latency: env.duration("LOOKUP_LATENCY", 0, &errs),
		},
		Kafka: KafkaConfig{
			Brokers: env.list("KAFKA_BROKERS"),
			Topic:   env.str("KAFKA_TOPIC", "addressbook.changes"),
		},
	}
	if len(errs) > 0 {
		return Server{}, errors.Join(errs...)
	}

	cfg.Redis.Enabled = cfg.Store.Backend == BackendRedis
	cfg.Postgres.Enabled = cfg.Store.Backend == BackendPostgres
	cfg.Minio.Enabled = cfg.Store.Backend == BackendMinio

	if err := validator.New().Struct(cfg); err != nil {
		return Server{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

type envSource func(string) string

func (l envSource) str(key, def string) string {
	if v := strings.TrimSpace(l(key)); v != "" {
		return v
	}
	return def
}

func (l envSource) list(key string) []string {
	raw := l.str(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (l envSource) integer(key string, def int, errs *[]error) int {
	raw := l.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return v
}

func (l envSource) duration(key string, def time.Duration, errs *[]error) time.Duration {
	raw := l.str(key, "")
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return v
}

func (l envSource) boolean(key string, def bool, errs *[]error) bool {
	raw := l.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return v
}

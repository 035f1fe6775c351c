package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration. Empty infrastructure URLs select the
// in-memory implementation of that dependency.
type Config struct {
	Server    Server
	Database  Database
	Redis     RedisConfig
	Kafka     Kafka
	AMQP      AMQP
	Log       Log
	Dedup     Dedup
	RateLimit RateLimit

	// SeedFile is a YAML file of canonical fields, products and sources
	// loaded at startup.
	SeedFile    string
	Environment string
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr               string
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
}

type Database struct {
	URL string
}

// RedisConfig holds the Redis connection and pool settings.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Kafka struct {
	Brokers []string
	Topic   string
}

type AMQP struct {
	URL string
}

type Log struct {
	Level  string
	Format string
}

type Dedup struct {
	LockTTL time.Duration
}

// RateLimit sets per client request limits. Zero keeps the default.
type RateLimit struct {
	Disabled         bool
	UploadsPerMinute int
	RunsPerMinute    int
}

// Load reads an optional .env file and then the environment. A missing
// .env file is not an error.
func Load(files ...string) Config {
	_ = godotenv.Load(files...)
	return FromEnv()
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:               getEnv("LEADHUB_ADDR", ":8080"),
			CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			ShutdownTimeout:    getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: Database{URL: os.Getenv("DATABASE_URL")},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: Kafka{
			Brokers: getList("KAFKA_BROKERS", nil),
			Topic:   getEnv("KAFKA_TOPIC", "leadhub.events"),
		},
		AMQP: AMQP{URL: os.Getenv("AMQP_URL")},
		Log: Log{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Dedup:       Dedup{LockTTL: getDuration("DEDUP_LOCK_TTL", 5*time.Minute)},
		RateLimit: RateLimit{
			Disabled:         getBool("RATE_LIMIT_DISABLED", false),
			UploadsPerMinute: getInt("RATE_LIMIT_UPLOADS_PER_MINUTE", 0),
			RunsPerMinute:    getInt("RATE_LIMIT_RUNS_PER_MINUTE", 0),
		},
		SeedFile:    os.Getenv("SEED_FILE"),
		Environment: getEnv("ENVIRONMENT", "local"),
	}
}

// IsLocal reports whether the process runs on a developer machine.
func (c Config) IsLocal() bool {
	return c.Environment == "local"
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// getList splits a comma separated value, dropping blanks.
func getList(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if strings.TrimSpace(raw) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything main needs to wire the process, read once from
// the environment.
type Config struct {
	Server ServerConfig
	Redis  RedisConfig
	Kafka  KafkaConfig
	Cart   CartConfig
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string
	LogLevel        string
	ShutdownTimeout time.Duration
}

// RedisConfig captures the cart store backend. An empty URL means Redis is
// not configured and carts live in process memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig captures the audit event sink. No brokers means audit events
// stay on the in-process worker.
type KafkaConfig struct {
	Brokers     []string
	TopicPrefix string
}

// CartConfig captures cart retention.
type CartConfig struct {
	TTL time.Duration
}

// FromEnv builds the full config from environment variables so main stays
// lean. Every variable has a development-friendly default.
func FromEnv() Config {
	return Config{
		Server: ServerConfig{
			Addr:            envString("STOREFRONT_ADDR", ":8080"),
			LogLevel:        envString("STOREFRONT_LOG_LEVEL", "info"),
			ShutdownTimeout: envDuration("STOREFRONT_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("STOREFRONT_REDIS_URL"),
			PoolSize:     envInt("STOREFRONT_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("STOREFRONT_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("STOREFRONT_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("STOREFRONT_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("STOREFRONT_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:     envList("STOREFRONT_KAFKA_BROKERS"),
			TopicPrefix: envString("STOREFRONT_KAFKA_TOPIC_PREFIX", "storefront.audit"),
		},
		Cart: CartConfig{
			TTL: envDuration("STOREFRONT_CART_TTL", 7*24*time.Hour),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

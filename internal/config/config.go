package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	OpenAI  OpenAIConfig  `koanf:"openai"`
	Redis   RedisConfig   `koanf:"redis"`
	Cache   CacheConfig   `koanf:"cache"`
	Session SessionConfig `koanf:"session"`
	Breaker BreakerConfig `koanf:"breaker"`
	Catalog CatalogConfig `koanf:"catalog"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

type OpenAIConfig struct {
	APIKey string `koanf:"api_key"`
	Model  string `koanf:"model"`
}

type RedisConfig struct {
	URL string `koanf:"url"`
}

type CacheConfig struct {
	TTLSeconds int `koanf:"ttl_seconds"`
	MaxSize    int `koanf:"max_size"`
}

type SessionConfig struct {
	TTLSeconds int `koanf:"ttl_seconds"`
	MaxPairs   int `koanf:"max_pairs"`
	// MaxMemory caps the in-memory session store entry count when Redis is unavailable.
	MaxMemory int `koanf:"max_memory"`
}

type BreakerConfig struct {
	FailureThreshold       int     `koanf:"failure_threshold"`
	RecoveryTimeoutSeconds float64 `koanf:"recovery_timeout_seconds"`
}

type CatalogConfig struct {
	Path string `koanf:"path"`
}

// TTL returns the result-cache TTL as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// TTL returns the session lifetime as a duration.
func (c SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// RecoveryTimeout returns the breaker recovery timeout as a duration.
func (c BreakerConfig) RecoveryTimeout() time.Duration {
	return time.Duration(c.RecoveryTimeoutSeconds * float64(time.Second))
}

// Load reads configuration from config.yaml (when present) and
// SHOPASSIST_-prefixed environment variables, env taking precedence.
func Load() (*Config, error) {
	return LoadFile("config.yaml")
}

// LoadFile is Load with an explicit config file path.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		// Missing file is fine, env vars and defaults still apply.
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if err := k.Load(env.Provider("SHOPASSIST_", ".", func(s string) string {
		// Keys are exactly two levels deep (section.field). Only the first
		// underscore separates section from field; the rest belong to the
		// field name (api_key, ttl_seconds, recovery_timeout_seconds).
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "SHOPASSIST_")), "_", ".", 1)
	}), nil); err != nil {
		return nil, err
	}

	applyDefaults(k)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(k *koanf.Koanf) {
	defaults := map[string]interface{}{
		"server.port":                      8080,
		"openai.model":                     "gpt-4o-mini",
		"redis.url":                        "redis://localhost:6379/0",
		"cache.ttl_seconds":                3600,
		"cache.max_size":                   1000,
		"session.ttl_seconds":              1800,
		"session.max_pairs":                10,
		"session.max_memory":               200,
		"breaker.failure_threshold":        3,
		"breaker.recovery_timeout_seconds": 30.0,
		"catalog.path":                     "./data/catalog.db",
	}
	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}
}

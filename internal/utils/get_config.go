package utils

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	// Remote gateway
	GatewayURL     string `yaml:"GATEWAY_URL"`
	GatewayAnonKey string `yaml:"GATEWAY_ANON_KEY"`

	// Local snapshot cache
	CacheDriver string `yaml:"CACHE_DRIVER"` // "sqlite" or "redis"
	CachePath   string `yaml:"CACHE_PATH"`
	RedisAddr   string `yaml:"REDIS_ADDR"`
}

var config Config

func LoadConfig() {
	// .env overrides are optional; a missing file is fine.
	_ = godotenv.Load()

	file, err := os.ReadFile("config.yaml")
	if err != nil {
		log.Printf("Error reading YAML file: %s\n", err)
	} else if err := yaml.Unmarshal(file, &config); err != nil {
		log.Printf("Error parsing YAML file: %s\n", err)
	}

	applyEnvOverride("GATEWAY_URL", &config.GatewayURL)
	applyEnvOverride("GATEWAY_ANON_KEY", &config.GatewayAnonKey)
	applyEnvOverride("CACHE_DRIVER", &config.CacheDriver)
	applyEnvOverride("CACHE_PATH", &config.CachePath)
	applyEnvOverride("REDIS_ADDR", &config.RedisAddr)

	if config.CacheDriver == "" {
		config.CacheDriver = "sqlite"
	}
	if config.CachePath == "" {
		config.CachePath = "pantrysync.db"
	}
}

func applyEnvOverride(key string, target *string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}

func GetConfig(key string) string {
	switch key {
	case "GATEWAY_URL":
		return config.GatewayURL
	case "GATEWAY_ANON_KEY":
		return config.GatewayAnonKey
	case "CACHE_DRIVER":
		return config.CacheDriver
	case "CACHE_PATH":
		return config.CachePath
	case "REDIS_ADDR":
		return config.RedisAddr
	default:
		return ""
	}
}

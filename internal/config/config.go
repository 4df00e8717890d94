package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server     ServerConfig
	Worker     WorkerConfig
	Feeds      FeedsConfig
	Simulation SimulationConfig
	DB         DatabaseConfig
	Logging    LoggingConfig
}

type ServerConfig struct {
	Host      string
	Port      int
	RateLimit int // requests per second, global
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

type FeedsConfig struct {
	FIRMSEnabled      bool
	FIRMSURL          string
	FIRMSPollInterval time.Duration
	WeatherURL        string
	WeatherAPIKey     string
}

type SimulationConfig struct {
	ScatterRadiusKm float64 // radius of the risk distribution scatter
}

type DatabaseConfig struct {
	Path string
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:      getEnv("SERVER_HOST", "localhost"),
			Port:      getEnvInt("SERVER_PORT", 8080),
			RateLimit: getEnvInt("RATE_LIMIT_RPS", 5),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 2),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 50),
		},
		Feeds: FeedsConfig{
			FIRMSEnabled:      getEnvBool("FIRMS_ENABLED", true),
			FIRMSURL:          getEnv("FIRMS_URL", "https://firms.modaps.eosdis.nasa.gov/api/area/json"),
			FIRMSPollInterval: getEnvDuration("FIRMS_POLL_INTERVAL", 10*time.Minute),
			WeatherURL:        getEnv("WEATHER_URL", "https://api.openweathermap.org/data/2.5/weather"),
			WeatherAPIKey:     getEnv("WEATHER_API_KEY", ""),
		},
		Simulation: SimulationConfig{
			ScatterRadiusKm: getEnvFloat("SCATTER_RADIUS_KM", 10.0),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/wildfire-engine.db"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimit < 1 {
		return fmt.Errorf("rate limit must be at least 1 req/s, got %d", c.Server.RateLimit)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Feeds.FIRMSPollInterval < time.Minute {
		return fmt.Errorf("FIRMS poll interval must be at least 1 minute")
	}
	if c.Simulation.ScatterRadiusKm <= 0 {
		return fmt.Errorf("scatter radius must be positive, got %v", c.Simulation.ScatterRadiusKm)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

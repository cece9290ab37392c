package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/tunogya/salescast/pkg/forecast"
	"github.com/tunogya/salescast/pkg/model"
	"github.com/tunogya/salescast/pkg/predict"
)

// Config holds the process-wide settings shared by every command
type Config struct {
	WindowSize  int
	Horizon     int
	Parallelism int

	ModelURL       string
	Models         map[model.Tier]string
	RequestTimeout time.Duration

	DuckDBPath string
	NATSURL    string
	MilvusAddr string
	HTTPAddr   string
}

// Load reads an optional .env file, then the environment
func Load() *Config {
	// A missing .env is normal outside development
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from environment variables and built-in defaults
func FromEnv() *Config {
	fc := forecast.DefaultConfig()
	pc := predict.DefaultConfig()

	return &Config{
		WindowSize:  getEnvInt("SALESCAST_WINDOW_SIZE", fc.WindowSize),
		Horizon:     getEnvInt("SALESCAST_HORIZON", fc.Horizon),
		Parallelism: getEnvInt("SALESCAST_PARALLELISM", fc.Parallelism),

		ModelURL: getEnv("SALESCAST_MODEL_URL", pc.BaseURL),
		Models: map[model.Tier]string{
			model.TierLow:  getEnv("SALESCAST_MODEL_LOW", pc.Models[model.TierLow]),
			model.TierMid:  getEnv("SALESCAST_MODEL_MID", pc.Models[model.TierMid]),
			model.TierHigh: getEnv("SALESCAST_MODEL_HIGH", pc.Models[model.TierHigh]),
		},
		RequestTimeout: getEnvDuration("SALESCAST_REQUEST_TIMEOUT", pc.Timeout),

		DuckDBPath: getEnv("SALESCAST_DUCKDB", "salescast.duckdb"),
		NATSURL:    getEnv("SALESCAST_NATS_URL", "nats://localhost:4222"),
		MilvusAddr: getEnv("SALESCAST_MILVUS_ADDR", ""),
		HTTPAddr:   getEnv("SALESCAST_HTTP_ADDR", ":8080"),
	}
}

// Forecast returns the pipeline configuration
func (c *Config) Forecast() forecast.Config {
	return forecast.Config{
		WindowSize:  c.WindowSize,
		Horizon:     c.Horizon,
		Parallelism: c.Parallelism,
	}
}

// Predict returns the model configuration
func (c *Config) Predict() predict.Config {
	models := make(map[model.Tier]string, len(c.Models))
	for t, m := range c.Models {
		models[t] = m
	}
	return predict.Config{
		BaseURL: c.ModelURL,
		Timeout: c.RequestTimeout,
		Models:  models,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}

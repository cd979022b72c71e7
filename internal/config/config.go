package config

import (
	"os"
	"strconv"
)

// Config holds process-level settings read from the environment
type Config struct {
	ListenAddr string
	MongoURI   string
	MongoDB    string
	RedisURI   string
	ContentDir string
	CORS       CORSConfig
}

// CORSConfig holds the cross-origin response headers
type CORSConfig struct {
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// Load reads the process configuration. Empty MongoURI or RedisURI means the
// corresponding store is not configured and the in-memory fallback is used.
func Load() *Config {
	return &Config{
		ListenAddr: getEnvOrDefault("LISTEN_ADDR", ":8080"),
		MongoURI:   os.Getenv("MONGO_URI"),
		MongoDB:    getEnvOrDefault("MONGO_DB", "interviewprep"),
		RedisURI:   os.Getenv("REDIS_URI"),
		ContentDir: getEnvOrDefault("CONTENT_DIR", "./content"),
		CORS: CORSConfig{
			AllowedOrigins: getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnvOrDefault("CORS_ALLOWED_METHODS", "GET, POST, PUT, DELETE, OPTIONS"),
			AllowedHeaders: getEnvOrDefault("CORS_ALLOWED_HEADERS", "Content-Type, Authorization"),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Catalog   CatalogConfig
	Assistant AssistantConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	PoolMin  int
	PoolMax  int
}

// CatalogConfig holds remote listing catalog API configuration.
type CatalogConfig struct {
	BaseURL    string
	Token      string
	PageSize   int
	TotalLimit int
	FetchMedia bool
}

// AssistantConfig holds the text-understanding capability configuration.
type AssistantConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	TimeoutSeconds int
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present, then viper reads values
// with sensible defaults for development.
func Load() (*Config, error) {
	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	v := viper.New()

	// Set defaults for development
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "property_catalog")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("CATALOG_BASE_URL", "https://query.ampre.ca/odata")
	v.SetDefault("CATALOG_PAGE_SIZE", 100)
	v.SetDefault("CATALOG_TOTAL_LIMIT", 10000)
	v.SetDefault("CATALOG_FETCH_MEDIA", true)
	v.SetDefault("ASSISTANT_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("ASSISTANT_MODEL", "gpt-4o-mini")
	v.SetDefault("ASSISTANT_TIMEOUT_SECONDS", 15)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	// Bind environment variables
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
		Catalog: CatalogConfig{
			BaseURL:    v.GetString("CATALOG_BASE_URL"),
			Token:      v.GetString("CATALOG_TOKEN"),
			PageSize:   v.GetInt("CATALOG_PAGE_SIZE"),
			TotalLimit: v.GetInt("CATALOG_TOTAL_LIMIT"),
			FetchMedia: v.GetBool("CATALOG_FETCH_MEDIA"),
		},
		Assistant: AssistantConfig{
			BaseURL:        v.GetString("ASSISTANT_BASE_URL"),
			APIKey:         v.GetString("ASSISTANT_API_KEY"),
			Model:          v.GetString("ASSISTANT_MODEL"),
			TimeoutSeconds: v.GetInt("ASSISTANT_TIMEOUT_SECONDS"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if c.Database.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if c.Database.PoolMin > c.Database.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}

	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("CATALOG_BASE_URL is required")
	}
	if c.Catalog.PageSize < 1 {
		return fmt.Errorf("CATALOG_PAGE_SIZE must be at least 1")
	}
	if c.Catalog.TotalLimit < 1 {
		return fmt.Errorf("CATALOG_TOTAL_LIMIT must be at least 1")
	}

	if c.Assistant.BaseURL == "" {
		return fmt.Errorf("ASSISTANT_BASE_URL is required")
	}
	if c.Assistant.TimeoutSeconds < 1 {
		return fmt.Errorf("ASSISTANT_TIMEOUT_SECONDS must be at least 1")
	}

	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	return nil
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

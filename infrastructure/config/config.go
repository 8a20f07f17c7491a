package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion     string
	DynamoDBTable string
	IndexName     string // GSI1 - for profile-level queries
	GSI2IndexName string // GSI2 - for direct NodeID lookups
	EventBusName  string

	// Lambda configuration
	IsLambda           bool
	LambdaFunctionName string
	ColdStartTimeout   int // milliseconds

	// Embedding and generation backends
	EmbeddingEndpoint  string
	EmbeddingModel     string
	GenerationEndpoint string
	GenerationModel    string

	// Autolink
	DefaultPreset    string
	RecentIdeaWindow int

	// Logging
	LogLevel string

	// Feature flags
	EnableMetrics bool
	EnableTracing bool
	EnableCORS    bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", "ideaweaver")),
		IndexName:     getEnv("INDEX_NAME", "ProfileIndex"),
		GSI2IndexName: getEnv("GSI2_INDEX_NAME", "EdgeIndex"),
		EventBusName:  getEnv("EVENT_BUS_NAME", "ideaweaver-events"),

		// Lambda configuration
		IsLambda:           getEnvBool("IS_LAMBDA", false),
		LambdaFunctionName: getEnv("AWS_LAMBDA_FUNCTION_NAME", ""),
		ColdStartTimeout:   getEnvInt("COLD_START_TIMEOUT", 3000),

		// Model backends
		EmbeddingEndpoint:  getEnv("EMBEDDING_ENDPOINT", "http://localhost:11434"),
		EmbeddingModel:     getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
		GenerationEndpoint: getEnv("GENERATION_ENDPOINT", "http://localhost:11434"),
		GenerationModel:    getEnv("GENERATION_MODEL", "llama3.1"),

		// Autolink
		DefaultPreset:    getEnv("AUTOLINK_PRESET", "default"),
		RecentIdeaWindow: getEnvInt("RECENT_IDEA_WINDOW", 200),

		// Logging and features
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", false),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig for backwards compatibility
func Load() (*Config, error) {
	return LoadConfig()
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required")
		}
		if c.EventBusName == "" {
			return fmt.Errorf("EVENT_BUS_NAME is required")
		}
		if c.EmbeddingEndpoint == "" {
			return fmt.Errorf("EMBEDDING_ENDPOINT is required")
		}
	}
	if c.RecentIdeaWindow < 0 {
		return fmt.Errorf("RECENT_IDEA_WINDOW cannot be negative")
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion     string
	DynamoDBTable string
	IndexName     string // GSI1 - lookups by entity ID
	EventBusName  string

	// Lambda configuration
	IsLambda           bool
	LambdaFunctionName string

	// Classifier configuration
	ClassifierEndpoint string
	ClassifierAPIKey   string
	ClassifierModel    string
	ClassifierTimeout  time.Duration

	// Maintenance scheduling
	CycleInterval time.Duration

	// Logging
	LogLevel string

	// Authentication
	JWTSecret string
	JWTIssuer string

	// Feature flags
	EnableMetrics bool
	EnableCORS    bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", "neurovault")),
		IndexName:     getEnv("INDEX_NAME", "GSI1"),
		EventBusName:  getEnv("EVENT_BUS_NAME", "neurovault-events"),

		// Lambda configuration
		IsLambda:           getEnvBool("IS_LAMBDA", false),
		LambdaFunctionName: getEnv("AWS_LAMBDA_FUNCTION_NAME", ""),

		// Classifier
		ClassifierEndpoint: getEnv("CLASSIFIER_ENDPOINT", ""),
		ClassifierAPIKey:   getEnv("CLASSIFIER_API_KEY", ""),
		ClassifierModel:    getEnv("CLASSIFIER_MODEL", "gpt-4o-mini"),
		ClassifierTimeout:  getEnvDuration("CLASSIFIER_TIMEOUT", 60*time.Second),

		// Maintenance
		CycleInterval: getEnvDuration("CYCLE_INTERVAL", 24*time.Hour),

		// Authentication
		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "neurovault"),

		// Logging and features
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", false),
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
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required")
		}
		if c.EventBusName == "" {
			return fmt.Errorf("EVENT_BUS_NAME is required")
		}
		if c.ClassifierEndpoint == "" {
			return fmt.Errorf("CLASSIFIER_ENDPOINT is required in production")
		}
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

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

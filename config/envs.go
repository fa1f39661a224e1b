package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application's configuration values.
type Config struct {
	HostIP        string // Host IP for the server
	RESTPort      int    // Port for the REST API
	GinMode       string // Mode for the Gin framework (e.g., release, debug, test)
	JWTSecret     string // Secret key for JWT signing
	JWTIssuer     string // Issuer claim for JWTs
	AdminKey      string // Plain admin key guarding destructive routes, empty disables them
	RedisAddr     string // Address of the key-value store, empty selects the in-memory store
	RedisPassword string // Password for the key-value store
	SQLitePath    string // File path of the game records database
	DBHost        string // Hostname or IP address for the document store, empty disables cloud sync
	DBPort        int    // Port number for the document store
	DBUser        string // Username for the document store
	DBPassword    string // Password for the document store
	DBName        string // Name of the document store database
	GridSize      int    // Board width and height in cells
	BaseInterval  time.Duration
	MinInterval   time.Duration
	IntervalStep  time.Duration
	SyncBuffer    int // Pending cloud writes before new ones are dropped
}

// Load loads environment variables from a .env file, if present, and
// returns the application configuration.
func Load() Config {
	// Load .env file if available
	if err := godotenv.Load(); err != nil {
		log.Printf("[APP] [INFO] .env file not found or could not be loaded: %v", err)
	}

	return Config{
		HostIP:        mustGetEnv("HOST_IP"),
		RESTPort:      mustGetEnvAsInt("REST_PORT"),
		GinMode:       getEnvWithDefault("GIN_MODE", "release"),
		JWTSecret:     mustGetEnv("JWT_SECRET"),
		JWTIssuer:     mustGetEnv("JWT_ISSUER"),
		AdminKey:      getEnvWithDefault("ADMIN_KEY", ""),
		RedisAddr:     getEnvWithDefault("REDIS_ADDR", ""),
		RedisPassword: getEnvWithDefault("REDIS_PASSWORD", ""),
		SQLitePath:    getEnvWithDefault("SQLITE_PATH", "data/snake.db"),
		DBHost:        getEnvWithDefault("DB_HOST", ""),
		DBPort:        getEnvAsIntWithDefault("DB_PORT", 27017),
		DBUser:        getEnvWithDefault("DB_USER", ""),
		DBPassword:    getEnvWithDefault("DB_PASS", ""),
		DBName:        getEnvWithDefault("DB_NAME", "snake"),
		GridSize:      getEnvAsIntWithDefault("GRID_SIZE", 12),
		BaseInterval:  getEnvAsMillisWithDefault("BASE_INTERVAL_MS", 400),
		MinInterval:   getEnvAsMillisWithDefault("MIN_INTERVAL_MS", 80),
		IntervalStep:  getEnvAsMillisWithDefault("INTERVAL_STEP_MS", 45),
		SyncBuffer:    getEnvAsIntWithDefault("SYNC_BUFFER", 64),
	}
}

// mustGetEnv retrieves the value of an environment variable or logs a fatal error if not set.
func mustGetEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		log.Fatalf("[APP] [FATAL] Environment variable %s is not set", key)
	}
	return value
}

// mustGetEnvAsInt retrieves the value of an environment variable as an integer or logs a fatal error if not set or cannot be parsed.
func mustGetEnvAsInt(key string) int {
	valueStr := mustGetEnv(key)
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be an integer: %v", key, err)
	}
	return value
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsIntWithDefault retrieves an integer environment variable, falling back to the default when unset or malformed.
func getEnvAsIntWithDefault(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("[APP] [WARNING] Environment variable %s must be an integer, using %d: %v", key, defaultValue, err)
		return defaultValue
	}
	return value
}

func getEnvAsMillisWithDefault(key string, defaultMillis int) time.Duration {
	return time.Duration(getEnvAsIntWithDefault(key, defaultMillis)) * time.Millisecond
}

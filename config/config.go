package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// AppConfig holds application configuration loaded from environment variables and .env file.
type AppConfig struct {
	// Catalog database config (metadata store)
	DBHost string
	DBPort int
	DBUser string
	DBPass string
	DBName string

	// Logging config
	LogLevel      string
	LogFile       string
	LogMaxSize    int // MB
	LogMaxBackups int
	LogMaxAge     int // days
	LogCompress   bool

	// Anonymized-store config: the dedicated server that holds anonymized
	// table clones. Clones for the database with catalog id N live in a
	// database named "database{N}" on this server.
	StoreHost string
	StorePort int
	StoreUser string
	StorePass string

	// CopyBatchSize is the number of rows moved per transaction during
	// clone, rewrite and restore runs.
	CopyBatchSize int
}

// Cfg is the global application configuration instance.
var Cfg AppConfig

// LoadConfig loads and validates application configuration from .env file and environment variables.
func LoadConfig() error {
	if err := godotenv.Load(); err != nil {
		// Use standard log here since logger is not initialized yet
		log.Printf("[WARN] .env file not found or cannot be loaded: %v", err)
	} else {
		log.Printf("[INFO] .env file loaded successfully")
	}

	Cfg.DBHost = getEnv("DB_HOST", "127.0.0.1")
	Cfg.DBPort = getEnvInt("DB_PORT", 3306)
	Cfg.DBUser = getEnv("DB_USER", "root")
	Cfg.DBPass = getEnv("DB_PASS", "")
	Cfg.DBName = getEnv("DB_NAME", "data_protection")

	Cfg.LogLevel = getEnv("LOG_LEVEL", "DEBUG")
	Cfg.LogFile = getEnv("LOG_FILE", "/var/log/dataprotection/dataprotectionapi.log")
	Cfg.LogMaxSize = getEnvInt("LOG_MAX_SIZE", 10)
	Cfg.LogMaxBackups = getEnvInt("LOG_MAX_BACKUPS", 3)
	Cfg.LogMaxAge = getEnvInt("LOG_MAX_AGE", 28)
	Cfg.LogCompress = getEnvBool("LOG_COMPRESS", true)

	Cfg.StoreHost = getEnv("STORE_HOST", "localhost")
	Cfg.StorePort = getEnvInt("STORE_PORT", 5432)
	Cfg.StoreUser = getEnv("STORE_USER", "postgres")
	Cfg.StorePass = getEnv("STORE_PASS", "postgres")

	Cfg.CopyBatchSize = getEnvInt("COPY_BATCH_SIZE", 100000)

	log.Printf("[INFO] Config loaded - catalog DB: %s@%s:%d/%s, store: %s@%s:%d, batch size: %d, log level: %s",
		Cfg.DBUser, Cfg.DBHost, Cfg.DBPort, Cfg.DBName,
		Cfg.StoreUser, Cfg.StoreHost, Cfg.StorePort,
		Cfg.CopyBatchSize, Cfg.LogLevel)

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

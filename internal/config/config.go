package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store backends accepted by STORE_BACKEND
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type Config struct {
	StoreBackend   string `yaml:"store_backend"`
	DBHost         string `yaml:"db_host"`
	DBPort         string `yaml:"db_port"`
	DBUser         string `yaml:"db_user"`
	DBPassword     string `yaml:"-"`
	DBName         string `yaml:"db_name"`
	DBSSLMode      string `yaml:"db_sslmode"`
	SQLitePath     string `yaml:"sqlite_path"`
	ServerPort     string `yaml:"server_port"`
	JWTSecret      string `yaml:"-"`
	JWTExpiryHours int    `yaml:"jwt_expiry_hours"`
	LogLevel       string `yaml:"log_level"`
	AutoMigrate    bool   `yaml:"auto_migrate"`
	SeedDemo       bool   `yaml:"seed_demo"`
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	cfg := &Config{
		StoreBackend:   getEnv("STORE_BACKEND", BackendMemory),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "pebble_user"),
		DBPassword:     getEnv("DB_PASSWORD", "pebble_pass"),
		DBName:         getEnv("DB_NAME", "pebble_db"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		SQLitePath:     getEnv("SQLITE_PATH", "pebble.db"),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		JWTSecret:      getEnv("JWT_SECRET", "supersecretkey"),
		JWTExpiryHours: getEnvInt("JWT_EXPIRY_HOURS", 24),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AutoMigrate:    getEnvBool("AUTO_MIGRATE", true),
		SeedDemo:       getEnvBool("SEED_DEMO", false),
	}

	if path := os.Getenv("PEBBLE_CONFIG"); path != "" {
		if err := cfg.MergeFile(path); err != nil {
			log.Printf("⚠️  Ignoring config file %s: %v", path, err)
		}
	}

	return cfg
}

// MergeFile overlays the non-empty settings of a YAML file onto the config.
// Secrets are never read from the file.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	overlay(&c.StoreBackend, file.StoreBackend)
	overlay(&c.DBHost, file.DBHost)
	overlay(&c.DBPort, file.DBPort)
	overlay(&c.DBUser, file.DBUser)
	overlay(&c.DBName, file.DBName)
	overlay(&c.DBSSLMode, file.DBSSLMode)
	overlay(&c.SQLitePath, file.SQLitePath)
	overlay(&c.ServerPort, file.ServerPort)
	overlay(&c.LogLevel, file.LogLevel)
	if file.JWTExpiryHours > 0 {
		c.JWTExpiryHours = file.JWTExpiryHours
	}
	c.AutoMigrate = c.AutoMigrate || file.AutoMigrate
	c.SeedDemo = c.SeedDemo || file.SeedDemo
	return nil
}

// PostgresDSN builds the keyword/value DSN used by the gorm postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// PostgresURL builds the URL form expected by golang-migrate's pgx5 driver.
func (c *Config) PostgresURL() string {
	return fmt.Sprintf("pgx5://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

func overlay(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

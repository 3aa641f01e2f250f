package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	JWT      JWTConfig
	Cookie   CookieConfig
	Pricing  PricingConfig
	Jobs     JobsConfig
	Seed     SeedConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver     string // mysql, postgres or sqlite
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SQLitePath string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// PricingConfig selects the pricing strategy for new reservations
type PricingConfig struct {
	Mode       string // flat or hourly
	FlatAmount decimal.Decimal
	HourlyRate decimal.Decimal
}

// JobsConfig holds background job schedules. An empty spec disables the job.
type JobsConfig struct {
	ReminderCron string
}

// SeedConfig holds the bootstrap superadmin account
type SeedConfig struct {
	SuperAdminEmail    string
	SuperAdminPassword string
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	database, err := loadDatabaseConfig(appMode)
	if err != nil {
		return nil, err
	}

	pricing, err := loadPricingConfig()
	if err != nil {
		return nil, err
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		Database: database,
		JWT:      loadJWTConfig(appMode),
		Cookie:   loadCookieConfig(appMode),
		Pricing:  pricing,
		Jobs: JobsConfig{
			ReminderCron: os.Getenv("REMINDER_CRON"),
		},
		Seed: SeedConfig{
			SuperAdminEmail:    getEnv("SEED_SUPERADMIN_EMAIL", "superadmin@washtech.local"),
			SuperAdminPassword: os.Getenv("SEED_SUPERADMIN_PASSWORD"),
		},
	}
	if _, set := os.LookupEnv("REMINDER_CRON"); !set {
		config.Jobs.ReminderCron = "0 7 * * *"
	}

	// Set global config
	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s, DB: %s]", appMode, database.Driver)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) (DatabaseConfig, error) {
	prefix := modePrefix(mode)

	driver := strings.ToLower(getEnv("DB_DRIVER", "mysql"))
	defaultPort := "3306"
	switch driver {
	case "mysql":
	case "postgres":
		defaultPort = "5432"
	case "sqlite":
	default:
		return DatabaseConfig{}, fmt.Errorf("invalid DB_DRIVER: '%s' (must be mysql, postgres or sqlite)", driver)
	}

	return DatabaseConfig{
		Driver:     driver,
		Host:       getEnv(prefix+"DB_HOST", "localhost"),
		Port:       getEnv(prefix+"DB_PORT", defaultPort),
		User:       getEnv(prefix+"DB_USER", "root"),
		Password:   getEnv(prefix+"DB_PASS", ""),
		DBName:     getEnv(prefix+"DB_NAME", "washtech"),
		SQLitePath: getEnv("SQLITE_PATH", "washtech.db"),
	}, nil
}

// loadPricingConfig loads the pricing strategy settings
func loadPricingConfig() (PricingConfig, error) {
	mode := strings.ToLower(getEnv("PRICING_MODE", "flat"))
	if mode != "flat" && mode != "hourly" {
		return PricingConfig{}, fmt.Errorf("invalid PRICING_MODE: '%s' (must be 'flat' or 'hourly')", mode)
	}

	flat, err := decimal.NewFromString(getEnv("PRICE_FLAT_AMOUNT", "50000"))
	if err != nil {
		return PricingConfig{}, fmt.Errorf("invalid PRICE_FLAT_AMOUNT: %w", err)
	}
	hourly, err := decimal.NewFromString(getEnv("PRICE_HOURLY_RATE", "25000"))
	if err != nil {
		return PricingConfig{}, fmt.Errorf("invalid PRICE_HOURLY_RATE: %w", err)
	}

	return PricingConfig{Mode: mode, FlatAmount: flat, HourlyRate: hourly}, nil
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := modePrefix(mode)

	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "15"))
	refreshDays, _ := strconv.Atoi(getEnv("REFRESH_TOKEN_DAYS", "7"))

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", "default_secret"),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", "default_refresh_secret"),
		AccessTokenMins:  accessMins,
		RefreshTokenDays: refreshDays,
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	secure, _ := strconv.ParseBool(getEnv(modePrefix(mode)+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://washtech.app"
	}
	return origins
}

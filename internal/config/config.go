package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/yukikurage/project-tracker-api/internal/constants"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port    string
	GinMode string
	BaseURL string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBDSN      string

	JWTSecret string
	JWTTTL    time.Duration
	ResetTTL  time.Duration

	DueDateSweepSpec string
	TokenPurgeSpec   string

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	OpenAIAPIKey string

	LogLevel  string
	LogFormat string
}

// Default returns the built-in configuration used before any file or
// environment overrides are applied.
func Default() *Config {
	return &Config{
		Port:             "8080",
		GinMode:          "debug",
		BaseURL:          "http://localhost:8080",
		DBDriver:         "mysql",
		DBHost:           "localhost",
		DBPort:           "3306",
		DBUser:           "taskuser",
		DBPassword:       "taskpassword",
		DBName:           "project_tracker",
		JWTSecret:        "default-secret-key-change-me",
		JWTTTL:           constants.DefaultTokenTTL,
		ResetTTL:         constants.ResetTokenTTL,
		DueDateSweepSpec: constants.DefaultDueDateSweepSpec,
		TokenPurgeSpec:   constants.DefaultTokenPurgeSpec,
		SMTPPort:         "587",
		SMTPFrom:         "no-reply@project-tracker.local",
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// Load builds the configuration from defaults, the optional file named by
// CONFIG_FILE, and finally environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	case ".toml":
		err = toml.Unmarshal(data, &fc)
	default:
		return fmt.Errorf("unsupported config file extension: %s", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return fc.mergeInto(c)
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.GinMode = getEnv("GIN_MODE", c.GinMode)
	c.BaseURL = getEnv("BASE_URL", c.BaseURL)
	c.DBDriver = getEnv("DB_DRIVER", c.DBDriver)
	c.DBHost = getEnv("DB_HOST", c.DBHost)
	c.DBPort = getEnv("DB_PORT", c.DBPort)
	c.DBUser = getEnv("DB_USER", c.DBUser)
	c.DBPassword = getEnv("DB_PASSWORD", c.DBPassword)
	c.DBName = getEnv("DB_NAME", c.DBName)
	c.DBDSN = getEnv("DB_DSN", c.DBDSN)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTTTL = getEnvDuration("JWT_TTL", c.JWTTTL)
	c.ResetTTL = getEnvDuration("RESET_TOKEN_TTL", c.ResetTTL)
	c.DueDateSweepSpec = getEnv("DUE_DATE_SWEEP_SPEC", c.DueDateSweepSpec)
	c.TokenPurgeSpec = getEnv("TOKEN_PURGE_SPEC", c.TokenPurgeSpec)
	c.SMTPHost = getEnv("SMTP_HOST", c.SMTPHost)
	c.SMTPPort = getEnv("SMTP_PORT", c.SMTPPort)
	c.SMTPUser = getEnv("SMTP_USER", c.SMTPUser)
	c.SMTPPassword = getEnv("SMTP_PASSWORD", c.SMTPPassword)
	c.SMTPFrom = getEnv("SMTP_FROM", c.SMTPFrom)
	c.OpenAIAPIKey = getEnv("OPENAI_API_KEY", c.OpenAIAPIKey)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

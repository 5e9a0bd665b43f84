package config

import (
	"fmt"
	"time"
)

// fileConfig mirrors Config for YAML and TOML files. Empty values leave the
// current setting untouched.
type fileConfig struct {
	Server struct {
		Port    string `yaml:"port" toml:"port"`
		GinMode string `yaml:"gin_mode" toml:"gin_mode"`
		BaseURL string `yaml:"base_url" toml:"base_url"`
	} `yaml:"server" toml:"server"`

	Database struct {
		Driver   string `yaml:"driver" toml:"driver"`
		Host     string `yaml:"host" toml:"host"`
		Port     string `yaml:"port" toml:"port"`
		User     string `yaml:"user" toml:"user"`
		Password string `yaml:"password" toml:"password"`
		Name     string `yaml:"name" toml:"name"`
		DSN      string `yaml:"dsn" toml:"dsn"`
	} `yaml:"database" toml:"database"`

	Auth struct {
		JWTSecret string `yaml:"jwt_secret" toml:"jwt_secret"`
		JWTTTL    string `yaml:"jwt_ttl" toml:"jwt_ttl"`
		ResetTTL  string `yaml:"reset_ttl" toml:"reset_ttl"`
	} `yaml:"auth" toml:"auth"`

	Scheduler struct {
		DueDateSweep string `yaml:"due_date_sweep" toml:"due_date_sweep"`
		TokenPurge   string `yaml:"token_purge" toml:"token_purge"`
	} `yaml:"scheduler" toml:"scheduler"`

	SMTP struct {
		Host     string `yaml:"host" toml:"host"`
		Port     string `yaml:"port" toml:"port"`
		User     string `yaml:"user" toml:"user"`
		Password string `yaml:"password" toml:"password"`
		From     string `yaml:"from" toml:"from"`
	} `yaml:"smtp" toml:"smtp"`

	OpenAI struct {
		APIKey string `yaml:"api_key" toml:"api_key"`
	} `yaml:"openai" toml:"openai"`

	Log struct {
		Level  string `yaml:"level" toml:"level"`
		Format string `yaml:"format" toml:"format"`
	} `yaml:"log" toml:"log"`
}

func (fc *fileConfig) mergeInto(c *Config) error {
	setString(&c.Port, fc.Server.Port)
	setString(&c.GinMode, fc.Server.GinMode)
	setString(&c.BaseURL, fc.Server.BaseURL)

	setString(&c.DBDriver, fc.Database.Driver)
	setString(&c.DBHost, fc.Database.Host)
	setString(&c.DBPort, fc.Database.Port)
	setString(&c.DBUser, fc.Database.User)
	setString(&c.DBPassword, fc.Database.Password)
	setString(&c.DBName, fc.Database.Name)
	setString(&c.DBDSN, fc.Database.DSN)

	setString(&c.JWTSecret, fc.Auth.JWTSecret)
	if err := setDuration(&c.JWTTTL, fc.Auth.JWTTTL); err != nil {
		return fmt.Errorf("auth.jwt_ttl: %w", err)
	}
	if err := setDuration(&c.ResetTTL, fc.Auth.ResetTTL); err != nil {
		return fmt.Errorf("auth.reset_ttl: %w", err)
	}

	setString(&c.DueDateSweepSpec, fc.Scheduler.DueDateSweep)
	setString(&c.TokenPurgeSpec, fc.Scheduler.TokenPurge)

	setString(&c.SMTPHost, fc.SMTP.Host)
	setString(&c.SMTPPort, fc.SMTP.Port)
	setString(&c.SMTPUser, fc.SMTP.User)
	setString(&c.SMTPPassword, fc.SMTP.Password)
	setString(&c.SMTPFrom, fc.SMTP.From)

	setString(&c.OpenAIAPIKey, fc.OpenAI.APIKey)

	setString(&c.LogLevel, fc.Log.Level)
	setString(&c.LogFormat, fc.Log.Format)
	return nil
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func setDuration(dst *time.Duration, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

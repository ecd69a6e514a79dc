package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	DB      DBConfig
	Log     LogConfig
	Invoice InvoiceConfig
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// InvoiceConfig holds invoice engine settings.
type InvoiceConfig struct {
	// DefaultGSTRate is the total percentage applied when a classification
	// code has no entry in the rate table.
	DefaultGSTRate float64 `mapstructure:"default_gst_rate"`
	// AllowScanFallback permits the racy scan-based number allocation when
	// the counter store is unreachable. Off by default: enabling it trades
	// duplicate-number risk for availability.
	AllowScanFallback bool `mapstructure:"allow_scan_fallback"`
}

// Load reads configuration from environment variables with the GSTBILL_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GSTBILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "gstbill")
	v.SetDefault("db.password", "gstbill_secret")
	v.SetDefault("db.name", "gstbill_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Invoice defaults
	v.SetDefault("invoice.default_gst_rate", 18.0)
	v.SetDefault("invoice.allow_scan_fallback", false)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"db.host":                     "GSTBILL_DB_HOST",
		"db.port":                     "GSTBILL_DB_PORT",
		"db.user":                     "GSTBILL_DB_USER",
		"db.password":                 "GSTBILL_DB_PASSWORD",
		"db.name":                     "GSTBILL_DB_NAME",
		"db.sslmode":                  "GSTBILL_DB_SSLMODE",
		"db.max_open":                 "GSTBILL_DB_MAX_OPEN",
		"db.max_idle":                 "GSTBILL_DB_MAX_IDLE",
		"log.level":                   "GSTBILL_LOG_LEVEL",
		"log.format":                  "GSTBILL_LOG_FORMAT",
		"invoice.default_gst_rate":    "GSTBILL_INVOICE_DEFAULT_GST_RATE",
		"invoice.allow_scan_fallback": "GSTBILL_INVOICE_ALLOW_SCAN_FALLBACK",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Invoice = InvoiceConfig{
		DefaultGSTRate:    v.GetFloat64("invoice.default_gst_rate"),
		AllowScanFallback: v.GetBool("invoice.allow_scan_fallback"),
	}

	if cfg.Invoice.DefaultGSTRate < 0 || cfg.Invoice.DefaultGSTRate > 100 {
		return nil, fmt.Errorf("invoice.default_gst_rate must be between 0 and 100, got %v", cfg.Invoice.DefaultGSTRate)
	}

	return cfg, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	LogLevel  string
	WhatsApp  WhatsAppConfig
	Sheets    SheetsConfig
	Reporting ReportingConfig
	Display   DisplayConfig
	MongoDB   MongoDBConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API.
type WhatsAppConfig struct {
	AccessToken     string
	PhoneNumberID   string
	VerifyToken     string
	BaseURL         string
	APIVersion      string
	ReportRecipient string
	AllowedSenders  []string
}

// Enabled reports whether enough credentials are present to talk to Meta.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != "" && c.PhoneNumberID != ""
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the spreadsheet export is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
}

// Location resolves the configured timezone.
func (c ReportingConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", c.Timezone, err)
	}
	return loc, nil
}

// DisplayConfig selects the currency amounts are shown and entered in.
type DisplayConfig struct {
	Currency     string
	ExchangeRate float64
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com")
	v.SetDefault("WHATSAPP_API_VERSION", "v20.0")
	v.SetDefault("REPORT_CRON_SCHEDULE", "0 21 * * *")
	v.SetDefault("TIMEZONE", "Africa/Maputo")
	v.SetDefault("DISPLAY_CURRENCY", "USD")
	v.SetDefault("EXCHANGE_RATE", 64.0)
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGODB_DB_NAME", "shopcapital")
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("APP_PORT"),
		},
		LogLevel: strings.ToLower(v.GetString("LOG_LEVEL")),
		WhatsApp: WhatsAppConfig{
			AccessToken:     v.GetString("WHATSAPP_TOKEN"),
			PhoneNumberID:   v.GetString("WHATSAPP_PHONE_NUMBER_ID"),
			VerifyToken:     v.GetString("META_VERIFY_TOKEN"),
			BaseURL:         v.GetString("WHATSAPP_BASE_URL"),
			APIVersion:      v.GetString("WHATSAPP_API_VERSION"),
			ReportRecipient: v.GetString("WHATSAPP_REPORT_RECIPIENT"),
			AllowedSenders:  splitList(v.GetString("WHATSAPP_ALLOWED_SENDERS")),
		},
		Sheets: SheetsConfig{
			CredentialsPath: v.GetString("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   v.GetString("GOOGLE_SHEET_DATABASE_ID"),
		},
		Reporting: ReportingConfig{
			CronSchedule: v.GetString("REPORT_CRON_SCHEDULE"),
			Timezone:     v.GetString("TIMEZONE"),
		},
		Display: DisplayConfig{
			Currency:     strings.ToUpper(v.GetString("DISPLAY_CURRENCY")),
			ExchangeRate: v.GetFloat64("EXCHANGE_RATE"),
		},
		MongoDB: MongoDBConfig{
			URI:    v.GetString("MONGODB_URI"),
			DBName: v.GetString("MONGODB_DB_NAME"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must be provided")
	}
	if c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.VerifyToken == "":
			return errors.New("META_VERIFY_TOKEN must be provided when WhatsApp is enabled")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be set together")
	}

	if _, err := cron.ParseStandard(c.Reporting.CronSchedule); err != nil {
		return fmt.Errorf("REPORT_CRON_SCHEDULE is invalid: %w", err)
	}

	if _, err := c.Reporting.Location(); err != nil {
		return fmt.Errorf("TIMEZONE is invalid: %w", err)
	}

	switch c.Display.Currency {
	case "USD", "MZN":
	default:
		return fmt.Errorf("DISPLAY_CURRENCY must be USD or MZN, got %q", c.Display.Currency)
	}
	if c.Display.ExchangeRate <= 0 {
		return errors.New("EXCHANGE_RATE must be positive")
	}

	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

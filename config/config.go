package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Mpesa    MpesaConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// MpesaConfig holds the Daraja API credentials and endpoints. The key,
// secret and passkey are secret material and must never be logged.
type MpesaConfig struct {
	ConsumerKey      string
	ConsumerSecret   string
	Passkey          string
	ShortCode        string
	CallbackURL      string
	OAuthURL         string
	STKPushURL       string
	TransactionType  string
	AccountReference string
	TransactionDesc  string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getenv("PORT", "8080"),
			Env:          getenv("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             getenv("DATABASE_DSN", "dukapay:dukapay@tcp(localhost:3306)/dukapay?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		Mpesa: MpesaConfig{
			ConsumerKey:      os.Getenv("MPESA_CONSUMER_KEY"),
			ConsumerSecret:   os.Getenv("MPESA_CONSUMER_SECRET"),
			Passkey:          os.Getenv("MPESA_PASSKEY"),
			ShortCode:        os.Getenv("MPESA_SHORTCODE"),
			CallbackURL:      os.Getenv("MPESA_CALLBACK_URL"),
			OAuthURL:         os.Getenv("MPESA_OAUTH_URL"),
			STKPushURL:       os.Getenv("MPESA_STKPUSH_URL"),
			TransactionType:  getenv("MPESA_TRANSACTION_TYPE", "CustomerPayBillOnline"),
			AccountReference: getenv("MPESA_ACCOUNT_REFERENCE", "DukaPay"),
			TransactionDesc:  getenv("MPESA_TRANSACTION_DESC", "Payment of goods"),
		},
	}
}

// Validate reports every missing required setting at once so a broken
// deployment fails with the full list instead of one variable at a time.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"MPESA_CONSUMER_KEY", c.Mpesa.ConsumerKey},
		{"MPESA_CONSUMER_SECRET", c.Mpesa.ConsumerSecret},
		{"MPESA_PASSKEY", c.Mpesa.Passkey},
		{"MPESA_SHORTCODE", c.Mpesa.ShortCode},
		{"MPESA_CALLBACK_URL", c.Mpesa.CallbackURL},
		{"MPESA_OAUTH_URL", c.Mpesa.OAuthURL},
		{"MPESA_STKPUSH_URL", c.Mpesa.STKPushURL},
	}
	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

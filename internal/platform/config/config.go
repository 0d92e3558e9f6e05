package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const insecureJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	MigrationsPath string

	JWTSecret                  string
	JWTExpiryDuration          time.Duration
	JWTIssuer                  string
	RefreshTokenExpiryDuration time.Duration

	// Lifetimes of mailed single-use codes.
	SignupCodeTTL   time.Duration
	RecoveryCodeTTL time.Duration

	// External OAuth Providers
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	FrontendBaseURL    string
	CORSAllowedOrigins []string

	// Outbound mail. An empty SMTPHost logs mail instead of sending it.
	SMTPHost         string
	SMTPPort         int
	SMTPSecure       bool
	SMTPUser         string
	SMTPPass         string
	MailFromEmail    string
	ContactFromEmail string
	ContactToEmail   string

	AuthRateLimit    string
	ContactRateLimit string
	RedisURL         string

	PosthogAPIKey   string
	PosthogEndpoint string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("JWT_SECRET", insecureJWTSecret)
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "insaat-backend")
	viper.SetDefault("REFRESH_TOKEN_EXPIRY_DURATION", "168h")
	viper.SetDefault("SIGNUP_CODE_TTL", "24h")
	viper.SetDefault("RECOVERY_CODE_TTL", "1h")
	viper.SetDefault("GOOGLE_CLIENT_ID", "")
	viper.SetDefault("GOOGLE_CLIENT_SECRET", "")
	viper.SetDefault("GOOGLE_REDIRECT_URL", "")
	viper.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "")
	viper.SetDefault("SMTP_HOST", "")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_SECURE", false)
	viper.SetDefault("SMTP_USER", "")
	viper.SetDefault("SMTP_PASS", "")
	viper.SetDefault("MAIL_FROM_EMAIL", "no-reply@localhost")
	viper.SetDefault("CONTACT_FROM_EMAIL", "")
	viper.SetDefault("CONTACT_TO_EMAIL", "")
	viper.SetDefault("AUTH_RATE_LIMIT", "5-M")
	viper.SetDefault("CONTACT_RATE_LIMIT", "10-H")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_ENDPOINT", "")

	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:        viper.GetString("PGSQL_URL"),
		Port:               viper.GetString("PORT"),
		IsProduction:       viper.GetBool("IS_PRODUCTION"),
		EnableDBCheck:      viper.GetBool("ENABLE_DB_CHECK"),
		MigrationsPath:     viper.GetString("MIGRATIONS_PATH"),
		JWTSecret:          viper.GetString("JWT_SECRET"),
		JWTIssuer:          viper.GetString("JWT_ISSUER"),
		GoogleClientID:     viper.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: viper.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  viper.GetString("GOOGLE_REDIRECT_URL"),
		FrontendBaseURL:    strings.TrimRight(viper.GetString("FRONTEND_BASE_URL"), "/"),
		SMTPHost:           viper.GetString("SMTP_HOST"),
		SMTPPort:           viper.GetInt("SMTP_PORT"),
		SMTPSecure:         viper.GetBool("SMTP_SECURE"),
		SMTPUser:           viper.GetString("SMTP_USER"),
		SMTPPass:           viper.GetString("SMTP_PASS"),
		MailFromEmail:      viper.GetString("MAIL_FROM_EMAIL"),
		ContactFromEmail:   viper.GetString("CONTACT_FROM_EMAIL"),
		ContactToEmail:     viper.GetString("CONTACT_TO_EMAIL"),
		AuthRateLimit:      viper.GetString("AUTH_RATE_LIMIT"),
		ContactRateLimit:   viper.GetString("CONTACT_RATE_LIMIT"),
		RedisURL:           viper.GetString("REDIS_URL"),
		PosthogAPIKey:      viper.GetString("POSTHOG_API_KEY"),
		PosthogEndpoint:    viper.GetString("POSTHOG_ENDPOINT"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	if cfg.JWTSecret == "" || cfg.JWTSecret == insecureJWTSecret {
		cfg.JWTSecret = insecureJWTSecret // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.JWTExpiryDuration = durationOrDefault("JWT_EXPIRY_DURATION", time.Hour)
	cfg.RefreshTokenExpiryDuration = durationOrDefault("REFRESH_TOKEN_EXPIRY_DURATION", 7*24*time.Hour)
	cfg.SignupCodeTTL = durationOrDefault("SIGNUP_CODE_TTL", 24*time.Hour)
	cfg.RecoveryCodeTTL = durationOrDefault("RECOVERY_CODE_TTL", time.Hour)

	cfg.CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{cfg.FrontendBaseURL}
	}

	if cfg.ContactFromEmail == "" {
		cfg.ContactFromEmail = cfg.MailFromEmail
	}
	if cfg.SMTPHost == "" {
		log.Println("Warning: SMTP_HOST not set. Outgoing mail will only be logged.")
	}
	if cfg.ContactToEmail == "" {
		log.Println("Warning: CONTACT_TO_EMAIL not set. Contact form submissions cannot be delivered.")
	}
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" || cfg.GoogleRedirectURL == "" {
		log.Println("Warning: Google OAuth is not fully configured and will not function.")
	}

	return cfg, nil
}

// GoogleOAuthEnabled reports whether all Google OAuth settings are present.
func (c *Config) GoogleOAuthEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURL != ""
}

func durationOrDefault(key string, def time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def)
		}
		return def
	}
	return d
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

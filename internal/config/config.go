package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration
type Config struct {
	ServerPort         string
	SMTPHost           string
	SMTPPort           int
	SMTPSecure         bool
	SMTPUser           string
	SMTPPass           string
	AdminEmail         string
	MailFrom           string
	AllowedOrigins     []string
	SendTimeoutSeconds int
	EnableHSTS         bool
	ServerDebugMode    bool
}

// requiredMailKeys are the environment variables the mail dispatcher cannot
// run without. Their absence is reported per-request rather than at startup,
// so a misconfigured deployment still serves validation errors to visitors.
var requiredMailKeys = []string{"SMTP_HOST", "SMTP_USER", "SMTP_PASS", "ADMIN_EMAIL"}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:         getEnv("SERVER_PORT", "5000"),
		SMTPHost:           getEnv("SMTP_HOST", ""),
		SMTPPort:           getEnvInt("SMTP_PORT", 587),
		SMTPSecure:         getEnvBool("SMTP_SECURE", false),
		SMTPUser:           getEnv("SMTP_USER", ""),
		SMTPPass:           getEnv("SMTP_PASS", ""),
		AdminEmail:         getEnv("ADMIN_EMAIL", ""),
		MailFrom:           getEnv("MAIL_FROM", ""),
		AllowedOrigins:     splitOrigins(getEnv("ALLOWED_ORIGINS", "")),
		SendTimeoutSeconds: getEnvInt("SEND_TIMEOUT_SECONDS", 15),
		EnableHSTS:         getEnvBool("ENABLE_HSTS", false),
		ServerDebugMode:    getEnvBool("SERVER_DEBUG_MODE", false),
	}

	if cfg.MailFrom == "" {
		cfg.MailFrom = cfg.AdminEmail
	}

	return cfg, nil
}

// MissingMailKeys returns the names of required SMTP settings that are unset.
// An empty result means the mail dispatcher is fully configured.
func (c *Config) MissingMailKeys() []string {
	values := map[string]string{
		"SMTP_HOST":   c.SMTPHost,
		"SMTP_USER":   c.SMTPUser,
		"SMTP_PASS":   c.SMTPPass,
		"ADMIN_EMAIL": c.AdminEmail,
	}

	var missing []string
	for _, key := range requiredMailKeys {
		if values[key] == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

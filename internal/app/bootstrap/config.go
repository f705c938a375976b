// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for ResearchDesk. They are
// loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: RESEARCHDESK_MONGO_URI, RESEARCHDESK_CRON_SECRET, etc.
//   - Command-line flags: --mongo_uri, --cron_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "research_desk", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "researchdesk-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// File storage for uploaded documents
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage path for uploaded files"},
	{Name: "storage_local_url", Default: "/files", Desc: "URL prefix for serving stored files"},

	// Office-document templates
	{Name: "doc_template_dir", Default: "./templates/docs", Desc: "Directory holding the .docx letter templates"},

	// Email/SMTP for reminder mail
	{Name: "mail_smtp_host", Default: "localhost", Desc: "SMTP server host"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@researchdesk.edu", Desc: "From email address"},
	{Name: "mail_from_name", Default: "ResearchDesk", Desc: "From display name"},

	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for links in outgoing email"},
	{Name: "site_name", Default: "ResearchDesk", Desc: "Display name used in email and documents"},

	// Google OAuth
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	// Cron
	{Name: "cron_secret", Default: "", Desc: "Shared secret for /api/cron endpoints (empty disables them)"},

	// Timeout overrides
	{Name: "timeout_short", Default: "", Desc: "Override for short DB operations (e.g., 5s)"},
	{Name: "timeout_long", Default: "", Desc: "Override for long DB operations (e.g., 30s)"},

	// SuperAdmin bootstrap
	{Name: "superadmin_email", Default: "", Desc: "Email of the superadmin user (promotes/creates on startup)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, RESEARCHDESK_* for app), and
// flags, merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "RESEARCHDESK", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),

		DocTemplateDir: appValues.String("doc_template_dir"),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),

		BaseURL:  appValues.String("base_url"),
		SiteName: appValues.String("site_name"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		CronSecret: appValues.String("cron_secret"),

		TimeoutShort: appValues.Duration("timeout_short", 0),
		TimeoutLong:  appValues.Duration("timeout_long", 0),

		SuperAdminEmail: appValues.String("superadmin_email"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation. It runs before any
// backends are built, so misconfiguration fails fast.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if coreCfg.Env == "prod" {
		if appCfg.SessionKey == "" || appCfg.SessionKey == "dev-only-change-me-please-0123456789ABCDEF" {
			return fmt.Errorf("session_key must be set to a strong value in production")
		}
		if appCfg.CronSecret == "" {
			logger.Warn("cron_secret is empty; reminder endpoints are disabled")
		}
	}

	if appCfg.TimeoutShort < 0 || appCfg.TimeoutLong < 0 {
		return fmt.Errorf("timeout overrides must be positive durations")
	}

	return nil
}

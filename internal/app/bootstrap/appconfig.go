// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS, logging,
// CORS, body limits); AppConfig is everything specific to the research
// portal. Values come from environment variables, config files, or flags,
// loaded in LoadConfig.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: researchdesk-session)
	SessionDomain string // Cookie domain (blank means current host)

	// File storage configuration (uploaded proposals, proofs, presentations,
	// resumes)
	StorageLocalPath string // Local storage path (e.g., "./uploads")
	StorageLocalURL  string // URL prefix for serving stored files

	// Office-document templates (.docx) used by the document endpoints
	DocTemplateDir string

	// Email/SMTP configuration for reminder mail
	MailSMTPHost string
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string
	MailFromName string

	// Base URL for links in outgoing email
	BaseURL string
	// Display name used in email and rendered documents
	SiteName string

	// Google OAuth configuration
	GoogleClientID     string
	GoogleClientSecret string

	// Shared secret gating the /api/cron endpoints
	CronSecret string

	// Handler timeout overrides; zero keeps the defaults
	TimeoutShort time.Duration
	TimeoutLong  time.Duration

	// SuperAdmin bootstrap: promotes or creates this account on startup
	SuperAdminEmail string
}

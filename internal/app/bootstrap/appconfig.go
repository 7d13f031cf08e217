// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration (ports, TLS, logging,
// CORS, which live in CoreConfig).
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI      string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase string // Database name within MongoDB

	// Session management configuration
	SessionKey    string // Secret key for signing session tokens (must be strong in production)
	SessionName   string // Cookie name for sessions (default: whisperbox-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Mailjet configuration for verification email
	MailjetPublicKey string // Mailjet API public key (blank disables sending)
	MailjetSecretKey string // Mailjet API secret key
	MailFrom         string // From email address (e.g., noreply@whisperbox.app)
	MailFromName     string // From display name (e.g., WhisperBox)

	// Site identity
	SiteName string // Display name used in pages and email
	BaseURL  string // e.g., "https://whisperbox.app" or "http://localhost:8080"

	// AI suggestion passthrough
	SuggestAPIURL string // OpenAI-compatible chat completions endpoint
	SuggestAPIKey string // API key (blank serves a static fallback)
	SuggestModel  string // Model name passed upstream
}

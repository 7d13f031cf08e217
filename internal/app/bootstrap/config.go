// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for WhisperBox.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: WHISPERBOX_MONGO_URI, WHISPERBOX_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "whisperbox", Desc: "MongoDB database name"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "whisperbox-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Verification email via Mailjet
	{Name: "mailjet_public_key", Default: "", Desc: "Mailjet API public key (blank logs email instead of sending)"},
	{Name: "mailjet_secret_key", Default: "", Desc: "Mailjet API secret key"},
	{Name: "mail_from", Default: "noreply@whisperbox.app", Desc: "From email address"},
	{Name: "mail_from_name", Default: "WhisperBox", Desc: "From display name"},

	// Site identity and email links
	{Name: "site_name", Default: "WhisperBox", Desc: "Site display name"},
	{Name: "base_url", Default: "http://localhost:8080", Desc: "Base URL for email links"},

	// AI suggestion passthrough
	{Name: "suggest_api_url", Default: "https://api.openai.com/v1/chat/completions", Desc: "Chat completions endpoint for message suggestions"},
	{Name: "suggest_api_key", Default: "", Desc: "API key for the suggestion endpoint (blank serves static suggestions)"},
	{Name: "suggest_model", Default: "gpt-4o-mini", Desc: "Model name for message suggestions"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, WHISPERBOX_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "WHISPERBOX", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		MailjetPublicKey: appValues.String("mailjet_public_key"),
		MailjetSecretKey: appValues.String("mailjet_secret_key"),
		MailFrom:         appValues.String("mail_from"),
		MailFromName:     appValues.String("mail_from_name"),

		SiteName: appValues.String("site_name"),
		BaseURL:  appValues.String("base_url"),

		SuggestAPIURL: appValues.String("suggest_api_url"),
		SuggestAPIKey: appValues.String("suggest_api_key"),
		SuggestModel:  appValues.String("suggest_model"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// WhisperBox validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.SessionKey == "" {
		return fmt.Errorf("session_key must not be empty")
	}

	// One Mailjet key without the other is a misconfiguration, not a
	// disabled mailer.
	if (appCfg.MailjetPublicKey == "") != (appCfg.MailjetSecretKey == "") {
		return fmt.Errorf("mailjet_public_key and mailjet_secret_key must be set together")
	}

	return nil
}

// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	healthfeature "github.com/dalemusser/whisperbox/internal/app/features/health"
	messagesfeature "github.com/dalemusser/whisperbox/internal/app/features/messages"
	pagesfeature "github.com/dalemusser/whisperbox/internal/app/features/pages"
	signinfeature "github.com/dalemusser/whisperbox/internal/app/features/signin"
	signupfeature "github.com/dalemusser/whisperbox/internal/app/features/signup"
	suggestfeature "github.com/dalemusser/whisperbox/internal/app/features/suggest"
	userstore "github.com/dalemusser/whisperbox/internal/app/store/users"
	"github.com/dalemusser/whisperbox/internal/app/system/auth"
	"github.com/dalemusser/whisperbox/internal/app/system/mailer"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// WhisperBox initializes the template engine, applies session middleware,
// and mounts the API feature routers alongside the server-rendered pages.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	users := userstore.New(deps.MongoDatabase)

	mail := mailer.New(mailer.Config{
		FromEmail: appCfg.MailFrom,
		FromName:  appCfg.MailFromName,
		PublicKey: appCfg.MailjetPublicKey,
		SecretKey: appCfg.MailjetSecretKey,
	}, logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// API endpoints, all flat under /api
	r.Route("/api", func(api chi.Router) {
		signupfeature.Register(api, &signupfeature.Handler{
			Users:    users,
			Mailer:   mail,
			Log:      logger,
			BaseURL:  appCfg.BaseURL,
			SiteName: appCfg.SiteName,
		})

		signinfeature.Register(api, &signinfeature.Handler{
			Users:      users,
			SessionMgr: sessionMgr,
			Log:        logger,
		})

		messagesfeature.Register(api, &messagesfeature.Handler{
			Users: users,
			Log:   logger,
		})

		suggestfeature.Register(api, suggestfeature.NewHandler(
			appCfg.SuggestAPIURL, appCfg.SuggestAPIKey, appCfg.SuggestModel, logger))
	})

	// Server-rendered pages, guarded by sign-in state
	pagesHandler := pagesfeature.NewHandler(users, logger)
	r.Mount("/", pagesfeature.Routes(pagesHandler))

	return r, nil
}

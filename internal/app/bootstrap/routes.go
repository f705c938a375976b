// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	authgooglefeature "github.com/campusworks/researchdesk/internal/app/features/authgoogle"
	authnfeature "github.com/campusworks/researchdesk/internal/app/features/authn"
	cronfeature "github.com/campusworks/researchdesk/internal/app/features/cron"
	docgenfeature "github.com/campusworks/researchdesk/internal/app/features/docgen"
	emrfeature "github.com/campusworks/researchdesk/internal/app/features/emr"
	healthfeature "github.com/campusworks/researchdesk/internal/app/features/health"
	incentivesfeature "github.com/campusworks/researchdesk/internal/app/features/incentives"
	moduleadminfeature "github.com/campusworks/researchdesk/internal/app/features/moduleadmin"
	projectsfeature "github.com/campusworks/researchdesk/internal/app/features/projects"
	recruitmentfeature "github.com/campusworks/researchdesk/internal/app/features/recruitment"
	stafffeature "github.com/campusworks/researchdesk/internal/app/features/staff"
	uploadsfeature "github.com/campusworks/researchdesk/internal/app/features/uploads"
	userstore "github.com/campusworks/researchdesk/internal/app/store/users"
	"github.com/campusworks/researchdesk/internal/app/system/auditlog"
	"github.com/campusworks/researchdesk/internal/app/system/auth"
	"github.com/campusworks/researchdesk/internal/app/system/blobstore"
	"github.com/campusworks/researchdesk/internal/app/system/docrender"
	"github.com/campusworks/researchdesk/internal/app/system/mailer"
	"github.com/campusworks/researchdesk/internal/app/system/metrics"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup hooks have completed. It creates the session manager, the shared
// infrastructure (audit log, mailer, metrics, blob storage, document
// renderer), and mounts the JSON feature routers under /api.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// LoadSessionUser fetches fresh user data on each request so role
	// changes and disabled accounts take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	logs := deps.MongoDatabase.Collection("logs")
	audit := auditlog.New(func(ctx context.Context, doc interface{}) error {
		_, err := logs.InsertOne(ctx, doc)
		return err
	}, logger)

	mail := mailer.New(mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		User:     appCfg.MailSMTPUser,
		Pass:     appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
	}, logger)

	m := metrics.New()

	store, err := blobstore.NewLocal(appCfg.StorageLocalPath, appCfg.BaseURL+appCfg.StorageLocalURL)
	if err != nil {
		logger.Error("blob storage init failed", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()

	// Loads SessionUser into context if signed in; handlers read it via
	// auth.CurrentUser / authz.UserCtx.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Prometheus metrics.
	r.Handle("/metrics", m.Handler())

	// Stored files (uploaded proposals, proofs, presentations, resumes).
	r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))

	// Authentication.
	authnHandler := authnfeature.NewHandler(deps.MongoDatabase, sessionMgr, audit, logger)
	r.Mount("/api/auth", authnfeature.Routes(authnHandler, sessionMgr))

	googleHandler := authgooglefeature.NewHandler(deps.MongoDatabase, sessionMgr, audit,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	// IMR project proposals.
	projectsHandler := projectsfeature.NewHandler(deps.MongoClient, deps.MongoDatabase, audit, logger)
	r.Mount("/api/projects", projectsfeature.Routes(projectsHandler, sessionMgr))

	// Incentive claims and ARPS scoring.
	incentivesHandler := incentivesfeature.NewHandler(deps.MongoDatabase, audit, logger)
	r.Mount("/api/incentives", incentivesfeature.Routes(incentivesHandler, sessionMgr))

	// EMR funding calls and interest registrations.
	emrHandler := emrfeature.NewHandler(deps.MongoDatabase, audit, logger)
	r.Mount("/api/emr", emrfeature.Routes(emrHandler, sessionMgr))

	// Project staff recruitment.
	recruitmentHandler := recruitmentfeature.NewHandler(deps.MongoDatabase, audit, logger)
	r.Mount("/api/recruitment", recruitmentfeature.Routes(recruitmentHandler, sessionMgr))

	// Module administration (roles, allowed modules).
	adminHandler := moduleadminfeature.NewHandler(deps.MongoDatabase, audit, logger)
	r.Mount("/api/admin", moduleadminfeature.Routes(adminHandler, sessionMgr))

	// Staff directory lookup and XLSX import.
	staffHandler := stafffeature.NewHandler(deps.MongoDatabase, audit, logger)
	r.Mount("/api/staff", stafffeature.Routes(staffHandler, sessionMgr))

	// File uploads.
	uploadsHandler := uploadsfeature.NewHandler(store, audit, logger)
	r.Mount("/api/uploads", uploadsfeature.Routes(uploadsHandler, sessionMgr))

	// Office documents. Disabled, not fatal, when the template directory is
	// absent so a deployment without letter templates still serves the API.
	if renderer, err := docrender.New(appCfg.DocTemplateDir); err != nil {
		logger.Warn("document templates unavailable, /api/docs disabled",
			zap.String("dir", appCfg.DocTemplateDir), zap.Error(err))
	} else {
		docgenHandler := docgenfeature.NewHandler(deps.MongoClient, deps.MongoDatabase, renderer, audit, logger)
		r.Mount("/api/docs", docgenfeature.Routes(docgenHandler, sessionMgr))
	}

	// Scheduled reminder jobs.
	cronHandler := cronfeature.NewHandler(deps.MongoClient, deps.MongoDatabase, cronfeature.Config{
		Secret:   appCfg.CronSecret,
		SiteName: appCfg.SiteName,
		BaseURL:  appCfg.BaseURL,
	}, mail, m, logger)
	r.Mount("/api/cron", cronfeature.Routes(cronHandler))

	return r, nil
}

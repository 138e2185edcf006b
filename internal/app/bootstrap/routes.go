// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authfeature "github.com/mangrovewatch/mangrovewatch/internal/app/features/authapi"
	healthfeature "github.com/mangrovewatch/mangrovewatch/internal/app/features/health"
	reportsfeature "github.com/mangrovewatch/mangrovewatch/internal/app/features/reports"
	usersfeature "github.com/mangrovewatch/mangrovewatch/internal/app/features/users"
	"github.com/mangrovewatch/mangrovewatch/internal/app/lifecycle"
	loginstore "github.com/mangrovewatch/mangrovewatch/internal/app/store/logins"
	reportstore "github.com/mangrovewatch/mangrovewatch/internal/app/store/reports"
	userstore "github.com/mangrovewatch/mangrovewatch/internal/app/store/users"
	"github.com/mangrovewatch/mangrovewatch/internal/app/system/auth"
)

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and any Startup hooks have completed. MangroveWatch initializes the
// session store, builds the stores and the report lifecycle engine,
// and mounts the JSON API feature routers plus the photo file server.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	if err := auth.InitSessionStore(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger); err != nil {
		logger.Error("session store init failed", zap.Error(err))
		return nil, err
	}

	photos, err := newPhotoStore(appCfg)
	if err != nil {
		logger.Error("photo storage init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase
	usersStore := userstore.New(db)
	reportsStore := reportstore.New(db)
	loginsStore := loginstore.New(db)
	engine := lifecycle.New(db, reportsStore, usersStore, photos, logger)

	r := chi.NewRouter()

	// Global auth middleware: loads the SessionUser into context if
	// signed in, making it available via auth.CurrentUser(r).
	r.Use(auth.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Stored report photos
	r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))

	// JSON API
	authHandler := authfeature.NewHandler(usersStore, loginsStore, logger)
	r.Mount("/api/auth", authfeature.Routes(authHandler))

	reportsHandler := reportsfeature.NewHandler(engine, db, photos, logger)
	r.Mount("/api/reports", reportsfeature.Routes(reportsHandler))

	usersHandler := usersfeature.NewHandler(usersStore, reportsStore, logger)
	r.Mount("/api/users", usersfeature.Routes(usersHandler))

	return r, nil
}

// newPhotoStore builds the local filesystem backend for report photos.
func newPhotoStore(appCfg AppConfig) (storage.Store, error) {
	return storage.NewLocal(storage.LocalConfig{
		BasePath: appCfg.StorageLocalPath,
		BaseURL:  appCfg.StorageLocalURL,
	})
}

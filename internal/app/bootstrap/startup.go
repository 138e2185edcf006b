// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"os"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	"github.com/mangrovewatch/mangrovewatch/internal/app/system/timeouts"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
// MangroveWatch applies the configured request timeouts and makes sure
// the local photo directory exists.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
		Upload: appCfg.TimeoutUpload,
	})

	if err := os.MkdirAll(appCfg.StorageLocalPath, 0o755); err != nil {
		logger.Error("create photo storage directory failed",
			zap.String("path", appCfg.StorageLocalPath), zap.Error(err))
		return err
	}
	return nil
}

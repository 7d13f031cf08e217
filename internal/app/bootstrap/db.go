// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/whisperbox/internal/app/system/indexes"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// EnsureSchema creates the user indexes, including the partial unique
// indexes that enforce username/email uniqueness among verified users.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	return indexes.EnsureAll(ctx, deps.MongoDatabase)
}

package storage

import (
	"github.com/opengov-ph/barangay/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Provide(cfg config.Config, log *zap.Logger) Provider {
	if cfg.StorageDir == "" {
		return &NoOpProvider{}
	}
	provider, err := NewFilesystem(cfg.StorageDir)
	if err != nil {
		log.Warn("storage directory unavailable, assets disabled", zap.String("dir", cfg.StorageDir), zap.Error(err))
		return &NoOpProvider{}
	}
	return provider
}

var Module = fx.Module("providers.storage",
	fx.Provide(Provide),
)

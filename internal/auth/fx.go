package auth

import (
	"github.com/opengov-ph/barangay/internal/auth/repository"
	"github.com/opengov-ph/barangay/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

package household

import (
	"github.com/opengov-ph/barangay/internal/household/repository"
	"github.com/opengov-ph/barangay/internal/household/service"
	"go.uber.org/fx"
)

var Module = fx.Module("household.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

package request

import (
	"github.com/opengov-ph/barangay/internal/request/repository"
	"github.com/opengov-ph/barangay/internal/request/service"
	"go.uber.org/fx"
)

var Module = fx.Module("request.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

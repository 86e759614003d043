package audit

import (
	"github.com/opengov-ph/barangay/internal/audit/repository"
	"github.com/opengov-ph/barangay/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

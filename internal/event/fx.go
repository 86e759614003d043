package event

import (
	"github.com/opengov-ph/barangay/internal/event/repository"
	"github.com/opengov-ph/barangay/internal/event/service"
	"go.uber.org/fx"
)

var Module = fx.Module("event.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

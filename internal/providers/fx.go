package providers

import (
	"github.com/opengov-ph/barangay/internal/providers/email"
	"github.com/opengov-ph/barangay/internal/providers/pdf"
	"github.com/opengov-ph/barangay/internal/providers/storage"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	pdf.Module,
	storage.Module,
)

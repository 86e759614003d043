package pdf

import (
	"context"
	"io"
)

// CertificateData carries everything printed on a certificate. The issuing
// barangay identity comes from configuration, the rest from the request.
type CertificateData struct {
	BarangayName string
	Municipality string
	Province     string
	Captain      string

	CertificateType string
	FullName        string
	Address         string
	Birthday        string
	Purpose         string
	IssuedAt        string
	ControlNumber   string
}

type Provider interface {
	GenerateCertificate(ctx context.Context, data CertificateData) (io.Reader, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateCertificate(ctx context.Context, data CertificateData) (io.Reader, error) {
	return nil, nil
}

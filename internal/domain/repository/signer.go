package repository

import (
	"context"
	"time"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
)

type SignatureResult struct {
	Signature     string
	CertificateID string
	Timestamp     time.Time
}

// DigitalSigner - сервис ЭЦП (в этой сборке - имитация удостоверяющего центра).
type DigitalSigner interface {
	IssueCertificate(ownerName, iin string, bin *string) (*entity.Certificate, error)
	Sign(ctx context.Context, data []byte, certificateID string) (*SignatureResult, error)
	Verify(ctx context.Context, data []byte, signature, certificateID string) (bool, error)
	ValidateCertificate(cert *entity.Certificate, now time.Time) bool
}

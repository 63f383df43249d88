// Package signature - имитация удостоверяющего центра и сервиса ЭЦП.
// Подписи не являются криптографически значимыми и годятся только для демонстрации.
package signature

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	mathrand "math/rand"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/repository"
)

const (
	Issuer              = "Mock Kazakhstan Certificate Authority"
	CertificateValidity = 365 * 24 * time.Hour

	DefaultSignLatency   = 500 * time.Millisecond
	DefaultVerifyLatency = 300 * time.Millisecond

	verifySuccessRate = 0.95
)

var _ repository.DigitalSigner = (*MockSigner)(nil)

type Option func(*MockSigner)

func WithLatency(sign, verify time.Duration) Option {
	return func(s *MockSigner) {
		s.signLatency = sign
		s.verifyLatency = verify
	}
}

// WithRandom подменяет источник случайности для имитации проверки подписи.
func WithRandom(random func() float64) Option {
	return func(s *MockSigner) {
		s.random = random
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *MockSigner) {
		s.now = now
	}
}

type MockSigner struct {
	signLatency   time.Duration
	verifyLatency time.Duration
	random        func() float64
	now           func() time.Time
}

func NewMockSigner(opts ...Option) *MockSigner {
	s := &MockSigner{
		signLatency:   DefaultSignLatency,
		verifyLatency: DefaultVerifyLatency,
		random:        mathrand.Float64,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MockSigner) IssueCertificate(ownerName, iin string, bin *string) (*entity.Certificate, error) {
	id := make([]byte, 8)
	if _, err := rand.Read(id); err != nil {
		return nil, fmt.Errorf("signature: генерация идентификатора сертификата: %w", err)
	}
	publicKey := make([]byte, 32)
	if _, err := rand.Read(publicKey); err != nil {
		return nil, fmt.Errorf("signature: генерация открытого ключа: %w", err)
	}
	thumbprint := blake2b.Sum256(publicKey)

	now := s.now()
	return &entity.Certificate{
		ID:              "CERT-" + strings.ToUpper(hex.EncodeToString(id)),
		OwnerName:       ownerName,
		OwnerIIN:        iin,
		OrganizationBIN: bin,
		Issuer:          Issuer,
		ValidFrom:       now,
		ValidUntil:      now.Add(CertificateValidity),
		PublicKey:       hex.EncodeToString(publicKey),
		Thumbprint:      hex.EncodeToString(thumbprint[:]),
	}, nil
}

func (s *MockSigner) Sign(ctx context.Context, data []byte, certificateID string) (*repository.SignatureResult, error) {
	if certificateID == "" {
		return nil, fmt.Errorf("signature: не указан сертификат")
	}
	if err := wait(ctx, s.signLatency); err != nil {
		return nil, err
	}

	ts := s.now()
	digest := sha512.Sum512([]byte(fmt.Sprintf("%s-%s-%d", DocumentHash(data), certificateID, ts.UnixMilli())))
	return &repository.SignatureResult{
		Signature:     base64.StdEncoding.EncodeToString(digest[:]),
		CertificateID: certificateID,
		Timestamp:     ts,
	}, nil
}

// Verify не проверяет подпись по-настоящему: непустая подпись признаётся
// действительной с вероятностью 95%.
func (s *MockSigner) Verify(ctx context.Context, _ []byte, signature, certificateID string) (bool, error) {
	if err := wait(ctx, s.verifyLatency); err != nil {
		return false, err
	}
	if signature == "" || certificateID == "" {
		return false, nil
	}
	return s.random() < verifySuccessRate, nil
}

func (s *MockSigner) ValidateCertificate(cert *entity.Certificate, now time.Time) bool {
	return cert != nil && cert.IsValidAt(now)
}

// DocumentHash - sha256 документа в hex.
func DocumentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package signature

import (
	"context"
	"encoding/base64"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueCertificate(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewMockSigner(WithLatency(0, 0), WithClock(fixedClock(now)))
	bin := "123456789012"

	cert, err := s.IssueCertificate("Айгерим Садыкова", "990101300123", &bin)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^CERT-[0-9A-F]{16}$`), cert.ID)
	assert.Equal(t, Issuer, cert.Issuer)
	assert.Equal(t, now, cert.ValidFrom)
	assert.Equal(t, now.Add(CertificateValidity), cert.ValidUntil)
	assert.Len(t, cert.PublicKey, 64)
	assert.Len(t, cert.Thumbprint, 64)
	assert.Equal(t, &bin, cert.OrganizationBIN)

	other, err := s.IssueCertificate("Айгерим Садыкова", "990101300123", nil)
	require.NoError(t, err)
	assert.NotEqual(t, cert.ID, other.ID)
}

func TestSign_Deterministic(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewMockSigner(WithLatency(0, 0), WithClock(fixedClock(now)))
	data := []byte(`{"ettnNumber":"ETTN-1-ABC"}`)

	first, err := s.Sign(context.Background(), data, "CERT-0011223344556677")
	require.NoError(t, err)
	second, err := s.Sign(context.Background(), data, "CERT-0011223344556677")
	require.NoError(t, err)

	assert.Equal(t, first.Signature, second.Signature)
	assert.Equal(t, now, first.Timestamp)
	raw, err := base64.StdEncoding.DecodeString(first.Signature)
	require.NoError(t, err)
	assert.Len(t, raw, 64)

	other, err := s.Sign(context.Background(), data, "CERT-FFFFFFFFFFFFFFFF")
	require.NoError(t, err)
	assert.NotEqual(t, first.Signature, other.Signature)
}

func TestSign_Errors(t *testing.T) {
	s := NewMockSigner(WithLatency(time.Second, 0))

	_, err := s.Sign(context.Background(), []byte("x"), "")
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Sign(ctx, []byte("x"), "CERT-0011223344556677")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVerify(t *testing.T) {
	ctx := context.Background()

	ok, err := NewMockSigner(WithLatency(0, 0), WithRandom(func() float64 { return 0.1 })).
		Verify(ctx, []byte("x"), "c2lnbg==", "CERT-0011223344556677")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = NewMockSigner(WithLatency(0, 0), WithRandom(func() float64 { return 0.99 })).
		Verify(ctx, []byte("x"), "c2lnbg==", "CERT-0011223344556677")
	require.NoError(t, err)
	assert.False(t, ok)

	always := NewMockSigner(WithLatency(0, 0), WithRandom(func() float64 { return 0 }))
	ok, err = always.Verify(ctx, []byte("x"), "", "CERT-0011223344556677")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = always.Verify(ctx, []byte("x"), "c2lnbg==", "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateCertificate(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewMockSigner(WithLatency(0, 0), WithClock(fixedClock(now)))
	cert, err := s.IssueCertificate("Ержан", "", nil)
	require.NoError(t, err)

	assert.True(t, s.ValidateCertificate(cert, now))
	assert.True(t, s.ValidateCertificate(cert, cert.ValidUntil))
	assert.False(t, s.ValidateCertificate(cert, now.Add(-time.Second)))
	assert.False(t, s.ValidateCertificate(cert, cert.ValidUntil.Add(time.Second)))
	assert.False(t, s.ValidateCertificate(nil, now))
}

func TestDocumentHash(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", DocumentHash(nil))
}

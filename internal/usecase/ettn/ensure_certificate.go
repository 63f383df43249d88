package ettn

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/repository"
	"github.com/ignatzorin/cargolink-backend/internal/logger"
	"github.com/ignatzorin/cargolink-backend/internal/metrics"
)

// EnsureCertificateUseCase выдаёт пользователю сертификат ЭЦП не более одного раза:
// действующий сертификат переиспользуется, новый выпускается только при его отсутствии
// или истечении срока.
type EnsureCertificateUseCase struct {
	users  repository.UserRepository
	signer repository.DigitalSigner
	now    func() time.Time
}

func NewEnsureCertificateUseCase(users repository.UserRepository, signer repository.DigitalSigner) *EnsureCertificateUseCase {
	return &EnsureCertificateUseCase{users: users, signer: signer, now: time.Now}
}

func (uc *EnsureCertificateUseCase) Execute(ctx context.Context, userID uuid.UUID) (*entity.Certificate, error) {
	user, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	if user.EDSCertID != nil && user.EDSCertExpiry != nil {
		if stored := storedCertificate(user); uc.signer.ValidateCertificate(stored, now) {
			return stored, nil
		}
	}

	iin := ""
	if user.IIN != nil {
		iin = *user.IIN
	}
	cert, err := uc.signer.IssueCertificate(user.FullName(), iin, user.BIN)
	if err != nil {
		return nil, err
	}

	assigned, err := uc.users.AssignCertificate(ctx, userID, cert.ID, cert.ValidUntil, now)
	if err != nil {
		return nil, err
	}
	if !assigned {
		// сертификат успел назначить параллельный запрос
		user, err = uc.users.FindByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		return storedCertificate(user), nil
	}

	metrics.CertificatesIssuedTotal.Inc()
	logger.Log.WithFields(logrus.Fields{
		"user_id":        userID,
		"certificate_id": cert.ID,
		"valid_until":    cert.ValidUntil,
	}).Info("ettn: выпущен сертификат ЭЦП")

	return cert, nil
}

func storedCertificate(user *entity.User) *entity.Certificate {
	cert := &entity.Certificate{
		ID:              *user.EDSCertID,
		OwnerName:       user.FullName(),
		OrganizationBIN: user.BIN,
		ValidUntil:      *user.EDSCertExpiry,
	}
	if user.IIN != nil {
		cert.OwnerIIN = *user.IIN
	}
	return cert
}

package ettn

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/cargolink-backend/internal/domain/repository"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
)

type SlotVerification struct {
	Role   valueobject.PartyRole
	Signed bool
	Valid  bool
}

// VerificationReport - результат проверки подписей. Demo всегда true:
// проверка имитационная и может случайно вернуть отрицательный результат.
type VerificationReport struct {
	ETTNID uuid.UUID
	Slots  []SlotVerification
	Demo   bool
}

type VerifyETTNUseCase struct {
	get        *GetETTNUseCase
	signatures repository.SignatureRepository
	signer     repository.DigitalSigner
}

func NewVerifyETTNUseCase(get *GetETTNUseCase, signatures repository.SignatureRepository, signer repository.DigitalSigner) *VerifyETTNUseCase {
	return &VerifyETTNUseCase{get: get, signatures: signatures, signer: signer}
}

func (uc *VerifyETTNUseCase) Execute(ctx context.Context, actorID, ettnID uuid.UUID) (*VerificationReport, error) {
	doc, err := uc.get.ByID(ctx, actorID, ettnID)
	if err != nil {
		return nil, err
	}
	payload, err := doc.DocumentPayload()
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сформировать документ для проверки")
	}
	records, err := uc.signatures.FindByETTNID(ctx, ettnID)
	if err != nil {
		return nil, err
	}

	certByRole := make(map[valueobject.PartyRole]string, 2)
	for _, r := range records {
		certByRole[r.Metadata.Role] = r.CertificateID
	}

	report := &VerificationReport{ETTNID: doc.ID, Demo: true}
	for _, role := range []valueobject.PartyRole{valueobject.PartyShipper, valueobject.PartyCarrier} {
		slot := SlotVerification{Role: role}
		if sig := doc.SignatureOf(role); sig != nil {
			slot.Signed = true
			slot.Valid, err = uc.signer.Verify(ctx, payload, *sig, certByRole[role])
			if err != nil {
				return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось проверить подпись")
			}
		}
		report.Slots = append(report.Slots, slot)
	}
	return report, nil
}

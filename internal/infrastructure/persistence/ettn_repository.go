package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
)

const ettnColumns = `
	id, transaction_id, ettn_number, cargo_description, origin, destination, weight, shipper_id, carrier_id,
	shipper_signature, shipper_signed_at, carrier_signature, carrier_signed_at, status, created_at, updated_at`

// Статус пересчитывается в том же UPDATE, что и слот, по состоянию второго слота.
const (
	saveShipperSignatureQuery = `
		UPDATE ettn SET shipper_signature = $2, shipper_signed_at = $3, updated_at = $4,
		status = CASE WHEN carrier_signature IS NOT NULL THEN 'fully_signed' ELSE 'partially_signed' END
		WHERE id = $1 AND shipper_signature IS NULL
		RETURNING ` + ettnColumns
	saveCarrierSignatureQuery = `
		UPDATE ettn SET carrier_signature = $2, carrier_signed_at = $3, updated_at = $4,
		status = CASE WHEN shipper_signature IS NOT NULL THEN 'fully_signed' ELSE 'partially_signed' END
		WHERE id = $1 AND carrier_signature IS NULL
		RETURNING ` + ettnColumns
)

type ETTNRepository struct {
	db *sqlx.DB
}

func NewETTNRepository(db *sqlx.DB) *ETTNRepository {
	return &ETTNRepository{db: db}
}

func (r *ETTNRepository) Create(ctx context.Context, ettn *entity.ETTN) error {
	query := `
		INSERT INTO ettn (id, transaction_id, ettn_number, cargo_description, origin, destination, weight,
		shipper_id, carrier_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		ettn.ID, ettn.TransactionID, ettn.Number, ettn.CargoDescription, ettn.Origin, ettn.Destination,
		float64(ettn.Weight), ettn.ShipperID, ettn.CarrierID, string(ettn.Status), ettn.CreatedAt, ettn.UpdatedAt,
	)
	if err != nil {
		return mapError(err, nil, apperror.ErrETTNAlreadyExists, "не удалось создать е-ТТН")
	}
	return nil
}

func (r *ETTNRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.ETTN, error) {
	return r.findOne(ctx, `SELECT `+ettnColumns+` FROM ettn WHERE id = $1`, id)
}

func (r *ETTNRepository) FindByTransactionID(ctx context.Context, transactionID uuid.UUID) (*entity.ETTN, error) {
	return r.findOne(ctx, `SELECT `+ettnColumns+` FROM ettn WHERE transaction_id = $1`, transactionID)
}

func (r *ETTNRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*entity.ETTN, error) {
	var row ettnRow
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, id); err != nil {
		return nil, mapError(err, apperror.ErrETTNNotFound, nil, "не удалось получить е-ТТН")
	}
	return row.toEntity(), nil
}

func (r *ETTNRepository) ExistsForTransaction(ctx context.Context, transactionID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM ettn WHERE transaction_id = $1)`
	if err := conn(ctx, r.db).GetContext(ctx, &exists, query, transactionID); err != nil {
		return false, mapError(err, nil, nil, "не удалось проверить е-ТТН")
	}
	return exists, nil
}

func (r *ETTNRepository) SaveSignature(ctx context.Context, ettn *entity.ETTN, role valueobject.PartyRole) error {
	var query string
	switch role {
	case valueobject.PartyShipper:
		query = saveShipperSignatureQuery
	case valueobject.PartyCarrier:
		query = saveCarrierSignatureQuery
	default:
		return apperror.ErrNotParty
	}
	signature, signedAt := ettn.SignatureOf(role), signedAtOf(ettn, role)
	if signature == nil || signedAt == nil {
		return apperror.New(apperror.ErrCodeInternal, "слот подписи не заполнен")
	}

	var row ettnRow
	err := conn(ctx, r.db).GetContext(ctx, &row, query, ettn.ID, *signature, *signedAt, ettn.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		if _, findErr := r.FindByID(ctx, ettn.ID); findErr != nil {
			return findErr
		}
		return apperror.ErrAlreadySigned
	}
	if err != nil {
		return mapError(err, nil, nil, "не удалось сохранить подпись")
	}
	*ettn = *row.toEntity()
	return nil
}

func signedAtOf(e *entity.ETTN, role valueobject.PartyRole) *time.Time {
	if role == valueobject.PartyShipper {
		return e.ShipperSignedAt
	}
	return e.CarrierSignedAt
}

type ettnRow struct {
	ID               uuid.UUID  `db:"id"`
	TransactionID    uuid.UUID  `db:"transaction_id"`
	Number           string     `db:"ettn_number"`
	CargoDescription string     `db:"cargo_description"`
	Origin           string     `db:"origin"`
	Destination      string     `db:"destination"`
	Weight           float64    `db:"weight"`
	ShipperID        uuid.UUID  `db:"shipper_id"`
	CarrierID        uuid.UUID  `db:"carrier_id"`
	ShipperSignature *string    `db:"shipper_signature"`
	ShipperSignedAt  *time.Time `db:"shipper_signed_at"`
	CarrierSignature *string    `db:"carrier_signature"`
	CarrierSignedAt  *time.Time `db:"carrier_signed_at"`
	Status           string     `db:"status"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

func (e *ettnRow) toEntity() *entity.ETTN {
	return &entity.ETTN{
		ID:               e.ID,
		TransactionID:    e.TransactionID,
		Number:           e.Number,
		CargoDescription: e.CargoDescription,
		Origin:           e.Origin,
		Destination:      e.Destination,
		Weight:           valueobject.Weight(e.Weight),
		ShipperID:        e.ShipperID,
		CarrierID:        e.CarrierID,
		ShipperSignature: e.ShipperSignature,
		ShipperSignedAt:  e.ShipperSignedAt,
		CarrierSignature: e.CarrierSignature,
		CarrierSignedAt:  e.CarrierSignedAt,
		Status:           valueobject.ETTNStatus(e.Status),
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

type SignatureRepository struct {
	db *sqlx.DB
}

func NewSignatureRepository(db *sqlx.DB) *SignatureRepository {
	return &SignatureRepository{db: db}
}

func (r *SignatureRepository) Create(ctx context.Context, signature *entity.DigitalSignature) error {
	metadata, err := json.Marshal(signature.Metadata)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сериализовать метаданные подписи")
	}
	query := `
		INSERT INTO digital_signatures (id, ettn_id, user_id, signature_data, certificate_id, certificate_expiry,
		signed_at, is_valid, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = conn(ctx, r.db).ExecContext(ctx, query,
		signature.ID, signature.ETTNID, signature.UserID, signature.SignatureData, signature.CertificateID,
		signature.CertificateExpiry, signature.SignedAt, signature.IsValid, metadata,
	)
	if err != nil {
		return mapError(err, nil, nil, "не удалось сохранить запись подписи")
	}
	return nil
}

func (r *SignatureRepository) FindByETTNID(ctx context.Context, ettnID uuid.UUID) ([]*entity.DigitalSignature, error) {
	var rows []signatureRow
	query := `
		SELECT id, ettn_id, user_id, signature_data, certificate_id, certificate_expiry, signed_at, is_valid, metadata
		FROM digital_signatures WHERE ettn_id = $1 ORDER BY signed_at
	`
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, ettnID); err != nil {
		return nil, mapError(err, nil, nil, "не удалось получить подписи")
	}
	result := make([]*entity.DigitalSignature, 0, len(rows))
	for i := range rows {
		sig, err := rows[i].toEntity()
		if err != nil {
			return nil, err
		}
		result = append(result, sig)
	}
	return result, nil
}

func (r *SignatureRepository) MarkInvalid(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	values := make([]string, 0, len(ids))
	for _, id := range ids {
		values = append(values, id.String())
	}
	query := `UPDATE digital_signatures SET is_valid = FALSE WHERE id = ANY($1::uuid[])`
	if _, err := conn(ctx, r.db).ExecContext(ctx, query, pq.Array(values)); err != nil {
		return mapError(err, nil, nil, "не удалось обновить подписи")
	}
	return nil
}

type signatureRow struct {
	ID                uuid.UUID  `db:"id"`
	ETTNID            uuid.UUID  `db:"ettn_id"`
	UserID            uuid.UUID  `db:"user_id"`
	SignatureData     string     `db:"signature_data"`
	CertificateID     string     `db:"certificate_id"`
	CertificateExpiry *time.Time `db:"certificate_expiry"`
	SignedAt          time.Time  `db:"signed_at"`
	IsValid           bool       `db:"is_valid"`
	Metadata          []byte     `db:"metadata"`
}

func (s *signatureRow) toEntity() (*entity.DigitalSignature, error) {
	sig := &entity.DigitalSignature{
		ID:                s.ID,
		ETTNID:            s.ETTNID,
		UserID:            s.UserID,
		SignatureData:     s.SignatureData,
		CertificateID:     s.CertificateID,
		CertificateExpiry: s.CertificateExpiry,
		SignedAt:          s.SignedAt,
		IsValid:           s.IsValid,
	}
	if len(s.Metadata) > 0 {
		if err := json.Unmarshal(s.Metadata, &sig.Metadata); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "повреждены метаданные подписи")
		}
	}
	return sig, nil
}

package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/repository"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
)

const transactionColumns = `
	id, cargo_id, bid_id, shipper_id, carrier_id, status, pickup_confirmed, delivery_confirmed,
	created_at, updated_at, completed_at`

type TransactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *entity.Transaction) error {
	query := `
		INSERT INTO transactions (id, cargo_id, bid_id, shipper_id, carrier_id, status,
		pickup_confirmed, delivery_confirmed, created_at, updated_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		tx.ID, tx.CargoID, tx.BidID, tx.ShipperID, tx.CarrierID, string(tx.Status),
		tx.PickupConfirmed, tx.DeliveryConfirmed, tx.CreatedAt, tx.UpdatedAt, tx.CompletedAt,
	)
	if err != nil {
		return mapError(err, nil, apperror.ErrBidAlreadyAccepted, "не удалось создать сделку")
	}
	return nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	return r.findOne(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
}

func (r *TransactionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	return r.findOne(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id)
}

func (r *TransactionRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*entity.Transaction, error) {
	var row transactionRow
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, id); err != nil {
		return nil, mapError(err, apperror.ErrTransactionNotFound, nil, "не удалось получить сделку")
	}
	return row.toEntity(), nil
}

func (r *TransactionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Transaction, error) {
	var rows []transactionRow
	query := `
		SELECT ` + transactionColumns + ` FROM transactions
		WHERE shipper_id = $1 OR carrier_id = $1
		ORDER BY created_at DESC
	`
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, mapError(err, nil, nil, "не удалось получить сделки")
	}
	result := make([]*entity.Transaction, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toEntity())
	}
	return result, nil
}

func (r *TransactionRepository) UpdateStatus(ctx context.Context, tx *entity.Transaction, from valueobject.TransactionStatus) error {
	query := `
		UPDATE transactions SET status = $3, pickup_confirmed = $4, delivery_confirmed = $5,
		updated_at = $6, completed_at = $7
		WHERE id = $1 AND status = $2
	`
	res, err := conn(ctx, r.db).ExecContext(ctx, query,
		tx.ID, string(from), string(tx.Status), tx.PickupConfirmed, tx.DeliveryConfirmed, tx.UpdatedAt, tx.CompletedAt,
	)
	if err != nil {
		return mapError(err, nil, nil, "не удалось обновить статус сделки")
	}
	return expectOneOrMissing(ctx, r.db, res, "transactions", tx.ID, apperror.ErrTransactionNotFound, apperror.ErrStatusChanged)
}

func (r *TransactionRepository) FindCompletedDeliveries(ctx context.Context, userID uuid.UUID) ([]repository.CompletedDelivery, error) {
	var rows []struct {
		TransactionID uuid.UUID  `db:"transaction_id"`
		CompletedAt   *time.Time `db:"completed_at"`
		DeliveryDate  *time.Time `db:"delivery_date"`
	}
	query := `
		SELECT t.id AS transaction_id, t.completed_at, c.delivery_date
		FROM transactions t
		JOIN cargo c ON c.id = t.cargo_id
		WHERE t.status = 'completed' AND (t.shipper_id = $1 OR t.carrier_id = $1)
	`
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, mapError(err, nil, nil, "не удалось получить завершённые сделки")
	}
	result := make([]repository.CompletedDelivery, 0, len(rows))
	for _, row := range rows {
		result = append(result, repository.CompletedDelivery{
			TransactionID: row.TransactionID,
			CompletedAt:   row.CompletedAt,
			DeliveryDate:  row.DeliveryDate,
		})
	}
	return result, nil
}

type transactionRow struct {
	ID                uuid.UUID  `db:"id"`
	CargoID           uuid.UUID  `db:"cargo_id"`
	BidID             uuid.UUID  `db:"bid_id"`
	ShipperID         uuid.UUID  `db:"shipper_id"`
	CarrierID         uuid.UUID  `db:"carrier_id"`
	Status            string     `db:"status"`
	PickupConfirmed   bool       `db:"pickup_confirmed"`
	DeliveryConfirmed bool       `db:"delivery_confirmed"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
	CompletedAt       *time.Time `db:"completed_at"`
}

func (t *transactionRow) toEntity() *entity.Transaction {
	return &entity.Transaction{
		ID:                t.ID,
		CargoID:           t.CargoID,
		BidID:             t.BidID,
		ShipperID:         t.ShipperID,
		CarrierID:         t.CarrierID,
		Status:            valueobject.TransactionStatus(t.Status),
		PickupConfirmed:   t.PickupConfirmed,
		DeliveryConfirmed: t.DeliveryConfirmed,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
		CompletedAt:       t.CompletedAt,
	}
}

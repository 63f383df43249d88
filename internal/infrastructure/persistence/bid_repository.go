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

const bidColumns = `
	id, cargo_id, carrier_id, bid_amount, currency, delivery_time, vehicle_type, message, status,
	created_at, updated_at`

type BidRepository struct {
	db *sqlx.DB
}

func NewBidRepository(db *sqlx.DB) *BidRepository {
	return &BidRepository{db: db}
}

func (r *BidRepository) Create(ctx context.Context, bid *entity.Bid) error {
	query := `
		INSERT INTO bids (id, cargo_id, carrier_id, bid_amount, currency, delivery_time, vehicle_type, message,
		status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		bid.ID, bid.CargoID, bid.CarrierID, bid.Amount.Amount, bid.Amount.Currency,
		bid.DeliveryTime, bid.VehicleType, bid.Message, string(bid.Status),
		bid.CreatedAt, bid.UpdatedAt,
	)
	if err != nil {
		return mapError(err, nil, nil, "не удалось создать ставку")
	}
	return nil
}

func (r *BidRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Bid, error) {
	var row bidRow
	query := `SELECT ` + bidColumns + ` FROM bids WHERE id = $1`
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, id); err != nil {
		return nil, mapError(err, apperror.ErrBidNotFound, nil, "не удалось получить ставку")
	}
	return row.toEntity(), nil
}

func (r *BidRepository) FindByCargoID(ctx context.Context, cargoID uuid.UUID) ([]*entity.Bid, error) {
	return r.list(ctx, `SELECT `+bidColumns+` FROM bids WHERE cargo_id = $1 ORDER BY created_at DESC`, cargoID)
}

func (r *BidRepository) FindByCarrierID(ctx context.Context, carrierID uuid.UUID) ([]*entity.Bid, error) {
	return r.list(ctx, `SELECT `+bidColumns+` FROM bids WHERE carrier_id = $1 ORDER BY created_at DESC`, carrierID)
}

func (r *BidRepository) list(ctx context.Context, query string, id uuid.UUID) ([]*entity.Bid, error) {
	var rows []bidRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, id); err != nil {
		return nil, mapError(err, nil, nil, "не удалось получить ставки")
	}
	result := make([]*entity.Bid, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toEntity())
	}
	return result, nil
}

func (r *BidRepository) HasAccepted(ctx context.Context, cargoID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM bids WHERE cargo_id = $1 AND status = 'accepted')`
	if err := conn(ctx, r.db).GetContext(ctx, &exists, query, cargoID); err != nil {
		return false, mapError(err, nil, nil, "не удалось проверить ставки груза")
	}
	return exists, nil
}

// TransitionStatus опирается на частичный уникальный индекс bids_one_accepted_uidx:
// вторая принятая ставка по грузу даёт нарушение уникальности.
func (r *BidRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to valueobject.BidStatus) error {
	query := `UPDATE bids SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, id, string(from), string(to), time.Now())
	if err != nil {
		return mapError(err, nil, apperror.ErrBidAlreadyAccepted, "не удалось обновить статус ставки")
	}
	return expectOne(res, apperror.ErrBidNotPending)
}

func (r *BidRepository) StatsByCarrier(ctx context.Context, carrierID uuid.UUID) (repository.BidStats, error) {
	var row struct {
		Total    int `db:"total"`
		Accepted int `db:"accepted"`
	}
	query := `
		SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE status = 'accepted') AS accepted
		FROM bids WHERE carrier_id = $1
	`
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, carrierID); err != nil {
		return repository.BidStats{}, mapError(err, nil, nil, "не удалось получить статистику ставок")
	}
	return repository.BidStats{Total: row.Total, Accepted: row.Accepted}, nil
}

type bidRow struct {
	ID           uuid.UUID `db:"id"`
	CargoID      uuid.UUID `db:"cargo_id"`
	CarrierID    uuid.UUID `db:"carrier_id"`
	BidAmount    float64   `db:"bid_amount"`
	Currency     string    `db:"currency"`
	DeliveryTime string    `db:"delivery_time"`
	VehicleType  string    `db:"vehicle_type"`
	Message      *string   `db:"message"`
	Status       string    `db:"status"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (b *bidRow) toEntity() *entity.Bid {
	return &entity.Bid{
		ID:           b.ID,
		CargoID:      b.CargoID,
		CarrierID:    b.CarrierID,
		Amount:       valueobject.Money{Amount: b.BidAmount, Currency: b.Currency},
		DeliveryTime: b.DeliveryTime,
		VehicleType:  b.VehicleType,
		Message:      b.Message,
		Status:       valueobject.BidStatus(b.Status),
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

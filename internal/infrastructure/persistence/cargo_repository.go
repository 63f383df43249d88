package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/repository"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
)

const cargoColumns = `
	id, user_id, title, description, category, origin, destination, weight, price, currency,
	pickup_date, delivery_date, auction_end_date, status, created_at, updated_at`

type CargoRepository struct {
	db *sqlx.DB
}

func NewCargoRepository(db *sqlx.DB) *CargoRepository {
	return &CargoRepository{db: db}
}

func (r *CargoRepository) Create(ctx context.Context, cargo *entity.Cargo) error {
	query := `
		INSERT INTO cargo (id, user_id, title, description, category, origin, destination, weight, price, currency,
		pickup_date, delivery_date, auction_end_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		cargo.ID, cargo.OwnerID, cargo.Title, cargo.Description, cargo.Category, cargo.Origin, cargo.Destination,
		float64(cargo.Weight), cargo.Price.Amount, cargo.Price.Currency,
		cargo.PickupDate, cargo.DeliveryDate, cargo.AuctionEndDate, string(cargo.Status),
		cargo.CreatedAt, cargo.UpdatedAt,
	)
	if err != nil {
		return mapError(err, nil, nil, "не удалось создать груз")
	}
	return nil
}

func (r *CargoRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Cargo, error) {
	return r.findOne(ctx, `SELECT `+cargoColumns+` FROM cargo WHERE id = $1`, id)
}

func (r *CargoRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Cargo, error) {
	return r.findOne(ctx, `SELECT `+cargoColumns+` FROM cargo WHERE id = $1 FOR UPDATE`, id)
}

func (r *CargoRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*entity.Cargo, error) {
	var row cargoRow
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, id); err != nil {
		return nil, mapError(err, apperror.ErrCargoNotFound, nil, "не удалось получить груз")
	}
	return row.toEntity(), nil
}

func (r *CargoRepository) List(ctx context.Context, filter repository.CargoFilter) ([]*entity.Cargo, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}

	query := `SELECT ` + cargoColumns + ` FROM cargo`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	var rows []cargoRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, mapError(err, nil, nil, "не удалось получить список грузов")
	}
	result := make([]*entity.Cargo, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toEntity())
	}
	return result, nil
}

func (r *CargoRepository) Update(ctx context.Context, cargo *entity.Cargo) error {
	query := `
		UPDATE cargo SET title = $3, description = $4, category = $5, origin = $6, destination = $7,
		weight = $8, price = $9, pickup_date = $10, delivery_date = $11, auction_end_date = $12, updated_at = $13
		WHERE id = $1 AND status = $2
	`
	res, err := conn(ctx, r.db).ExecContext(ctx, query,
		cargo.ID, string(valueobject.CargoStatusActive),
		cargo.Title, cargo.Description, cargo.Category, cargo.Origin, cargo.Destination,
		float64(cargo.Weight), cargo.Price.Amount,
		cargo.PickupDate, cargo.DeliveryDate, cargo.AuctionEndDate, cargo.UpdatedAt,
	)
	if err != nil {
		return mapError(err, nil, nil, "не удалось обновить груз")
	}
	return expectOneOrMissing(ctx, r.db, res, "cargo", cargo.ID, apperror.ErrCargoNotFound, apperror.ErrStatusChanged)
}

func (r *CargoRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to valueobject.CargoStatus) error {
	query := `UPDATE cargo SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, id, string(from), string(to), time.Now())
	if err != nil {
		return mapError(err, nil, nil, "не удалось обновить статус груза")
	}
	return expectOneOrMissing(ctx, r.db, res, "cargo", id, apperror.ErrCargoNotFound, apperror.ErrStatusChanged)
}

type cargoRow struct {
	ID             uuid.UUID  `db:"id"`
	UserID         uuid.UUID  `db:"user_id"`
	Title          string     `db:"title"`
	Description    *string    `db:"description"`
	Category       string     `db:"category"`
	Origin         string     `db:"origin"`
	Destination    string     `db:"destination"`
	Weight         float64    `db:"weight"`
	Price          float64    `db:"price"`
	Currency       string     `db:"currency"`
	PickupDate     time.Time  `db:"pickup_date"`
	DeliveryDate   *time.Time `db:"delivery_date"`
	AuctionEndDate *time.Time `db:"auction_end_date"`
	Status         string     `db:"status"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

func (c *cargoRow) toEntity() *entity.Cargo {
	return &entity.Cargo{
		ID:             c.ID,
		OwnerID:        c.UserID,
		Title:          c.Title,
		Description:    c.Description,
		Category:       c.Category,
		Origin:         c.Origin,
		Destination:    c.Destination,
		Weight:         valueobject.Weight(c.Weight),
		Price:          valueobject.Money{Amount: c.Price, Currency: c.Currency},
		PickupDate:     c.PickupDate,
		DeliveryDate:   c.DeliveryDate,
		AuctionEndDate: c.AuctionEndDate,
		Status:         valueobject.CargoStatus(c.Status),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

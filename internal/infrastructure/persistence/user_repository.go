package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
)

const userColumns = `
	id, email, first_name, last_name, company_name, phone, role, iin, bin,
	eds_cert_id, eds_cert_expiry, rws_score, otd_rate, acceptance_rate, reliability_score,
	total_transactions, on_time_deliveries, late_deliveries, total_bids, accepted_bids,
	is_recommended, created_at, updated_at`

var errUserExists = apperror.New(apperror.ErrCodeConflict, "пользователь с таким email уже существует")

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, email, first_name, last_name, company_name, phone, role, iin, bin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		user.ID, user.Email, user.FirstName, user.LastName, user.CompanyName, user.Phone,
		string(user.Role), user.IIN, user.BIN, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return mapError(err, nil, errUserExists, "не удалось создать пользователя")
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var row userRow
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, id); err != nil {
		return nil, mapError(err, apperror.ErrUserNotFound, nil, "не удалось получить пользователя")
	}
	return row.toEntity(), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var row userRow
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, email); err != nil {
		return nil, mapError(err, apperror.ErrUserNotFound, nil, "не удалось получить пользователя")
	}
	return row.toEntity(), nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users SET first_name = $2, last_name = $3, company_name = $4, phone = $5,
		iin = $6, bin = $7, updated_at = $8
		WHERE id = $1
	`
	res, err := conn(ctx, r.db).ExecContext(ctx, query,
		user.ID, user.FirstName, user.LastName, user.CompanyName, user.Phone,
		user.IIN, user.BIN, user.UpdatedAt,
	)
	if err != nil {
		return mapError(err, nil, nil, "не удалось обновить профиль")
	}
	return expectOne(res, apperror.ErrUserNotFound)
}

func (r *UserRepository) UpdateRole(ctx context.Context, userID uuid.UUID, role valueobject.UserRole, at time.Time) error {
	query := `UPDATE users SET role = $2, updated_at = $3 WHERE id = $1`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, userID, string(role), at)
	if err != nil {
		return mapError(err, nil, nil, "не удалось изменить роль")
	}
	return expectOne(res, apperror.ErrUserNotFound)
}

func (r *UserRepository) UpdateReputation(ctx context.Context, userID uuid.UUID, rep entity.Reputation, at time.Time) error {
	query := `
		UPDATE users SET rws_score = $2, otd_rate = $3, acceptance_rate = $4, reliability_score = $5,
		total_transactions = $6, on_time_deliveries = $7, late_deliveries = $8,
		total_bids = $9, accepted_bids = $10, is_recommended = $11, updated_at = $12
		WHERE id = $1
	`
	res, err := conn(ctx, r.db).ExecContext(ctx, query,
		userID, rep.RWSScore, rep.OTDRate, rep.AcceptanceRate, rep.ReliabilityScore,
		rep.TotalTransactions, rep.OnTimeDeliveries, rep.LateDeliveries,
		rep.TotalBids, rep.AcceptedBids, rep.IsRecommended, at,
	)
	if err != nil {
		return mapError(err, nil, nil, "не удалось обновить репутацию")
	}
	return expectOne(res, apperror.ErrUserNotFound)
}

func (r *UserRepository) AssignCertificate(ctx context.Context, userID uuid.UUID, certID string, expiry time.Time, now time.Time) (bool, error) {
	query := `
		UPDATE users SET eds_cert_id = $2, eds_cert_expiry = $3, updated_at = $4
		WHERE id = $1 AND (eds_cert_id IS NULL OR eds_cert_expiry IS NULL OR eds_cert_expiry <= $4)
	`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, userID, certID, expiry, now)
	if err != nil {
		return false, mapError(err, nil, nil, "не удалось сохранить сертификат")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить сертификат")
	}
	return n == 1, nil
}

type userRow struct {
	ID                uuid.UUID  `db:"id"`
	Email             string     `db:"email"`
	FirstName         string     `db:"first_name"`
	LastName          string     `db:"last_name"`
	CompanyName       *string    `db:"company_name"`
	Phone             *string    `db:"phone"`
	Role              string     `db:"role"`
	IIN               *string    `db:"iin"`
	BIN               *string    `db:"bin"`
	EDSCertID         *string    `db:"eds_cert_id"`
	EDSCertExpiry     *time.Time `db:"eds_cert_expiry"`
	RWSScore          int        `db:"rws_score"`
	OTDRate           float64    `db:"otd_rate"`
	AcceptanceRate    float64    `db:"acceptance_rate"`
	ReliabilityScore  float64    `db:"reliability_score"`
	TotalTransactions int        `db:"total_transactions"`
	OnTimeDeliveries  int        `db:"on_time_deliveries"`
	LateDeliveries    int        `db:"late_deliveries"`
	TotalBids         int        `db:"total_bids"`
	AcceptedBids      int        `db:"accepted_bids"`
	IsRecommended     bool       `db:"is_recommended"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

func (u *userRow) toEntity() *entity.User {
	return &entity.User{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		CompanyName:   u.CompanyName,
		Phone:         u.Phone,
		Role:          valueobject.UserRole(u.Role),
		IIN:           u.IIN,
		BIN:           u.BIN,
		EDSCertID:     u.EDSCertID,
		EDSCertExpiry: u.EDSCertExpiry,
		Reputation: entity.Reputation{
			RWSScore:          u.RWSScore,
			OTDRate:           u.OTDRate,
			AcceptanceRate:    u.AcceptanceRate,
			ReliabilityScore:  u.ReliabilityScore,
			TotalTransactions: u.TotalTransactions,
			OnTimeDeliveries:  u.OnTimeDeliveries,
			LateDeliveries:    u.LateDeliveries,
			TotalBids:         u.TotalBids,
			AcceptedBids:      u.AcceptedBids,
			IsRecommended:     u.IsRecommended,
		},
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

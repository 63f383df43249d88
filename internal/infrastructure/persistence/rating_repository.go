package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
)

type RatingRepository struct {
	db *sqlx.DB
}

func NewRatingRepository(db *sqlx.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

func (r *RatingRepository) Create(ctx context.Context, rating *entity.Rating) error {
	query := `
		INSERT INTO rws_metrics (id, user_id, rater_id, transaction_id, on_time_delivery, cargo_condition,
		communication, documentation, overall_score, created_at)
		VALUES (:id, :user_id, :rater_id, :transaction_id, :on_time_delivery, :cargo_condition,
		:communication, :documentation, :overall_score, :created_at)
	`
	if _, err := sqlx.NamedExecContext(ctx, conn(ctx, r.db), query, newRatingRow(rating)); err != nil {
		return mapError(err, nil, apperror.ErrRatingExists, "не удалось сохранить оценку")
	}
	return nil
}

func (r *RatingRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Rating, error) {
	var rows []ratingRow
	query := `
		SELECT id, user_id, rater_id, transaction_id, on_time_delivery, cargo_condition,
		communication, documentation, overall_score, created_at
		FROM rws_metrics WHERE user_id = $1 ORDER BY created_at DESC
	`
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, mapError(err, nil, nil, "не удалось получить оценки")
	}
	result := make([]*entity.Rating, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toEntity())
	}
	return result, nil
}

func (r *RatingRepository) ExistsForRater(ctx context.Context, raterID, transactionID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM rws_metrics WHERE rater_id = $1 AND transaction_id = $2)`
	if err := conn(ctx, r.db).GetContext(ctx, &exists, query, raterID, transactionID); err != nil {
		return false, mapError(err, nil, nil, "не удалось проверить оценку")
	}
	return exists, nil
}

type ratingRow struct {
	ID             uuid.UUID `db:"id"`
	UserID         uuid.UUID `db:"user_id"`
	RaterID        uuid.UUID `db:"rater_id"`
	TransactionID  uuid.UUID `db:"transaction_id"`
	OnTimeDelivery int       `db:"on_time_delivery"`
	CargoCondition int       `db:"cargo_condition"`
	Communication  int       `db:"communication"`
	Documentation  int       `db:"documentation"`
	OverallScore   int       `db:"overall_score"`
	CreatedAt      time.Time `db:"created_at"`
}

// ratingRow повторяет поля entity.Rating, поэтому конвертируется напрямую.
func newRatingRow(r *entity.Rating) ratingRow {
	return ratingRow(*r)
}

func (r *ratingRow) toEntity() *entity.Rating {
	rating := entity.Rating(*r)
	return &rating
}

package reputation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/repository"
	"github.com/ignatzorin/cargolink-backend/internal/logger"
	"github.com/ignatzorin/cargolink-backend/internal/metrics"
	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
)

// Engine пересчитывает репутацию (RWS) и сохраняет её на пользователе.
// Пересчёт - единственный путь изменения полей репутации.
type Engine struct {
	users        repository.UserRepository
	transactions repository.TransactionRepository
	bids         repository.BidRepository
	ratings      repository.RatingRepository
	now          func() time.Time
}

func NewEngine(
	users repository.UserRepository,
	transactions repository.TransactionRepository,
	bids repository.BidRepository,
	ratings repository.RatingRepository,
) *Engine {
	return &Engine{
		users:        users,
		transactions: transactions,
		bids:         bids,
		ratings:      ratings,
		now:          time.Now,
	}
}

// LoadHistory собирает исходные события пользователя.
func (e *Engine) LoadHistory(ctx context.Context, userID uuid.UUID) (History, error) {
	deliveries, err := e.transactions.FindCompletedDeliveries(ctx, userID)
	if err != nil {
		return History{}, err
	}
	stats, err := e.bids.StatsByCarrier(ctx, userID)
	if err != nil {
		return History{}, err
	}
	ratings, err := e.ratings.FindByUserID(ctx, userID)
	if err != nil {
		return History{}, err
	}

	scores := make([]int, 0, len(ratings))
	for _, r := range ratings {
		scores = append(scores, r.OverallScore)
	}
	return History{Deliveries: deliveries, Bids: stats, RatingScores: scores}, nil
}

// Recalculate полностью пересчитывает и перезаписывает репутацию пользователя.
func (e *Engine) Recalculate(ctx context.Context, userID uuid.UUID) (entity.Reputation, error) {
	rep, err := e.recalculate(ctx, userID)
	if err != nil {
		metrics.RWSRecalculationsTotal.WithLabelValues("error").Inc()
		return entity.Reputation{}, err
	}
	metrics.RWSRecalculationsTotal.WithLabelValues("ok").Inc()
	return rep, nil
}

func (e *Engine) recalculate(ctx context.Context, userID uuid.UUID) (entity.Reputation, error) {
	if _, err := e.users.FindByID(ctx, userID); err != nil {
		if apperror.IsNotFound(err) {
			return entity.Reputation{}, apperror.ErrUserNotFound
		}
		return entity.Reputation{}, err
	}

	history, err := e.LoadHistory(ctx, userID)
	if err != nil {
		return entity.Reputation{}, err
	}

	rep := Calculate(history)
	if err := e.users.UpdateReputation(ctx, userID, rep, e.now()); err != nil {
		return entity.Reputation{}, err
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":        userID,
		"rws_score":      rep.RWSScore,
		"is_recommended": rep.IsRecommended,
	}).Debug("reputation: пересчитан RWS")

	return rep, nil
}

// RecalculateMany пересчитывает репутацию нескольких пользователей параллельно.
func (e *Engine) RecalculateMany(ctx context.Context, userIDs ...uuid.UUID) error {
	g, gctx := errgroup.WithContext(ctx)
	seen := make(map[uuid.UUID]struct{}, len(userIDs))
	for _, id := range userIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		userID := id
		g.Go(func() error {
			_, err := e.Recalculate(gctx, userID)
			return err
		})
	}
	return g.Wait()
}

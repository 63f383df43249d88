// Package persistence - адаптеры репозиториев поверх PostgreSQL (sqlx + lib/pq).
package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/cargolink-backend/internal/domain/repository"
	"github.com/ignatzorin/cargolink-backend/internal/logger"
	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
)

const uniqueViolation = "23505"

// executor - общее подмножество *sqlx.DB и *sqlx.Tx.
type executor interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

type txKey struct{}

// Transactor хранит открытую транзакцию в контексте. Репозитории, получившие
// такой контекст, выполняют запросы внутри неё.
type Transactor struct {
	db *sqlx.DB
}

var (
	_ repository.Transactor             = (*Transactor)(nil)
	_ repository.UserRepository         = (*UserRepository)(nil)
	_ repository.CargoRepository        = (*CargoRepository)(nil)
	_ repository.BidRepository          = (*BidRepository)(nil)
	_ repository.TransactionRepository  = (*TransactionRepository)(nil)
	_ repository.RatingRepository       = (*RatingRepository)(nil)
	_ repository.ETTNRepository         = (*ETTNRepository)(nil)
	_ repository.SignatureRepository    = (*SignatureRepository)(nil)
	_ repository.MessageRepository      = (*MessageRepository)(nil)
	_ repository.NotificationRepository = (*NotificationRepository)(nil)
)

func NewTransactor(db *sqlx.DB) *Transactor {
	return &Transactor{db: db}
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось начать транзакцию")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logger.Log.WithError(rbErr).Error("persistence: не удалось откатить транзакцию")
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = apperror.Wrap(cErr, apperror.ErrCodeDatabaseError, "не удалось зафиксировать транзакцию")
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, tx))
}

// conn возвращает транзакцию из контекста либо пул соединений.
func conn(ctx context.Context, db *sqlx.DB) executor {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db
}

// mapError переводит ошибки драйвера в ошибки приложения.
func mapError(err error, notFound error, conflict error, message string) error {
	if errors.Is(err, sql.ErrNoRows) && notFound != nil {
		return notFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && conflict != nil {
		logger.Log.WithFields(logrus.Fields{
			"constraint": pqErr.Constraint,
		}).Debug("persistence: нарушение уникальности")
		return conflict
	}
	return apperror.Wrap(err, apperror.ErrCodeDatabaseError, message)
}

// expectOne проверяет, что условное обновление затронуло строку.
func expectOne(res sql.Result, onZero error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить число изменённых строк")
	}
	if n == 0 {
		return onZero
	}
	return nil
}

// expectOneOrMissing отличает отсутствующую строку от не выполненного условия обновления.
func expectOneOrMissing(ctx context.Context, db *sqlx.DB, res sql.Result, table string, id interface{}, notFound, onZero error) error {
	if err := expectOne(res, onZero); err == nil || !errors.Is(err, onZero) {
		return err
	}
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM ` + table + ` WHERE id = $1)`
	if err := conn(ctx, db).GetContext(ctx, &exists, query, id); err != nil {
		return mapError(err, nil, nil, "не удалось проверить запись")
	}
	if !exists {
		return notFound
	}
	return onZero
}

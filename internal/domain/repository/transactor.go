package repository

import "context"

// Transactor выполняет fn в одной транзакции БД. Репозитории, вызванные
// с переданным контекстом, работают внутри этой транзакции.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

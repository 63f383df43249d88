// Package memory - хранилище в памяти процесса. Используется для локального
// запуска без PostgreSQL (STORAGE_DRIVER=memory) и в тестах сценариев.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/repository"
)

type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	users         map[uuid.UUID]entity.User
	cargo         map[uuid.UUID]entity.Cargo
	bids          map[uuid.UUID]entity.Bid
	transactions  map[uuid.UUID]entity.Transaction
	ratings       map[uuid.UUID]entity.Rating
	ettns         map[uuid.UUID]entity.ETTN
	signatures    map[uuid.UUID]entity.DigitalSignature
	messages      map[uuid.UUID]entity.Message
	notifications map[uuid.UUID]entity.Notification
}

func NewStore() *Store {
	return &Store{
		users:         make(map[uuid.UUID]entity.User),
		cargo:         make(map[uuid.UUID]entity.Cargo),
		bids:          make(map[uuid.UUID]entity.Bid),
		transactions:  make(map[uuid.UUID]entity.Transaction),
		ratings:       make(map[uuid.UUID]entity.Rating),
		ettns:         make(map[uuid.UUID]entity.ETTN),
		signatures:    make(map[uuid.UUID]entity.DigitalSignature),
		messages:      make(map[uuid.UUID]entity.Message),
		notifications: make(map[uuid.UUID]entity.Notification),
	}
}

type txKey struct{}

// undoLog хранит шаги отката изменений, сделанных внутри транзакции.
// Записи вне транзакции в журнал не попадают и откатом не затрагиваются.
type undoLog struct {
	steps []func()
}

func undoFrom(ctx context.Context) *undoLog {
	u, _ := ctx.Value(txKey{}).(*undoLog)
	return u
}

// put записывает значение по ключу. Вызывается под s.mu.
func put[T any](ctx context.Context, m map[uuid.UUID]T, id uuid.UUID, v T) {
	remember(ctx, m, id)
	m[id] = v
}

// remove удаляет значение по ключу. Вызывается под s.mu.
func remove[T any](ctx context.Context, m map[uuid.UUID]T, id uuid.UUID) {
	remember(ctx, m, id)
	delete(m, id)
}

func remember[T any](ctx context.Context, m map[uuid.UUID]T, id uuid.UUID) {
	u := undoFrom(ctx)
	if u == nil {
		return
	}
	prev, existed := m[id]
	u.steps = append(u.steps, func() {
		if existed {
			m[id] = prev
			return
		}
		delete(m, id)
	})
}

func (s *Store) rollback(u *undoLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(u.steps) - 1; i >= 0; i-- {
		u.steps[i]()
	}
}

// WithinTx сериализует транзакции и откатывает изменения fn, если она вернула ошибку.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if undoFrom(ctx) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	log := &undoLog{}
	defer func() {
		if p := recover(); p != nil {
			s.rollback(log)
			panic(p)
		}
		if err != nil {
			s.rollback(log)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, log))
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{s: s}
}

func (s *Store) Cargo() *CargoRepository {
	return &CargoRepository{s: s}
}

func (s *Store) Bids() *BidRepository {
	return &BidRepository{s: s}
}

func (s *Store) Transactions() *TransactionRepository {
	return &TransactionRepository{s: s}
}

func (s *Store) Ratings() *RatingRepository {
	return &RatingRepository{s: s}
}

func (s *Store) ETTNs() *ETTNRepository {
	return &ETTNRepository{s: s}
}

func (s *Store) Signatures() *SignatureRepository {
	return &SignatureRepository{s: s}
}

func (s *Store) Messages() *MessageRepository {
	return &MessageRepository{s: s}
}

func (s *Store) Notifications() *NotificationRepository {
	return &NotificationRepository{s: s}
}

var (
	_ repository.Transactor             = (*Store)(nil)
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

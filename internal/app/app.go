// Package app собирает репозитории, сценарии и HTTP обработчики в одно целое.
package app

import (
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/cargolink-backend/internal/domain/repository"
	"github.com/ignatzorin/cargolink-backend/internal/goroutine"
	"github.com/ignatzorin/cargolink-backend/internal/http/router"
	"github.com/ignatzorin/cargolink-backend/internal/infrastructure/kafka"
	"github.com/ignatzorin/cargolink-backend/internal/infrastructure/memory"
	"github.com/ignatzorin/cargolink-backend/internal/infrastructure/notify"
	"github.com/ignatzorin/cargolink-backend/internal/infrastructure/persistence"
	"github.com/ignatzorin/cargolink-backend/internal/interface/http/handler"
	"github.com/ignatzorin/cargolink-backend/internal/service"
	"github.com/ignatzorin/cargolink-backend/internal/usecase/auth"
	"github.com/ignatzorin/cargolink-backend/internal/usecase/bid"
	"github.com/ignatzorin/cargolink-backend/internal/usecase/cargo"
	"github.com/ignatzorin/cargolink-backend/internal/usecase/chat"
	"github.com/ignatzorin/cargolink-backend/internal/usecase/dashboard"
	"github.com/ignatzorin/cargolink-backend/internal/usecase/ettn"
	"github.com/ignatzorin/cargolink-backend/internal/usecase/notification"
	"github.com/ignatzorin/cargolink-backend/internal/usecase/reputation"
	"github.com/ignatzorin/cargolink-backend/internal/usecase/transaction"
	"github.com/ignatzorin/cargolink-backend/internal/ws"
)

// Repositories - набор хранилищ одного драйвера.
type Repositories struct {
	Tx            repository.Transactor
	Users         repository.UserRepository
	Cargo         repository.CargoRepository
	Bids          repository.BidRepository
	Transactions  repository.TransactionRepository
	Ratings       repository.RatingRepository
	ETTNs         repository.ETTNRepository
	Signatures    repository.SignatureRepository
	Messages      repository.MessageRepository
	Notifications repository.NotificationRepository
}

func MemoryRepositories(store *memory.Store) Repositories {
	return Repositories{
		Tx:            store,
		Users:         store.Users(),
		Cargo:         store.Cargo(),
		Bids:          store.Bids(),
		Transactions:  store.Transactions(),
		Ratings:       store.Ratings(),
		ETTNs:         store.ETTNs(),
		Signatures:    store.Signatures(),
		Messages:      store.Messages(),
		Notifications: store.Notifications(),
	}
}

func PostgresRepositories(db *sqlx.DB) Repositories {
	return Repositories{
		Tx:            persistence.NewTransactor(db),
		Users:         persistence.NewUserRepository(db),
		Cargo:         persistence.NewCargoRepository(db),
		Bids:          persistence.NewBidRepository(db),
		Transactions:  persistence.NewTransactionRepository(db),
		Ratings:       persistence.NewRatingRepository(db),
		ETTNs:         persistence.NewETTNRepository(db),
		Signatures:    persistence.NewSignatureRepository(db),
		Messages:      persistence.NewMessageRepository(db),
		Notifications: persistence.NewNotificationRepository(db),
	}
}

// Deps - внешние зависимости сценариев.
type Deps struct {
	Tokens    *service.TokenManager
	Signer    repository.DigitalSigner
	Hub       *ws.Hub
	Publisher kafka.Publisher
	Runner    *goroutine.RecoveryHandler
	// DB проверяется в /health; nil в режиме памяти.
	DB      handler.Pinger
	Storage string
	// DevLogin включает POST /api/dev/login.
	DevLogin bool
}

// NewHandlers связывает сценарии с обработчиками.
func NewHandlers(repos Repositories, deps Deps) router.Handlers {
	events := ws.NewEvents(deps.Hub)
	notifier := notify.NewDispatcher(repos.Notifications, events, deps.Publisher, deps.Runner)
	engine := reputation.NewEngine(repos.Users, repos.Transactions, repos.Bids, repos.Ratings)

	cargoUC := cargo.NewCargoUseCase(repos.Users, repos.Cargo)
	listBidsUC := bid.NewListBidsUseCase(repos.Cargo, repos.Bids)
	createBidUC := bid.NewCreateBidUseCase(repos.Users, repos.Cargo, repos.Bids, notifier)
	decideBidUC := bid.NewDecideBidUseCase(repos.Tx, repos.Users, repos.Cargo, repos.Bids, repos.Transactions, notifier, engine)

	getTransactionUC := transaction.NewGetTransactionUseCase(repos.Users, repos.Transactions)
	advanceStatusUC := transaction.NewAdvanceStatusUseCase(repos.Tx, repos.Users, repos.Cargo, repos.Transactions, repos.ETTNs, notifier, engine)

	getETTNUC := ettn.NewGetETTNUseCase(repos.Transactions, repos.ETTNs, repos.Signatures)
	createETTNUC := ettn.NewCreateETTNUseCase(repos.Transactions, repos.Cargo, repos.ETTNs, notifier)
	certificates := ettn.NewEnsureCertificateUseCase(repos.Users, deps.Signer)
	signETTNUC := ettn.NewSignETTNUseCase(repos.Tx, repos.ETTNs, repos.Signatures, repos.Transactions, certificates, deps.Signer, notifier)
	verifyETTNUC := ettn.NewVerifyETTNUseCase(getETTNUC, repos.Signatures, deps.Signer)

	submitRatingUC := reputation.NewSubmitRatingUseCase(repos.Transactions, repos.Ratings, engine)
	getReputationUC := reputation.NewGetReputationUseCase(repos.Users, repos.Ratings)

	chatUC := chat.NewChatUseCase(repos.Users, repos.Transactions, repos.Messages, events, notifier)
	notificationUC := notification.NewNotificationUseCase(repos.Notifications)
	dashboardUC := dashboard.NewDashboardUseCase(repos.Users, repos.Cargo, repos.Bids, repos.Transactions, repos.Notifications)

	handlers := router.Handlers{
		Health:       handler.NewHealthHandler(deps.DB, deps.Storage),
		Profile:      handler.NewProfileHandler(auth.NewProfileUseCase(repos.Users)),
		Cargo:        handler.NewCargoHandler(cargoUC, listBidsUC),
		Bid:          handler.NewBidHandler(createBidUC, decideBidUC, listBidsUC),
		Transaction:  handler.NewTransactionHandler(getTransactionUC, advanceStatusUC, getETTNUC),
		RWS:          handler.NewRWSHandler(submitRatingUC, getReputationUC),
		ETTN:         handler.NewETTNHandler(createETTNUC, getETTNUC, signETTNUC, verifyETTNUC),
		Message:      handler.NewMessageHandler(chatUC),
		Notification: handler.NewNotificationHandler(notificationUC),
		Dashboard:    handler.NewDashboardHandler(dashboardUC),
		WS:           handler.NewWSHandler(deps.Hub, deps.Tokens),
	}
	if deps.DevLogin {
		handlers.Auth = handler.NewAuthHandler(auth.NewDevLoginUseCase(repos.Users, deps.Tokens))
	}
	return handlers
}

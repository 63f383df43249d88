package chat

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/repository"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
	"github.com/ignatzorin/cargolink-backend/internal/logger"
	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
)

// Broadcaster доставляет сообщение чата в открытые websocket-соединения пользователя.
type Broadcaster interface {
	ChatMessage(userID uuid.UUID, message *entity.Message) error
}

type ChatUseCase struct {
	users        repository.UserRepository
	transactions repository.TransactionRepository
	messages     repository.MessageRepository
	broadcaster  Broadcaster
	notifier     repository.Notifier
}

func NewChatUseCase(
	users repository.UserRepository,
	transactions repository.TransactionRepository,
	messages repository.MessageRepository,
	broadcaster Broadcaster,
	notifier repository.Notifier,
) *ChatUseCase {
	return &ChatUseCase{
		users:        users,
		transactions: transactions,
		messages:     messages,
		broadcaster:  broadcaster,
		notifier:     notifier,
	}
}

func (uc *ChatUseCase) Send(ctx context.Context, senderID, transactionID uuid.UUID, content string) (*entity.Message, error) {
	deal, err := uc.transactions.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !deal.IsParty(senderID) {
		return nil, apperror.ErrNotParty
	}

	message, err := entity.NewMessage(transactionID, senderID, content)
	if err != nil {
		return nil, err
	}
	if err := uc.messages.Create(ctx, message); err != nil {
		return nil, err
	}

	recipient := deal.Counterparty(senderID)
	for _, userID := range []uuid.UUID{senderID, recipient} {
		if err := uc.broadcaster.ChatMessage(userID, message); err != nil {
			logger.Log.WithFields(logrus.Fields{
				"user_id":    userID,
				"message_id": message.ID,
			}).WithError(err).Warn("chat: не удалось отправить сообщение в websocket")
		}
	}

	senderName := "Участник сделки"
	if sender, err := uc.users.FindByID(ctx, senderID); err == nil {
		senderName = sender.DisplayName()
	}
	uc.notifier.Deliver(ctx, recipient, repository.NotificationPayload{
		Type:    valueobject.NotificationNewMessage,
		Title:   "Новое сообщение",
		Message: fmt.Sprintf("%s: %s", senderName, preview(message.Content)),
		Link:    fmt.Sprintf("/transactions/%s", transactionID),
	})

	return message, nil
}

func (uc *ChatUseCase) List(ctx context.Context, actorID, transactionID uuid.UUID) ([]*entity.Message, error) {
	deal, err := uc.transactions.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !deal.IsParty(actorID) {
		return nil, apperror.ErrNotParty
	}
	return uc.messages.FindByTransactionID(ctx, transactionID)
}

func preview(content string) string {
	const limit = 100
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit]) + "…"
}

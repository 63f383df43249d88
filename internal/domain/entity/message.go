package entity

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
)

const MaxMessageLength = 5000

type Message struct {
	ID            uuid.UUID
	TransactionID uuid.UUID
	SenderID      uuid.UUID
	Content       string
	CreatedAt     time.Time
}

func NewMessage(transactionID, senderID uuid.UUID, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.Validation("сообщение не может быть пустым", map[string]string{"content": "обязательное поле"})
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return nil, apperror.Validation("сообщение слишком длинное", map[string]string{"content": "не более 5000 символов"})
	}
	return &Message{
		ID:            uuid.New(),
		TransactionID: transactionID,
		SenderID:      senderID,
		Content:       content,
		CreatedAt:     time.Now(),
	}, nil
}

package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
)

type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Type      valueobject.NotificationType
	Title     string
	Message   string
	Link      string
	IsRead    bool
	CreatedAt time.Time
}

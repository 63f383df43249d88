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

type MessageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, message *entity.Message) error {
	query := `
		INSERT INTO messages (id, transaction_id, sender_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		message.ID, message.TransactionID, message.SenderID, message.Content, message.CreatedAt,
	)
	if err != nil {
		return mapError(err, nil, nil, "не удалось сохранить сообщение")
	}
	return nil
}

func (r *MessageRepository) FindByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]*entity.Message, error) {
	var rows []struct {
		ID            uuid.UUID `db:"id"`
		TransactionID uuid.UUID `db:"transaction_id"`
		SenderID      uuid.UUID `db:"sender_id"`
		Content       string    `db:"content"`
		CreatedAt     time.Time `db:"created_at"`
	}
	query := `
		SELECT id, transaction_id, sender_id, content, created_at
		FROM messages WHERE transaction_id = $1 ORDER BY created_at
	`
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, transactionID); err != nil {
		return nil, mapError(err, nil, nil, "не удалось получить сообщения")
	}
	result := make([]*entity.Message, 0, len(rows))
	for _, row := range rows {
		result = append(result, &entity.Message{
			ID:            row.ID,
			TransactionID: row.TransactionID,
			SenderID:      row.SenderID,
			Content:       row.Content,
			CreatedAt:     row.CreatedAt,
		})
	}
	return result, nil
}

type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO notifications (id, user_id, type, title, message, link, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		n.ID, n.UserID, string(n.Type), n.Title, n.Message, n.Link, n.IsRead, n.CreatedAt,
	)
	if err != nil {
		return mapError(err, nil, nil, "не удалось сохранить уведомление")
	}
	return nil
}

func (r *NotificationRepository) List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]*entity.Notification, error) {
	var rows []notificationRow
	query := `
		SELECT id, user_id, type, title, message, link, is_read, created_at
		FROM notifications
		WHERE user_id = $1 AND ($2 = FALSE OR is_read = FALSE)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	var limitArg interface{}
	if limit > 0 {
		limitArg = limit
	}
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, userID, unreadOnly, limitArg, offset); err != nil {
		return nil, mapError(err, nil, nil, "не удалось получить уведомления")
	}
	result := make([]*entity.Notification, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toEntity())
	}
	return result, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`
	if err := conn(ctx, r.db).GetContext(ctx, &count, query, userID); err != nil {
		return 0, mapError(err, nil, nil, "не удалось посчитать уведомления")
	}
	return count, nil
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, id, userID)
	if err != nil {
		return mapError(err, nil, nil, "не удалось обновить уведомление")
	}
	return expectOne(res, apperror.ErrNotificationNotFound)
}

func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`
	if _, err := conn(ctx, r.db).ExecContext(ctx, query, userID); err != nil {
		return mapError(err, nil, nil, "не удалось обновить уведомления")
	}
	return nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query := `DELETE FROM notifications WHERE id = $1 AND user_id = $2`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, id, userID)
	if err != nil {
		return mapError(err, nil, nil, "не удалось удалить уведомление")
	}
	return expectOne(res, apperror.ErrNotificationNotFound)
}

type notificationRow struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Type      string    `db:"type"`
	Title     string    `db:"title"`
	Message   string    `db:"message"`
	Link      string    `db:"link"`
	IsRead    bool      `db:"is_read"`
	CreatedAt time.Time `db:"created_at"`
}

func (n *notificationRow) toEntity() *entity.Notification {
	return &entity.Notification{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      valueobject.NotificationType(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

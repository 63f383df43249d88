// Package notify доставляет уведомления пользователям: сохраняет их,
// отправляет в websocket и публикует событие в Kafka.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/repository"
	"github.com/ignatzorin/cargolink-backend/internal/goroutine"
	"github.com/ignatzorin/cargolink-backend/internal/infrastructure/kafka"
	"github.com/ignatzorin/cargolink-backend/internal/logger"
	"github.com/ignatzorin/cargolink-backend/internal/metrics"
)

const defaultTimeout = 5 * time.Second

// Broadcaster отправляет уведомление в открытые websocket-соединения пользователя.
type Broadcaster interface {
	Notification(userID uuid.UUID, notification *entity.Notification) error
}

// Event - сообщение в топике уведомлений.
type Event struct {
	NotificationID uuid.UUID                      `json:"notificationId"`
	UserID         uuid.UUID                      `json:"userId"`
	Payload        repository.NotificationPayload `json:"payload"`
	CreatedAt      time.Time                      `json:"createdAt"`
}

type Dispatcher struct {
	notifications repository.NotificationRepository
	broadcaster   Broadcaster
	publisher     kafka.Publisher
	runner        *goroutine.RecoveryHandler
	timeout       time.Duration
}

var _ repository.Notifier = (*Dispatcher)(nil)

func NewDispatcher(
	notifications repository.NotificationRepository,
	broadcaster Broadcaster,
	publisher kafka.Publisher,
	runner *goroutine.RecoveryHandler,
) *Dispatcher {
	if publisher == nil {
		publisher = kafka.NoopPublisher{}
	}
	return &Dispatcher{
		notifications: notifications,
		broadcaster:   broadcaster,
		publisher:     publisher,
		runner:        runner,
		timeout:       defaultTimeout,
	}
}

// Deliver ставит доставку в фон и сразу возвращает управление. Контекст запроса
// не используется: доставка переживает завершение HTTP-запроса.
func (d *Dispatcher) Deliver(_ context.Context, userID uuid.UUID, payload repository.NotificationPayload) {
	d.runner.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		d.deliver(ctx, userID, payload)
	})
}

func (d *Dispatcher) deliver(ctx context.Context, userID uuid.UUID, payload repository.NotificationPayload) {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id": userID,
		"type":    payload.Type,
	})

	n := &entity.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      payload.Type,
		Title:     payload.Title,
		Message:   payload.Message,
		Link:      payload.Link,
		CreatedAt: time.Now(),
	}
	if err := d.notifications.Create(ctx, n); err != nil {
		record("store", err)
		log.WithError(err).Warn("notify: не удалось сохранить уведомление")
		return
	}
	record("store", nil)

	err := d.broadcaster.Notification(userID, n)
	record("websocket", err)
	if err != nil {
		log.WithError(err).Warn("notify: не удалось отправить уведомление в websocket")
	}

	err = d.publisher.Publish(ctx, userID.String(), Event{
		NotificationID: n.ID,
		UserID:         userID,
		Payload:        payload,
		CreatedAt:      n.CreatedAt,
	})
	record("kafka", err)
	if err != nil {
		log.WithError(err).Warn("notify: не удалось опубликовать событие в kafka")
	}
}

func record(channel string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.NotificationsDeliveredTotal.WithLabelValues(channel, result).Inc()
}

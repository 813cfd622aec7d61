package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/senyabanana/lawyer-service/internal/events"
	"github.com/senyabanana/lawyer-service/internal/models"

	"go.uber.org/zap"
)

// now возвращает текущее время в UTC. Подменяется в тестах.
var now = func() time.Time { return time.Now().UTC() }

// notifier публикует события после фиксации транзакции.
type notifier struct {
	publisher events.Publisher
	logger    *zap.Logger
}

func newNotifier(publisher events.Publisher, logger *zap.Logger) notifier {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return notifier{publisher: publisher, logger: logger}
}

// notify не влияет на результат операции: ошибка публикации только пишется в лог.
func (n notifier) notify(ctx context.Context, eventType string, payload map[string]string) {
	event := events.Event{Type: eventType, OccurredAt: now(), Payload: payload}
	if err := n.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		n.logger.Warn("event publish failed", zap.String("event", eventType), zap.Error(err))
	}
}

// fail пропускает типизированные ошибки как есть, остальные пишет в лог и оборачивает.
func (n notifier) fail(op string, err error) error {
	var errorResponse *models.ErrorResponse
	if errors.As(err, &errorResponse) {
		return errorResponse
	}
	n.logger.Error("store failure", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}

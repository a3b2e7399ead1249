package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/queuedesk/queue-service/internal/events"
	apperrors "github.com/queuedesk/queue-service/pkg/util"
)

// NowServingKey is the Redis hash holding the display board, one field per service.
const NowServingKey = "queue:now-serving"

// Broadcaster is the subset of the Redis client the notification service needs.
type Broadcaster interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

// NowServing is one display board entry: the last ticket called for a service.
type NowServing struct {
	ServiceID    int64     `json:"serviceId"`
	TicketID     int64     `json:"ticketId"`
	TicketNumber int       `json:"ticketNumber"`
	CounterID    *int64    `json:"counterId,omitempty"`
	CalledAt     time.Time `json:"calledAt"`
}

// NotificationService fans queue events out over Redis and keeps the display board.
type NotificationService struct {
	dispatcher events.Dispatcher
	redis      Broadcaster
	channel    string
	logger     *zap.Logger
}

// NewNotificationService creates the service. A nil broadcaster only logs events.
func NewNotificationService(dispatcher events.Dispatcher, broadcaster Broadcaster, channel string, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		redis:      broadcaster,
		channel:    channel,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to every ticket event.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range events.TicketEvents {
		n.dispatcher.Subscribe(eventType, n.handleTicketEvent)
	}
	n.dispatcher.Subscribe(events.EventTicketCalled, n.handleTicketCalled)
}

func (n *NotificationService) handleTicketEvent(ctx context.Context, event events.Event) error {
	n.logger.Debug("queue event",
		zap.String("type", string(event.Type)),
		zap.Int64("ticket_id", event.TicketID),
		zap.String("status", string(event.Ticket.Status)))
	if n.redis == nil || n.channel == "" {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := n.redis.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

func (n *NotificationService) handleTicketCalled(ctx context.Context, event events.Event) error {
	if n.redis == nil {
		return nil
	}

	entry := NowServing{
		ServiceID:    event.Ticket.ServiceID,
		TicketID:     event.Ticket.ID,
		TicketNumber: event.Ticket.TicketNumber,
		CounterID:    event.Ticket.CounterID,
		CalledAt:     event.Timestamp,
	}
	value, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	field := strconv.FormatInt(entry.ServiceID, 10)
	if err := n.redis.HSet(ctx, NowServingKey, field, value).Err(); err != nil {
		return fmt.Errorf("update display board: %w", err)
	}
	return nil
}

// NowServing reads the display board ordered by service.
func (n *NotificationService) NowServing(ctx context.Context) ([]NowServing, error) {
	board := []NowServing{}
	if n.redis == nil {
		return board, nil
	}

	fields, err := n.redis.HGetAll(ctx, NowServingKey).Result()
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	for field, raw := range fields {
		var entry NowServing
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			n.logger.Warn("skipping malformed display board entry", zap.String("service", field), zap.Error(err))
			continue
		}
		board = append(board, entry)
	}
	sort.Slice(board, func(i, j int) bool { return board[i].ServiceID < board[j].ServiceID })
	return board, nil
}

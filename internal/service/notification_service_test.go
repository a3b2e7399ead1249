package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queuedesk/queue-service/internal/domain"
	"github.com/queuedesk/queue-service/internal/events"
	"github.com/queuedesk/queue-service/internal/observability"
	"github.com/queuedesk/queue-service/internal/repository/memory"
	apperrors "github.com/queuedesk/queue-service/pkg/util"
)

type fakeRedis struct {
	mu        sync.Mutex
	published map[string][]string
	hashes    map[string]map[string]string
	failWith  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{published: map[string][]string{}, hashes: map[string]map[string]string{}}
}

func (f *fakeRedis) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return redis.NewIntResult(0, f.failWith)
	}
	f.published[channel] = append(f.published[channel], string(message.([]byte)))
	return redis.NewIntResult(1, nil)
}

func (f *fakeRedis) HSet(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return redis.NewIntResult(0, f.failWith)
	}
	if f.hashes[key] == nil {
		f.hashes[key] = map[string]string{}
	}
	for i := 0; i+1 < len(values); i += 2 {
		f.hashes[key][values[i].(string)] = string(values[i+1].([]byte))
	}
	return redis.NewIntResult(int64(len(values)/2), nil)
}

func (f *fakeRedis) HGetAll(_ context.Context, key string) *redis.MapStringStringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return redis.NewMapStringStringResult(nil, f.failWith)
	}
	out := map[string]string{}
	for k, v := range f.hashes[key] {
		out[k] = v
	}
	return redis.NewMapStringStringResult(out, nil)
}

func TestNotificationServiceMaintainsBoard(t *testing.T) {
	ctx := context.Background()
	dispatcher := events.NewInMemoryDispatcher()
	fake := newFakeRedis()
	notifier := NewNotificationService(dispatcher, fake, "queue:events", nil)
	notifier.RegisterHandlers()

	queue := NewQueueService(QueueDependencies{
		Tickets:    memory.NewStore().Repositories().Tickets,
		Dispatcher: dispatcher,
		Metrics:    observability.NewMetrics(),
	})

	for _, serviceID := range []int64{2, 1, 1} {
		ticket, err := queue.CreateTicket(ctx, nil, CreateTicketInput{CustomerName: "P", ServiceID: serviceID})
		require.NoError(t, err)
		_, err = queue.ActivateTicket(ctx, nil, ticket.ID)
		require.NoError(t, err)
	}
	_, err := queue.CallNextTicket(ctx, CallNextInput{CounterID: 3, ServiceID: 1})
	require.NoError(t, err)
	_, err = queue.CallNextTicket(ctx, CallNextInput{CounterID: 4, ServiceID: 1})
	require.NoError(t, err)
	_, err = queue.CallNextTicket(ctx, CallNextInput{CounterID: 5, ServiceID: 2})
	require.NoError(t, err)

	board, err := notifier.NowServing(ctx)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.EqualValues(t, 1, board[0].ServiceID)
	assert.Equal(t, 2, board[0].TicketNumber)
	require.NotNil(t, board[0].CounterID)
	assert.EqualValues(t, 4, *board[0].CounterID)
	assert.EqualValues(t, 2, board[1].ServiceID)

	// 3 creates, 3 activations, 3 calls
	published := fake.published["queue:events"]
	require.Len(t, published, 9)
	var first events.Event
	require.NoError(t, json.Unmarshal([]byte(published[0]), &first))
	assert.Equal(t, events.EventTicketCreated, first.Type)
	assert.Equal(t, domain.TicketStatusPending, first.Ticket.Status)
}

func TestNotificationServiceWithoutRedis(t *testing.T) {
	notifier := NewNotificationService(events.NewInMemoryDispatcher(), nil, "queue:events", nil)
	notifier.RegisterHandlers()

	board, err := notifier.NowServing(context.Background())
	require.NoError(t, err)
	assert.Empty(t, board)

	err = notifier.handleTicketEvent(context.Background(), events.Event{Type: events.EventTicketCreated})
	assert.NoError(t, err)
}

func TestNotificationServiceSurfacesRedisFailures(t *testing.T) {
	fake := newFakeRedis()
	fake.failWith = errors.New("connection refused")
	notifier := NewNotificationService(nil, fake, "queue:events", nil)

	err := notifier.handleTicketCalled(context.Background(), events.Event{Type: events.EventTicketCalled})
	assert.Error(t, err)

	_, err = notifier.NowServing(context.Background())
	assert.True(t, apperrors.IsCode(err, "STORE_ERROR"))
}

func TestNowServingSkipsMalformedEntries(t *testing.T) {
	fake := newFakeRedis()
	fake.hashes[NowServingKey] = map[string]string{"1": "{not json", "2": `{"serviceId":2,"ticketNumber":5}`}
	notifier := NewNotificationService(nil, fake, "", nil)

	board, err := notifier.NowServing(context.Background())
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, 5, board[0].TicketNumber)
}

package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/queuedesk/queue-service/internal/api/http/handlers"
	"github.com/queuedesk/queue-service/internal/auth"
	"github.com/queuedesk/queue-service/internal/config"
	"github.com/queuedesk/queue-service/internal/domain"
	"github.com/queuedesk/queue-service/internal/events"
	"github.com/queuedesk/queue-service/internal/observability"
	"github.com/queuedesk/queue-service/internal/repository/memory"
	"github.com/queuedesk/queue-service/internal/service"
)

type testServer struct {
	app    *fiber.App
	tokens *auth.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	repos := memory.NewStore().Repositories()
	dispatcher := events.NewInMemoryDispatcher()
	tokens := auth.NewTokenManager("test-secret", 60)

	queue := service.NewQueueService(service.QueueDependencies{
		Tickets:    repos.Tickets,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	notifier := service.NewNotificationService(dispatcher, nil, "", logger)
	notifier.RegisterHandlers()
	authService := service.NewAuthService(config.AuthConfig{BcryptCost: 4}, repos.Users, tokens, logger)
	admin := service.NewAdminService(repos.Services, repos.Counters, logger)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("queue-service", "test", nil),
		Tickets:        handlers.NewTicketsHandler(queue),
		Queue:          handlers.NewQueueHandler(queue, notifier),
		Auth:           handlers.NewAuthHandler(authService),
		Services:       handlers.NewServicesHandler(admin),
		Counters:       handlers.NewCountersHandler(admin),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
		Metrics:        metrics,
	})
	return &testServer{app: app, tokens: tokens}
}

func (s *testServer) token(t *testing.T, id int64, role domain.Role) string {
	t.Helper()
	signed, _, err := s.tokens.GenerateToken(id, role)
	require.NoError(t, err)
	return signed
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

type ticketBody struct {
	ID           int64   `json:"id"`
	TicketNumber int     `json:"ticketNumber"`
	Status       string  `json:"status"`
	CounterID    *int64  `json:"counterId"`
	UserID       *int64  `json:"userId"`
	ScannedAt    *string `json:"scannedAt"`
}

type errorBody struct {
	Message string         `json:"message"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details"`
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(data, &out), string(data))
	return out
}

func TestTicketFlowOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, fiber.MethodPost, "/tickets", map[string]any{"customerName": "Alice", "serviceId": 1}, "")
	require.Equal(t, fiber.StatusCreated, status, string(body))
	first := decode[ticketBody](t, body)
	assert.Equal(t, 1, first.TicketNumber)
	assert.Equal(t, "pending", first.Status)

	status, body = srv.do(t, fiber.MethodPost, "/api/tickets", map[string]any{"customerName": "Bob", "serviceId": 1}, "")
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, 2, decode[ticketBody](t, body).TicketNumber)

	status, body = srv.do(t, fiber.MethodPut, "/tickets/1/activate", nil, "")
	require.Equal(t, fiber.StatusOK, status, string(body))
	activated := decode[ticketBody](t, body)
	assert.Equal(t, "waiting", activated.Status)
	assert.NotNil(t, activated.ScannedAt)

	status, body = srv.do(t, fiber.MethodPost, "/tickets/next", map[string]any{"counterId": 7, "serviceId": 1}, "")
	require.Equal(t, fiber.StatusOK, status, string(body))
	called := decode[ticketBody](t, body)
	assert.Equal(t, first.ID, called.ID)
	assert.Equal(t, "serving", called.Status)
	require.NotNil(t, called.CounterID)
	assert.EqualValues(t, 7, *called.CounterID)

	status, body = srv.do(t, fiber.MethodPost, "/tickets/next", map[string]any{"counterId": 7, "serviceId": 1}, "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "no pending tickets", decode[errorBody](t, body).Message)

	status, body = srv.do(t, fiber.MethodGet, "/queue?serviceId=1", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]ticketBody](t, body), 1)

	status, body = srv.do(t, fiber.MethodGet, "/tickets", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]ticketBody](t, body), 2)

	staffToken := srv.token(t, 50, domain.RoleStaff)
	status, body = srv.do(t, fiber.MethodPut, "/tickets/1/complete", map[string]any{"counterId": 7}, staffToken)
	require.Equal(t, fiber.StatusOK, status, string(body))
	assert.Equal(t, "served", decode[ticketBody](t, body).Status)

	status, body = srv.do(t, fiber.MethodPut, "/tickets/1/no-show", nil, staffToken)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "CONFLICT", decode[errorBody](t, body).Code)
}

func TestTicketErrorsOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, fiber.MethodPut, "/tickets/999/activate", nil, "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", decode[errorBody](t, body).Code)

	status, body = srv.do(t, fiber.MethodPut, "/tickets/abc/activate", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", decode[errorBody](t, body).Code)

	status, body = srv.do(t, fiber.MethodPost, "/tickets", map[string]any{"serviceId": 1}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", decode[errorBody](t, body).Code)

	status, _ = srv.do(t, fiber.MethodPost, "/tickets/next", map[string]any{"serviceId": 1}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = srv.do(t, fiber.MethodGet, "/tickets/user", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", decode[errorBody](t, body).Code)

	status, body = srv.do(t, fiber.MethodGet, "/tickets/user", nil, "not-a-token")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_CREDENTIALS", decode[errorBody](t, body).Code)

	status, body = srv.do(t, fiber.MethodPut, "/tickets/1/complete", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", decode[errorBody](t, body).Code)

	status, _ = srv.do(t, fiber.MethodPut, "/tickets/1/complete", nil, srv.token(t, 1, domain.RoleCustomer))
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body = srv.do(t, fiber.MethodGet, "/nowhere", nil, "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", decode[errorBody](t, body).Code)
}

func TestOwnedTicketsOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.token(t, 1, domain.RoleCustomer)
	bob := srv.token(t, 2, domain.RoleCustomer)

	status, body := srv.do(t, fiber.MethodPost, "/tickets", map[string]any{"customerName": "Alice", "serviceId": 3}, alice)
	require.Equal(t, fiber.StatusCreated, status)
	ticket := decode[ticketBody](t, body)
	require.NotNil(t, ticket.UserID)
	assert.EqualValues(t, 1, *ticket.UserID)

	status, _ = srv.do(t, fiber.MethodPut, "/tickets/1/activate", nil, bob)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body = srv.do(t, fiber.MethodGet, "/tickets/user", nil, alice)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]ticketBody](t, body), 1)

	status, body = srv.do(t, fiber.MethodGet, "/tickets/user", nil, bob)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, decode[[]ticketBody](t, body))
}

func TestAuthOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	register := map[string]any{"email": "staff@example.com", "password": "pw", "fullName": "Sam", "role": "staff"}
	status, body := srv.do(t, fiber.MethodPost, "/auth/register", register, "")
	require.Equal(t, fiber.StatusOK, status, string(body))
	user := decode[map[string]any](t, body)
	assert.Equal(t, "staff", user["role"])
	assert.NotContains(t, user, "passwordHash")

	status, _ = srv.do(t, fiber.MethodPost, "/auth/register", register, "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = srv.do(t, fiber.MethodPost, "/api/auth/login", map[string]any{"email": "staff@example.com", "password": "pw"}, "")
	require.Equal(t, fiber.StatusOK, status, string(body))
	login := decode[struct {
		Token string `json:"token"`
	}](t, body)
	claims, err := srv.tokens.ParseToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, claims.Role)

	status, body = srv.do(t, fiber.MethodPost, "/auth/login", map[string]any{"email": "staff@example.com", "password": "nope"}, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_CREDENTIALS", decode[errorBody](t, body).Code)
}

func TestCatalogOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.token(t, 1, domain.RoleAdmin)
	customer := srv.token(t, 2, domain.RoleCustomer)

	status, _ := srv.do(t, fiber.MethodPost, "/services", map[string]any{"name": "Cards"}, customer)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body := srv.do(t, fiber.MethodPost, "/services", map[string]any{"name": "Cards", "averageServiceTime": 4}, admin)
	require.Equal(t, fiber.StatusCreated, status, string(body))
	svc := decode[map[string]any](t, body)
	assert.Equal(t, "Cards", svc["name"])

	status, body = srv.do(t, fiber.MethodPut, "/services/1", map[string]any{"description": "Debit and credit"}, admin)
	require.Equal(t, fiber.StatusOK, status, string(body))
	assert.Equal(t, "Debit and credit", decode[map[string]any](t, body)["description"])

	status, body = srv.do(t, fiber.MethodPost, "/counters", map[string]any{"name": "Desk 1"}, admin)
	require.Equal(t, fiber.StatusCreated, status, string(body))

	status, body = srv.do(t, fiber.MethodPut, "/counters/1/assign-service", map[string]any{"serviceId": 1}, admin)
	require.Equal(t, fiber.StatusOK, status, string(body))
	assert.EqualValues(t, 1, decode[map[string]any](t, body)["serviceId"])

	status, body = srv.do(t, fiber.MethodGet, "/counters", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]map[string]any](t, body), 1)

	status, _ = srv.do(t, fiber.MethodDelete, "/services/1", nil, admin)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = srv.do(t, fiber.MethodDelete, "/services/1", nil, admin)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body = srv.do(t, fiber.MethodGet, "/services", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, decode[[]map[string]any](t, body))
}

func TestOpsEndpoints(t *testing.T) {
	srv := newTestServer(t)

	status, _ := srv.do(t, fiber.MethodGet, "/health/live", nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = srv.do(t, fiber.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, fiber.StatusOK, status)

	status, body := srv.do(t, fiber.MethodGet, "/queue/now-serving", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, "[]", string(body))

	srv.do(t, fiber.MethodPost, "/tickets", map[string]any{"customerName": "Z", "serviceId": 1}, "")
	status, body = srv.do(t, fiber.MethodGet, "/metrics", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), "queue_tickets_created_total 1")
}

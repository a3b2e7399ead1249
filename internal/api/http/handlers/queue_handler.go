package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/queuedesk/queue-service/internal/api/dto"
	"github.com/queuedesk/queue-service/internal/service"
	apperrors "github.com/queuedesk/queue-service/pkg/util"
)

// QueueHandler serves the live queue and the display board.
type QueueHandler struct {
	queue *service.QueueService
	board *service.NotificationService
}

func NewQueueHandler(queue *service.QueueService, board *service.NotificationService) *QueueHandler {
	return &QueueHandler{queue: queue, board: board}
}

// Queue GET /queue?serviceId=.
func (h *QueueHandler) Queue(c *fiber.Ctx) error {
	var serviceID *int64
	if raw := c.Query("serviceId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return apperrors.NewValidationError("invalid serviceId", map[string]any{"serviceId": raw})
		}
		serviceID = &id
	}

	tickets, err := h.queue.ListQueue(c.UserContext(), serviceID)
	if err != nil {
		return err
	}
	return c.JSON(dto.Tickets(tickets))
}

// NowServing GET /queue/now-serving.
func (h *QueueHandler) NowServing(c *fiber.Ctx) error {
	board, err := h.board.NowServing(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(board)
}

package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/queuedesk/queue-service/internal/api/dto"
	"github.com/queuedesk/queue-service/internal/service"
)

// CountersHandler manages counters.
type CountersHandler struct {
	admin *service.AdminService
}

func NewCountersHandler(admin *service.AdminService) *CountersHandler {
	return &CountersHandler{admin: admin}
}

// List GET /counters.
func (h *CountersHandler) List(c *fiber.Ctx) error {
	counters, err := h.admin.ListCounters(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.Counters(counters))
}

// Create POST /counters.
func (h *CountersHandler) Create(c *fiber.Ctx) error {
	var req dto.CounterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	input := service.CounterInput{UserID: req.UserID, ServiceID: req.ServiceID}
	if req.Name != nil {
		input.Name = *req.Name
	}

	counter, err := h.admin.CreateCounter(c.UserContext(), caller(c), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.Counter(counter))
}

// Update PUT /counters/:id.
func (h *CountersHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CounterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	counter, err := h.admin.UpdateCounter(c.UserContext(), caller(c), id, service.CounterPatch{
		Name:      req.Name,
		UserID:    req.UserID,
		ServiceID: req.ServiceID,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.Counter(counter))
}

// AssignService PUT /counters/:id/assign-service.
func (h *CountersHandler) AssignService(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.AssignServiceRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	counter, err := h.admin.AssignServiceToCounter(c.UserContext(), caller(c), id, req.ServiceID)
	if err != nil {
		return err
	}
	return c.JSON(dto.Counter(counter))
}

// Delete DELETE /counters/:id.
func (h *CountersHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.admin.DeleteCounter(c.UserContext(), caller(c), id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "counter deleted"})
}

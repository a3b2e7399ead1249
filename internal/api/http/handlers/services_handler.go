package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/queuedesk/queue-service/internal/api/dto"
	"github.com/queuedesk/queue-service/internal/service"
)

// ServicesHandler manages the service catalog.
type ServicesHandler struct {
	admin *service.AdminService
}

func NewServicesHandler(admin *service.AdminService) *ServicesHandler {
	return &ServicesHandler{admin: admin}
}

// List GET /services.
func (h *ServicesHandler) List(c *fiber.Ctx) error {
	services, err := h.admin.ListServices(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.Services(services))
}

// Create POST /services.
func (h *ServicesHandler) Create(c *fiber.Ctx) error {
	var req dto.ServiceRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	input := service.ServiceInput{AverageServiceTime: req.AverageServiceTime}
	if req.Name != nil {
		input.Name = *req.Name
	}
	if req.Description != nil {
		input.Description = *req.Description
	}

	svc, err := h.admin.CreateService(c.UserContext(), caller(c), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.Service(svc))
}

// Update PUT /services/:id.
func (h *ServicesHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ServiceRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	svc, err := h.admin.UpdateService(c.UserContext(), caller(c), id, service.ServicePatch{
		Name:               req.Name,
		Description:        req.Description,
		AverageServiceTime: req.AverageServiceTime,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.Service(svc))
}

// Delete DELETE /services/:id.
func (h *ServicesHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.admin.DeleteService(c.UserContext(), caller(c), id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "service deleted"})
}

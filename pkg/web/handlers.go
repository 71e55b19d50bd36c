// Package web provides HTTP handlers for the ticket workflow API.
package web

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/workpoint/ticketflow/pkg/models"
	"github.com/workpoint/ticketflow/pkg/services"
)

type APIHandlers struct {
	ticketService        *services.Tickets
	actionService        *services.TicketActions
	functionalityService *services.Functionalities
	validator            *validator.Validate
}

func NewAPIHandlers(
	ticketService *services.Tickets,
	actionService *services.TicketActions,
	functionalityService *services.Functionalities,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		ticketService:        ticketService,
		actionService:        actionService,
		functionalityService: functionalityService,
		validator:            validator,
	}
}

// TicketAction advances a ticket through its workflow. The response shape
// follows the action endpoint contract: {error} on failure, {success, ticket}
// on success.
func (h *APIHandlers) TicketAction(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return actionBadRequest(c, "Ticket ID is required")
	}

	var req TicketActionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return actionBadRequest(c, "Invalid JSON format")
	}

	if req.Action == "" {
		return actionBadRequest(c, "action is required")
	}

	if req.PerformedBy.UserID == "" {
		return actionBadRequest(c, "performedBy.userId is required")
	}

	ticket, err := h.actionService.Execute(c.Context(), id, req.ToServiceRequest())
	if err != nil {
		return handleActionError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"ticket":  NewTicketSummary(ticket),
	})
}

func (h *APIHandlers) GetTicket(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Ticket ID is required")
	}

	ticket, err := h.ticketService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(ticket)
}

func (h *APIHandlers) GetTickets(c fiber.Ctx) error {
	status := models.TicketStatus(c.Query("status"))

	tickets, err := h.ticketService.List(c.Context(), status)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"tickets":     tickets,
		"total_count": len(tickets),
	})
}

func (h *APIHandlers) RaiseTicket(c fiber.Ctx) error {
	var req RaiseTicketRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	ticket, err := h.ticketService.Raise(c.Context(), services.RaiseTicketRequest{
		Title:           req.Title,
		Description:     req.Description,
		Department:      req.Department,
		FunctionalityID: req.FunctionalityID,
		RaisedBy:        models.Actor{UserID: req.RaisedBy.UserID, Name: req.RaisedBy.Name},
		FormData:        req.FormData,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(ticket)
}

func (h *APIHandlers) GetFunctionality(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Functionality ID is required")
	}

	functionality, err := h.functionalityService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(functionality)
}

func (h *APIHandlers) GetFunctionalities(c fiber.Ctx) error {
	functionalities, err := h.functionalityService.List(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"functionalities": functionalities,
		"total_count":     len(functionalities),
	})
}

func (h *APIHandlers) SaveFunctionality(c fiber.Ctx) error {
	var req SaveFunctionalityRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	saved, err := h.functionalityService.Save(c.Context(), &models.Functionality{
		ID:          req.ID,
		Name:        req.Name,
		Department:  req.Department,
		Description: req.Description,
		Graph:       req.Graph,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(saved)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.ticketService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Ticketflow API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "Ticketflow API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

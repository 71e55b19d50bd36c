package web

import (
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
	"github.com/workpoint/ticketflow/pkg/persistence"
	"github.com/workpoint/ticketflow/pkg/services"
)

// The action endpoint has a fixed error shape consumed by existing clients:
// a bare {"error": "..."} object, plus "details" on internal failures.

func actionBadRequest(c fiber.Ctx, detail string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": detail})
}

func actionNotFound(c fiber.Ctx, detail string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": detail})
}

func actionInternalError(c fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "Internal server error",
		"details": err.Error(),
	})
}

// handleActionError maps service errors onto the action endpoint contract.
func handleActionError(c fiber.Ctx, err error) error {
	switch {
	case services.IsValidationError(err):
		return actionBadRequest(c, err.Error())
	case persistence.IsTicketNotFound(err):
		return actionNotFound(c, "Ticket not found")
	case persistence.IsFunctionalityNotFound(err):
		return actionNotFound(c, "Functionality not found")
	default:
		return actionInternalError(c, err)
	}
}

// Management endpoints use RFC 7807 problem documents.

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleServiceError provides typed error handling for management endpoints.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case services.IsValidationError(err):
		return badRequest(c, err.Error())
	case persistence.IsTicketNotFound(err):
		return notFound(c, "ticket not found")
	case persistence.IsFunctionalityNotFound(err):
		return notFound(c, "functionality not found")
	default:
		return internalError(c, err)
	}
}

// Package main provides the Ticketflow API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/workpoint/ticketflow/pkg/assignment"
	"github.com/workpoint/ticketflow/pkg/attachments"
	"github.com/workpoint/ticketflow/pkg/directory"
	"github.com/workpoint/ticketflow/pkg/eventbus"
	"github.com/workpoint/ticketflow/pkg/notification"
	"github.com/workpoint/ticketflow/pkg/persistence"
	"github.com/workpoint/ticketflow/pkg/services"
	"github.com/workpoint/ticketflow/pkg/web"
	"go.opentelemetry.io/otel/trace"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	directory   directory.Directory
	uploadsDir  string
	tracer      trace.Tracer
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	dir directory.Directory,
	uploadsDir string,
	tracer trace.Tracer,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		eventBus:    eventBus,
		directory:   dir,
		uploadsDir:  uploadsDir,
		tracer:      tracer,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	resolver := assignment.NewResolver(a.directory)
	store := attachments.NewDiskStore(a.uploadsDir, a.logger)
	dispatcher := notification.NewEventDispatcher(a.eventBus)

	ticketService := services.NewTickets(a.persistence, resolver, dispatcher, a.logger)
	actionService := services.NewTicketActions(a.persistence, resolver, store, dispatcher, a.logger)
	functionalityService := services.NewFunctionalities(a.persistence)

	if a.tracer != nil {
		actionService = actionService.WithTracer(a.tracer)
	}

	handlers := web.NewAPIHandlers(ticketService, actionService, functionalityService, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Ticketflow API")
	})

	t := app.Group("/tickets")
	t.Get("/", handlers.GetTickets)
	t.Post("/", handlers.RaiseTicket)
	t.Get("/:id", handlers.GetTicket)
	t.Post("/:id/actions", handlers.TicketAction)

	f := app.Group("/functionalities")
	f.Get("/", handlers.GetFunctionalities)
	f.Post("/", handlers.SaveFunctionality)
	f.Get("/:id", handlers.GetFunctionality)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}

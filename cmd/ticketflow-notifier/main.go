package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"
	"github.com/workpoint/ticketflow/pkg/cmd"
	"github.com/workpoint/ticketflow/pkg/log"
	"github.com/workpoint/ticketflow/pkg/notification"
)

const serviceName = "ticketflow-notifier"

func main() {
	command := &cli.Command{
		Name:                  serviceName,
		Usage:                 "Deliver ticket workflow notifications",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "notifier-id",
				Aliases: []string{"id"},
				Usage:   "Custom notifier ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("NOTIFIER_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (file:// or postgres://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:     "event-bus",
				Usage:    "Event bus provider (kafka, gochannel)",
				Required: true,
				Sources:  cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "reminder-schedule",
				Usage:   "Cron schedule for the pending ticket reminder sweep",
				Value:   "0 9 * * *",
				Sources: cli.EnvVars("REMINDER_SCHEDULE"),
			},
			&cli.DurationFlag{
				Name:    "reminder-age",
				Usage:   "Minimum age before a pending ticket triggers a reminder",
				Value:   defaultReminderAge,
				Sources: cli.EnvVars("REMINDER_AGE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			notifierID := command.String("notifier-id")
			if notifierID == "" {
				notifierID = fmt.Sprintf("notifier-%s", uuid.New().String()[:8])
			}

			logger := log.WithModule("notifier").With("notifier_id", notifierID)

			logger.InfoContext(ctx, "Initializing Ticketflow Notifier")

			persistence := cmd.NewPersistence(ctx, logger, command.String("database-url"))

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), logger, serviceName)

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			notifier := NewNotifier(
				notifierID,
				persistence,
				eventBus,
				notification.NewLogSender(logger),
				command.String("reminder-schedule"),
				command.Duration("reminder-age"),
				logger,
			)

			notifier.Start(ctx)

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}

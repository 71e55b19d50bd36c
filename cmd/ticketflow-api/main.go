package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	cli "github.com/urfave/cli/v3"
	"github.com/workpoint/ticketflow/pkg/cmd"
	"github.com/workpoint/ticketflow/pkg/directory"
	"github.com/workpoint/ticketflow/pkg/log"
	"github.com/workpoint/ticketflow/pkg/otelhelper"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultPort     = 9080
	serviceName     = "ticketflow-api"
	defaultCacheTTL = 15 * 60 // seconds
)

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  serviceName,
		Usage:                 "Serve the ticket workflow API",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (file:// or postgres://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (kafka, gochannel)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for the display name cache (optional)",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "directory-file",
				Usage:   "Path to a JSON file mapping user ids to display names",
				Sources: cli.EnvVars("DIRECTORY_FILE"),
			},
			&cli.StringFlag{
				Name:    "uploads-dir",
				Usage:   "Directory where ticket attachments are stored",
				Value:   "./uploads",
				Sources: cli.EnvVars("UPLOADS_DIR"),
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

			logger.InfoContext(ctx, "Initializing Ticketflow API")

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

			dir, err := newDirectory(ctx, command, logger)
			if err != nil {
				return err
			}

			var tracer trace.Tracer
			if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" {
				tracer, err = otelhelper.NewTracer(ctx, serviceName)
				if err != nil {
					logger.WarnContext(ctx, "Failed to initialize tracer, continuing without tracing", "error", err)
				}
			}

			api := NewAPI(
				logger,
				persistence,
				eventBus,
				dir,
				command.String("uploads-dir"),
				tracer,
			)

			if err := api.Start(command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}

// newDirectory builds the display name directory, optionally fronted by a
// Redis cache when a redis-url is configured.
func newDirectory(ctx context.Context, command *cli.Command, logger *slog.Logger) (directory.Directory, error) {
	static, err := directory.NewStaticFromFile(command.String("directory-file"))
	if err != nil {
		return nil, err
	}

	redisURL := command.String("redis-url")
	if redisURL == "" {
		return static, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis-url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.WarnContext(ctx, "Redis unavailable, skipping display name cache", "error", err)

		return static, nil
	}

	return directory.NewRedisCache(client, static, defaultCacheTTL*time.Second, logger), nil
}

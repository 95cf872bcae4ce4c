package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/therealutkarshpriyadarshi/vidtube/internal/cache"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/config"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/database"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/logging"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/monitoring"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/queue"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/storage"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
	"github.com/urfave/cli/v3"
)

const checkTimeout = 5 * time.Second

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply the database schema",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "print", Usage: "Print the schema instead of applying it"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("print") {
				_, err := fmt.Fprintln(cmd.Root().Writer, database.Schema())
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			db, err := database.New(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			if err := db.Migrate(ctx); err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}
			fmt.Fprintln(cmd.Root().Writer, "✓ Schema applied")
			return nil
		},
	}
}

// check is one dependency probe of the health command
type check struct {
	name     string
	required bool
	run      func(ctx context.Context) error
}

// runChecks prints one line per check and fails if any required check failed
func runChecks(ctx context.Context, w io.Writer, checks []check) error {
	failed := 0
	for _, c := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := c.run(checkCtx)
		cancel()

		switch {
		case err == nil:
			fmt.Fprintf(w, "✓ %s\n", c.name)
		case c.required:
			failed++
			fmt.Fprintf(w, "✗ %s: %v\n", c.name, err)
		default:
			fmt.Fprintf(w, "! %s (optional): %v\n", c.name, err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d required dependencies unavailable", failed)
	}
	return nil
}

func healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check PostgreSQL, the media store, Redis and RabbitMQ",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			checks := []check{
				{name: "postgres", required: true, run: func(ctx context.Context) error {
					db, err := database.New(cfg.Database)
					if err != nil {
						return err
					}
					defer db.Close()
					return db.Health(ctx)
				}},
				{name: "media store", required: true, run: func(ctx context.Context) error {
					_, err := storage.New(ctx, cfg.Storage, logging.Nop())
					return err
				}},
				{name: "redis", run: func(ctx context.Context) error {
					c, err := cache.NewCache(cfg.Redis)
					if err != nil {
						return err
					}
					return c.Close()
				}},
				{name: "rabbitmq", run: func(ctx context.Context) error {
					q, err := queue.New(cfg.Queue)
					if err != nil {
						return err
					}
					return q.Close()
				}},
			}
			return runChecks(ctx, cmd.Root().Writer, checks)
		},
	}
}

func queueCommand() *cli.Command {
	return &cli.Command{
		Name:  "queue",
		Usage: "Show media cleanup queue depths",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			q, err := queue.New(cfg.Queue)
			if err != nil {
				return fmt.Errorf("failed to connect to queue: %w", err)
			}
			defer q.Close()

			if err := q.SetupDeadLetterQueue(); err != nil {
				return err
			}

			monitor := monitoring.NewMonitor(q, 0, nil)
			if err := monitor.Collect(); err != nil {
				return err
			}

			snap := monitor.Snapshot()
			w := cmd.Root().Writer
			fmt.Fprintf(w, "%-12s %d\n", "pending", snap.Pending)
			fmt.Fprintf(w, "%-12s %d\n", "dead-letter", snap.DeadLetter)
			fmt.Fprintf(w, "%-12s %s\n", "status", monitor.Health())
			for _, alert := range monitor.Alerts() {
				fmt.Fprintf(w, "! %s\n", alert)
			}
			return nil
		},
	}
}

// assetRef resolves a media URL or a bare public id to a public id
func assetRef(ref string) (string, error) {
	id, ok := storage.PublicIDFromURL(ref)
	if !ok {
		return "", fmt.Errorf("%q is not a media URL or public id", ref)
	}
	return id, nil
}

func deleteAssetCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete-asset",
		Usage:     "Delete a media object by URL or public id",
		ArgsUsage: "<url-or-public-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "kind", Value: string(models.MediaKindImage), Usage: "image or video"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one asset")
			}
			publicID, err := assetRef(cmd.Args().First())
			if err != nil {
				return err
			}

			kind := models.MediaKind(cmd.String("kind"))
			if kind != models.MediaKindImage && kind != models.MediaKindVideo {
				return fmt.Errorf("invalid kind %q", kind)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			logger, err := logging.NewLogger(logging.Config{Level: cfg.Logging.Level, Format: "console", Output: "stderr"})
			if err != nil {
				logger = logging.Nop()
			}

			stor, err := storage.New(ctx, cfg.Storage, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			if err := stor.Delete(ctx, publicID, kind); err != nil {
				return err
			}

			fmt.Fprintf(cmd.Root().Writer, "✓ Deleted %s\n", publicID)
			return nil
		},
	}
}

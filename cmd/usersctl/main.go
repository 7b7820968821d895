// Command usersctl manages the studio user directory from the command line:
// schema migrations, admin accounts, CSV imports and exports.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/StudioUsers/internal/config"
	"github.com/JonMunkholm/StudioUsers/internal/core"
	"github.com/JonMunkholm/StudioUsers/internal/database"
	"github.com/JonMunkholm/StudioUsers/internal/events"
	"github.com/JonMunkholm/StudioUsers/internal/logging"
)

// cliActor is recorded as the actor of audit entries written by usersctl.
const cliActor = "usersctl"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	defer a.close()

	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if hint := core.FormatUserError(err); hint != "" {
			fmt.Fprintln(os.Stderr, hint)
		}
		return 1
	}
	return 0
}

// app holds what the subcommands share. Connections open lazily so that
// commands like "migrate" never build a service.
type app struct {
	envFile string

	cfg       *config.Config
	pool      *pgxpool.Pool
	publisher events.Publisher
	service   *core.Service
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "usersctl",
		Short:         "Manage the studio user directory",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file to load if present")

	root.AddCommand(
		newMigrateCmd(a),
		newAdminCmd(a),
		newImportCmd(a),
		newExportCmd(a),
	)
	return root
}

func (a *app) loadConfig() error {
	if err := godotenv.Load(a.envFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load %s: %w", a.envFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	slog.SetDefault(logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format))
	return nil
}

// open connects to the database and the broker and builds the service.
func (a *app) open(ctx context.Context) (*core.Service, error) {
	if a.service != nil {
		return a.service, nil
	}

	pool, err := database.Connect(ctx, a.cfg.Database)
	if err != nil {
		return nil, err
	}
	a.pool = pool

	publisher, err := events.Connect(a.cfg.Events)
	if err != nil {
		return nil, err
	}
	a.publisher = publisher

	a.service = core.NewService(core.NewPostgresStore(pool), a.cfg, core.WithPublisher(publisher))
	return a.service, nil
}

func (a *app) close() {
	if a.service != nil {
		a.service.Close()
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			slog.Warn("close publisher", "error", err)
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

// actorContext marks ctx so audit entries name the CLI as the actor.
func actorContext(ctx context.Context) context.Context {
	return core.ContextWithSession(ctx, core.Session{Username: cliActor})
}

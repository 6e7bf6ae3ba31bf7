package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"

	"airbnb-pricer/config"
	"airbnb-pricer/storage"
	"airbnb-pricer/utils"
)

// app carries what every subcommand needs.
type app struct {
	ctx    context.Context
	cfg    *config.Config
	logger *utils.Logger
}

func (a *app) command() *commander.Command {
	return &commander.Command{
		UsageLine: "pricer <command> [options]",
		Short:     "prepares Airbnb listing features and serves price predictions",
		Subcommands: []*commander.Command{
			a.prepCmd(),
			a.loadRawCmd(),
			a.importModelCmd(),
			a.serveCmd(),
		},
		Flag: *flag.NewFlagSet("pricer", flag.ExitOnError),
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := utils.NewLoggerWithConfig(utils.LogConfig{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{ctx: ctx, cfg: cfg, logger: logger}
	if err := a.command().Dispatch(os.Args[1:]); err != nil {
		logger.Error().Err(err).Strs("args", os.Args[1:]).Msg("[main] Command failed")
		stop()
		os.Exit(1)
	}
}

// splitList splits a comma separated flag value and drops blanks and duplicates.
func splitList(s string) []string {
	seen := utils.NewStringSet()
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" || seen.Contains(p) {
			continue
		}
		seen.Add(p)
		out = append(out, p)
	}
	return out
}

var errMissingFlag = errors.New("missing required option")

func requireFlag(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w -%s", errMissingFlag, name)
	}
	return nil
}

func (a *app) openPostgres() (*storage.PostgresStore, error) {
	store, err := storage.NewPostgresStore(a.ctx, storage.PostgresOptions{
		DSN:           a.cfg.DSN(),
		RawTable:      a.cfg.Postgres.RawTable,
		FeaturesTable: a.cfg.Postgres.FeaturesTable,
		Retry:         utils.RetryConfig{MaxAttempts: a.cfg.Postgres.MaxRetries, BaseDelay: 2 * time.Second},
		Logger:        a.logger.Component("postgres"),
	})
	if err != nil {
		a.logger.Error().Msg("[main] Make sure PostgreSQL is reachable (POSTGRES_HOST, POSTGRES_PORT)")
		return nil, err
	}
	return store, nil
}

func (a *app) openArtifacts() (*storage.ArtifactStore, error) {
	return storage.OpenArtifactStore(a.cfg.Artifacts.Dir, a.logger.Component("artifacts"))
}

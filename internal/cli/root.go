// Package cli implements the taskmanager command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"taskmanager/internal/config"
	"taskmanager/internal/controller"
	"taskmanager/internal/logging"
	"taskmanager/internal/storage"
)

// app bundles what every subcommand needs once the root command has run.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	store  storage.Store
	ctrl   *controller.Controller
	out    io.Writer

	closers []io.Closer
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
}

// newRootCommand builds the command tree. Output of the task commands goes to
// out; the returned app must be closed once the command has finished.
func newRootCommand(version string, out io.Writer) (*cobra.Command, *app) {
	a := &app{out: out}

	var (
		backend  string
		dbPath   string
		logLevel string
		envFile  string
	)

	root := &cobra.Command{
		Use:   "taskmanager",
		Short: "Manage a list of tasks with titles, descriptions and due dates",
		Long: `taskmanager keeps a single list of tasks in a document collection.

Tasks can be added, edited, completed, flagged and deleted from the command line,
or through the HTTP API started by "taskmanager serve".`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsStore(cmd) {
				return nil
			}
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("backend") {
				cfg.Backend = backend
			}
			if cmd.Flags().Changed("db") {
				cfg.DBPath = dbPath
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, closer, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
			if err != nil {
				return err
			}
			a.closers = append(a.closers, closer)

			store, err := openStore(cmd.Context(), cfg, logger)
			if err != nil {
				a.close()
				return err
			}
			a.closers = append(a.closers, store)

			a.cfg = cfg
			a.logger = logger
			a.store = store
			a.ctrl = controller.New(store, logger)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&backend, "backend", config.BackendSQLite, "Storage backend: sqlite, memory, firestore or mongo")
	root.PersistentFlags().StringVar(&dbPath, "db", "data/tasks.db", "Path to sqlite database file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file with configuration")

	root.AddCommand(newServeCommand(a))
	root.AddCommand(newListCommand(a))
	root.AddCommand(newAddCommand(a))
	root.AddCommand(newEditCommand(a))
	root.AddCommand(newToggleCommand(a))
	root.AddCommand(newCheckCommand(a))
	root.AddCommand(newRemoveCommand(a))
	root.AddCommand(newClearCommand(a))

	return root, a
}

// needsStore reports whether cmd works on tasks. Help and shell completion
// commands must not open a backend.
func needsStore(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return true
}

// Execute runs the root command.
func Execute(version string) error {
	root, a := newRootCommand(version, os.Stdout)
	defer a.close()

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

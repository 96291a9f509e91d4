// Package cli implements journalctl, the operator command line for the
// photo journal. It works directly against the configured backends, so it
// can inspect and repair a journal while the API is stopped.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"photojournal/internal/app"
	"photojournal/internal/config"
	"photojournal/internal/logging"
	"photojournal/internal/repository/blob"
	"photojournal/internal/service"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Opener connects the backends a command works on.
type Opener func(ctx context.Context, logger *slog.Logger) (*app.Backend, error)

// OpenConfigured opens the backends selected by the environment.
func OpenConfigured(ctx context.Context, logger *slog.Logger) (*app.Backend, error) {
	return app.Open(ctx, config.Load(), logger)
}

// env is shared by the subcommands of one invocation.
type env struct {
	opts *RootOptions
	open Opener
}

type services struct {
	entries     service.EntryService
	preferences service.PreferencesService
	close       func() error
}

// connect opens the backend and builds the services. Logs go to stderr only
// when --verbose is set, so that stdout stays parseable.
func (e *env) connect(cmd *cobra.Command) (*services, error) {
	w := io.Discard
	if e.opts.Verbose {
		w = cmd.ErrOrStderr()
	}
	logger := logging.New(w, nil)

	backend, err := e.open(cmd.Context(), logger)
	if err != nil {
		return nil, fmt.Errorf("open backend: %w", err)
	}
	repo := blob.NewEntryBlob(backend.KV, logger)
	return &services{
		entries:     service.NewEntryService(repo, backend.Photos, logger),
		preferences: service.NewPreferencesService(backend.KV),
		close:       backend.Close,
	}, nil
}

func (e *env) output(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: e.opts.Format, Writer: cmd.OutOrStdout()}
}

// NewRootCommand creates the root command for journalctl.
func NewRootCommand(open Opener) *cobra.Command {
	if open == nil {
		open = OpenConfigured
	}
	e := &env{opts: &RootOptions{}, open: open}

	cmd := &cobra.Command{
		Use:   "journalctl",
		Short: "Inspect and maintain the photo journal",
		Long:  "Operator tool for the photo journal: list, show and delete entries, and manage preferences.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, e.opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", e.opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true, // commands report through OutputFormatter; main prints the rest
	}

	cmd.PersistentFlags().BoolVarP(&e.opts.Verbose, "verbose", "v", false, "log backend activity to stderr")
	cmd.PersistentFlags().StringVar(&e.opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newListCommand(e))
	cmd.AddCommand(newShowCommand(e))
	cmd.AddCommand(newDeleteCommand(e))
	cmd.AddCommand(newClearCommand(e))
	cmd.AddCommand(newThemeCommand(e))

	return cmd
}

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"photojournal/internal/model"
	"photojournal/internal/service"
)

// run opens the backend, hands the services to fn and always closes it.
func (e *env) run(cmd *cobra.Command, fn func(*services, *OutputFormatter) error) error {
	out := e.output(cmd)
	svc, err := e.connect(cmd)
	if err != nil {
		_ = out.Error("BACKEND_UNAVAILABLE", err.Error())
		return WrapExitError(ExitCommandError, "backend unavailable", err)
	}
	defer svc.close()
	return fn(svc, out)
}

func newListCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List journal entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(svc *services, out *OutputFormatter) error {
				res, err := svc.entries.List(cmd.Context())
				if err != nil {
					_ = out.Error("INTERNAL_ERROR", err.Error())
					return WrapExitError(ExitFailure, "list entries", err)
				}
				return out.Success(res, func(w io.Writer) error {
					return writeEntryTable(w, res.Items)
				})
			})
		},
	}
}

func newShowCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(svc *services, out *OutputFormatter) error {
				entry, err := svc.entries.Get(cmd.Context(), args[0])
				switch {
				case errors.Is(err, service.ErrNotFound):
					_ = out.Error("NOT_FOUND", fmt.Sprintf("entry %s not found", args[0]))
					return WrapExitError(ExitFailure, "show entry", err)
				case err != nil:
					_ = out.Error("INTERNAL_ERROR", err.Error())
					return WrapExitError(ExitFailure, "show entry", err)
				}
				return out.Success(entry, func(w io.Writer) error {
					return writeEntry(w, entry)
				})
			})
		},
	}
}

type deleteResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

func newDeleteCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an entry and its photo",
		Long:  "Delete an entry and its photo. Deleting an id that is not in the journal succeeds and changes nothing.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(svc *services, out *OutputFormatter) error {
				if err := svc.entries.Delete(cmd.Context(), args[0]); err != nil {
					_ = out.Error("PERSISTENCE_FAILED", err.Error())
					return WrapExitError(ExitFailure, "delete entry", err)
				}
				return out.Success(deleteResult{ID: args[0], Deleted: true}, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Deleted %s\n", args[0])
					return err
				})
			})
		},
	}
}

type clearResult struct {
	Removed int `json:"removed"`
}

func newClearCommand(e *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every entry and photo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				out := e.output(cmd)
				_ = out.Error("CONFIRMATION_REQUIRED", "clear removes the whole journal; pass --yes to confirm")
				return WrapExitError(ExitCommandError, "clear not confirmed", nil)
			}
			return e.run(cmd, func(svc *services, out *OutputFormatter) error {
				ctx := cmd.Context()
				before, err := svc.entries.List(ctx)
				if err != nil {
					_ = out.Error("INTERNAL_ERROR", err.Error())
					return WrapExitError(ExitFailure, "clear entries", err)
				}
				if err := svc.entries.Clear(ctx); err != nil {
					_ = out.Error("PERSISTENCE_FAILED", err.Error())
					return WrapExitError(ExitFailure, "clear entries", err)
				}
				return out.Success(clearResult{Removed: before.Total}, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Removed %d %s\n", before.Total, plural(before.Total))
					return err
				})
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm removal of every entry")
	return cmd
}

func plural(n int) string {
	if n == 1 {
		return "entry"
	}
	return "entries"
}

func newThemeCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [on|off|toggle]",
		Short:     "Show or change the dark mode preference",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(svc *services, out *OutputFormatter) error {
				ctx := cmd.Context()
				var (
					prefs model.Preferences
					err   error
				)
				switch {
				case len(args) == 0:
					prefs, err = svc.preferences.Get(ctx)
				case args[0] == "toggle":
					prefs, err = svc.preferences.ToggleDarkMode(ctx)
				default:
					prefs, err = svc.preferences.SetDarkMode(ctx, args[0] == "on")
				}
				if err != nil {
					_ = out.Error("PERSISTENCE_FAILED", err.Error())
					return WrapExitError(ExitFailure, "theme", err)
				}
				return out.Success(prefs, func(w io.Writer) error {
					mode := "light"
					if prefs.DarkMode {
						mode = "dark"
					}
					_, err := fmt.Fprintf(w, "Theme: %s\n", mode)
					return err
				})
			})
		},
	}
}

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photojournal/internal/app"
	"photojournal/internal/kvstore"
	"photojournal/internal/model"
	"photojournal/internal/repository/blob"
	"photojournal/internal/service"
	"photojournal/internal/storage"
)

type fixture struct {
	backend *app.Backend
	opens   int
}

func newFixture(t *testing.T, entries ...model.Entry) *fixture {
	t.Helper()
	f := &fixture{backend: &app.Backend{KV: kvstore.NewMemory(), Photos: storage.NewMemory()}}
	repo := blob.NewEntryBlob(f.backend.KV, nil)
	// Insert prepends, so insert oldest first.
	for i := len(entries) - 1; i >= 0; i-- {
		require.NoError(t, repo.Insert(context.Background(), entries[i]))
		_, err := f.backend.Photos.Put(context.Background(), entries[i].Image, strings.NewReader("jpeg"), storage.PutObjectOptions{ContentType: "image/jpeg"})
		require.NoError(t, err)
	}
	return f
}

func (f *fixture) open(context.Context, *slog.Logger) (*app.Backend, error) {
	f.opens++
	return f.backend, nil
}

func execute(t *testing.T, open Opener, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

var (
	older = model.Entry{
		ID:        "0123456789abcdef0123456789abcdef",
		Image:     "photos/a.jpg",
		Location:  "Main St, Springfield",
		Timestamp: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	newer = model.Entry{
		ID:        "fedcba9876543210fedcba9876543210",
		Image:     "photos/b.jpg",
		Location:  model.UnknownLocation,
		Timestamp: time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC),
	}
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand(nil)
	require.NotNil(t, cmd)
	assert.Equal(t, "journalctl", cmd.Use)

	for _, name := range []string{"list", "show", "delete", "clear", "theme"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand(nil)

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	f := newFixture(t)
	_, err := execute(t, f.open, "list", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Zero(t, f.opens)
}

func TestList(t *testing.T) {
	t.Run("text newest first", func(t *testing.T) {
		f := newFixture(t, newer, older)
		out, err := execute(t, f.open, "list")
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 3)
		assert.True(t, strings.HasPrefix(lines[0], "ID"))
		assert.Contains(t, lines[1], newer.ID)
		assert.Contains(t, lines[2], older.ID)
		assert.Contains(t, lines[2], "Main St, Springfield")
	})

	t.Run("empty journal", func(t *testing.T) {
		f := newFixture(t)
		out, err := execute(t, f.open, "list")
		require.NoError(t, err)
		assert.Equal(t, "No entries yet.\n", out)
	})

	t.Run("json", func(t *testing.T) {
		f := newFixture(t, newer, older)
		out, err := execute(t, f.open, "list", "--format", "json")
		require.NoError(t, err)

		var resp struct {
			Status string                  `json:"status"`
			Data   service.EntryListResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, 2, resp.Data.Total)
		assert.Equal(t, []model.Entry{newer, older}, resp.Data.Items)
	})
}

func TestShow(t *testing.T) {
	f := newFixture(t, older)

	out, err := execute(t, f.open, "show", older.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "ID:        "+older.ID)
	assert.Contains(t, out, "Location:  Main St, Springfield")
	assert.Contains(t, out, "2024-05-01T09:00:00Z")

	out, err = execute(t, f.open, "show", newer.ID, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, errors.Is(err, service.ErrNotFound))
	assert.Contains(t, out, `"code":"NOT_FOUND"`)

	_, err = execute(t, f.open, "show")
	require.Error(t, err)
}

func TestDelete(t *testing.T) {
	f := newFixture(t, newer, older)

	out, err := execute(t, f.open, "delete", older.ID)
	require.NoError(t, err)
	assert.Equal(t, "Deleted "+older.ID+"\n", out)

	remaining, err := blob.NewEntryBlob(f.backend.KV, nil).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Entry{newer}, remaining)

	_, _, err = f.backend.Photos.Get(context.Background(), older.Image)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// an unknown id is a no-op
	_, err = execute(t, f.open, "delete", older.ID)
	require.NoError(t, err)
}

func TestClear(t *testing.T) {
	t.Run("requires confirmation", func(t *testing.T) {
		f := newFixture(t, older)
		out, err := execute(t, f.open, "clear")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, out, "CONFIRMATION_REQUIRED")
		assert.Zero(t, f.opens)
	})

	t.Run("removes everything", func(t *testing.T) {
		f := newFixture(t, newer, older)
		out, err := execute(t, f.open, "clear", "--yes", "--format", "json")
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":"ok","data":{"removed":2}}`, out)

		out, err = execute(t, f.open, "list")
		require.NoError(t, err)
		assert.Equal(t, "No entries yet.\n", out)

		_, _, err = f.backend.Photos.Get(context.Background(), newer.Image)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("empty journal", func(t *testing.T) {
		f := newFixture(t)
		out, err := execute(t, f.open, "clear", "-y")
		require.NoError(t, err)
		assert.Equal(t, "Removed 0 entries\n", out)
	})
}

func TestTheme(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		args []string
		want string
	}{
		{nil, "Theme: light\n"},
		{[]string{"on"}, "Theme: dark\n"},
		{nil, "Theme: dark\n"},
		{[]string{"toggle"}, "Theme: light\n"},
		{[]string{"toggle"}, "Theme: dark\n"},
		{[]string{"off"}, "Theme: light\n"},
	}
	for _, tt := range tests {
		out, err := execute(t, f.open, append([]string{"theme"}, tt.args...)...)
		require.NoError(t, err)
		assert.Equal(t, tt.want, out)
	}

	raw, err := f.backend.KV.Get(context.Background(), service.DarkModeKey)
	require.NoError(t, err)
	assert.Equal(t, "false", string(raw))

	_, err = execute(t, f.open, "theme", "blue")
	require.Error(t, err)
}

func TestBackendUnavailable(t *testing.T) {
	open := func(context.Context, *slog.Logger) (*app.Backend, error) {
		return nil, errors.New("connection refused")
	}
	out, err := execute(t, open, "list")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [BACKEND_UNAVAILABLE]: open backend: connection refused")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("boom")))
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "bad", nil)))
}

package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/illarion/billcycle/internal/config"
	"github.com/illarion/billcycle/internal/core"
	"github.com/illarion/billcycle/internal/milestone"
)

func testApp(password string) *App {
	return &App{
		Config: &config.Config{
			Password:  password,
			StorePath: config.DefaultStoreFile,
			LogLevel:  "warn",
			NoKeyring: true,
		},
		Log: zap.NewNop(),
	}
}

func TestGetPasswordFlagWins(t *testing.T) {
	app := testApp("from-env")

	password, source, err := app.GetPassword("from-flag", "", false)
	require.NoError(t, err)
	assert.Equal(t, SourceFlag, source)
	assert.Equal(t, []byte("from-flag"), password)
	assert.Equal(t, "from-env", app.Config.Password, "env password must stay untouched")
}

func TestGetPasswordFromEnvOnce(t *testing.T) {
	app := testApp("from-env")

	password, source, err := app.GetPassword("", "", false)
	require.NoError(t, err)
	assert.Equal(t, SourceEnv, source)
	assert.Equal(t, []byte("from-env"), password)
	assert.Empty(t, app.Config.Password)
}

func TestReadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cycle.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"salt":""}`), 0o600))

	data, err := ReadInput(path)
	require.NoError(t, err)
	assert.Equal(t, `{"salt":""}`, string(data))

	_, err = ReadInput(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseDates(t *testing.T) {
	dates := ParseDates([]string{"01/15/2025", "12/05/2024"})
	require.Len(t, dates, 2)
	assert.Equal(t, "2025-01-15", dates[0].Key())
	assert.Equal(t, "2024-12-05", dates[1].Key())
}

func TestCanRetry(t *testing.T) {
	assert.True(t, canRetry(SourceKeyring))
	assert.True(t, canRetry(SourceReused))
	assert.False(t, canRetry(SourceFlag))
	assert.False(t, canRetry(SourceEnv))
	assert.False(t, canRetry(SourcePrompt))
}

func TestOpenReusing(t *testing.T) {
	app := testApp("")
	tracker := core.NewEphemeral(zap.NewNop())
	ctx := context.Background()
	start := ParseDates([]string{"01/15/2025"})[0]

	res, err := tracker.Compute(ctx, start, []byte("shared"), true)
	require.NoError(t, err)
	open := func(pw []byte) (milestone.Set, error) {
		return tracker.Open(ctx, res.Output, pw)
	}

	reused := []byte("shared")
	set, password, source := app.OpenReusing(tracker, open, res.Output, reused, "")
	assert.Equal(t, SourceReused, source)
	assert.Equal(t, milestone.Compute(start), set)
	assert.Equal(t, reused, password)

	// The returned password is a copy the caller may clear
	password[0] = 0
	assert.Equal(t, []byte("shared"), reused)

	plain, err := tracker.Compute(ctx, start, nil, false)
	require.NoError(t, err)
	set, password, source = app.OpenReusing(tracker, func(pw []byte) (milestone.Set, error) {
		return tracker.Open(ctx, plain.Output, pw)
	}, plain.Output, reused, "")
	assert.Equal(t, SourceNone, source)
	assert.Nil(t, password)
	assert.Equal(t, milestone.Compute(start), set)
}

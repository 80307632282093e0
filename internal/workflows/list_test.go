package workflows

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigitkabak/aperium/internal/audit"
	aerrors "github.com/yigitkabak/aperium/internal/errors"
)

func TestList(t *testing.T) {
	env := newTestEnv(t, "debian")
	ctx := context.Background()

	for _, name := range []string{"dev-tools", "dev-fonts", "games"} {
		_, err := env.registry.Register(ctx, name, "h", "1.0.0")
		require.NoError(t, err)
	}

	all, err := List(ctx, ListOptions{Registry: env.registry})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	dev, err := List(ctx, ListOptions{Registry: env.registry, Pattern: "dev-*"})
	require.NoError(t, err)
	require.Len(t, dev, 2)
	assert.Equal(t, "dev-fonts", dev[0].Name)
	assert.Equal(t, "dev-tools", dev[1].Name)

	braces, err := List(ctx, ListOptions{Registry: env.registry, Pattern: "{games,dev-tools}"})
	require.NoError(t, err)
	assert.Len(t, braces, 2)

	_, err = List(ctx, ListOptions{Registry: env.registry, Pattern: "[dev"})
	assert.Error(t, err)
}

func TestForget(t *testing.T) {
	env := newTestEnv(t, "debian")
	ctx := context.Background()

	_, err := env.registry.Register(ctx, "demo", "h", "1.0.0")
	require.NoError(t, err)

	require.NoError(t, Forget(ctx, ForgetOptions{Registry: env.registry, Name: "demo"}))
	assert.False(t, env.registry.IsInstalled("demo", "h"))

	err = Forget(ctx, ForgetOptions{Registry: env.registry, Name: "demo"})
	assert.True(t, errors.Is(err, aerrors.ErrNotInstalled), "got %v", err)

	entries, err := audit.ReadEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.OutcomeForgotten, entries[0].Outcome)
}

func TestHistory(t *testing.T) {
	newTestEnv(t, "debian")
	ctx := context.Background()

	audit.Log(audit.Entry{Operation: "install", Package: "a", Outcome: audit.OutcomeInstalled})
	audit.Log(audit.Entry{Operation: "install", Package: "b", Outcome: audit.OutcomeInstalled})
	audit.Log(audit.Entry{Operation: "install", Package: "a", Outcome: audit.OutcomeSkipped})

	all, err := History(ctx, HistoryOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	onlyA, err := History(ctx, HistoryOptions{Package: "a"})
	require.NoError(t, err)
	assert.Len(t, onlyA, 2)

	last, err := History(ctx, HistoryOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, audit.OutcomeSkipped, last[0].Outcome)

	reversed, err := History(ctx, HistoryOptions{Reverse: true})
	require.NoError(t, err)
	assert.Equal(t, audit.OutcomeSkipped, reversed[0].Outcome)
	assert.Equal(t, "a", reversed[2].Package)
}

package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gennsing/internal/config"
)

func redirect(t *testing.T, input string) *bytes.Buffer {
	t.Helper()
	origIn, origOut, origErr := stdin, stdout, stderr
	out := &bytes.Buffer{}
	stdin, stdout, stderr = strings.NewReader(input), out, io.Discard
	t.Cleanup(func() {
		stdin, stdout, stderr = origIn, origOut, origErr
	})
	return out
}

func poolArgs(t *testing.T, command string, extra ...string) []string {
	t.Helper()
	base := t.TempDir()
	args := []string{command,
		"--path", filepath.Join(base, "pool"),
		"--out-dir", filepath.Join(base, "runs"),
		"--seed", "3",
		"--log-level", "error",
	}
	return append(args, extra...)
}

func TestRunRequiresKnownCommand(t *testing.T) {
	redirect(t, "")
	require.ErrorContains(t, run(context.Background(), nil), "missing command")
	require.ErrorContains(t, run(context.Background(), []string{"dance"}), "unknown command: dance")
}

func TestGamesCommand(t *testing.T) {
	out := redirect(t, "")
	require.NoError(t, run(context.Background(), []string{"games"}))
	require.Contains(t, out.String(), "trick\n")
}

func TestInitAndPool(t *testing.T) {
	out := redirect(t, "")
	args := poolArgs(t, "init")
	require.NoError(t, run(context.Background(), args))
	require.Contains(t, out.String(), "initialized game=trick store=file")
	require.Contains(t, out.String(), "brains=10")

	out.Reset()
	args[0] = "pool"
	require.NoError(t, run(context.Background(), args))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 10)
	require.True(t, strings.HasPrefix(lines[0], "1st"))
	require.True(t, strings.HasPrefix(lines[1], "2nd"))
}

func TestAutoplayThenInspect(t *testing.T) {
	out := redirect(t, "")
	ctx := context.Background()
	args := poolArgs(t, "autoplay", "--iterations", "2", "--store", "sqlite")
	dbPath := args[2]
	require.NoError(t, run(ctx, args))
	require.Contains(t, out.String(), "episodes=2")
	require.Contains(t, out.String(), "stop=iterations")
	require.Contains(t, out.String(), "output=")
	_, err := os.Stat(dbPath)
	require.NoError(t, err)

	common := append(append([]string(nil), args[1:9]...), "--store", "sqlite")

	out.Reset()
	require.NoError(t, run(ctx, append([]string{"runs"}, common...)))
	require.Contains(t, out.String(), "game=trick seed=3 episodes=2")

	out.Reset()
	require.NoError(t, run(ctx, append([]string{"export"}, common...)))
	require.True(t, strings.HasPrefix(out.String(), "name,opponent,wins,losses\n"))

	out.Reset()
	require.NoError(t, run(ctx, append([]string{"pool", "--json"}, common...)))
	require.Contains(t, out.String(), `"rank": 1`)
}

func TestLedgerAndKillNeedName(t *testing.T) {
	redirect(t, "")
	require.ErrorContains(t, run(context.Background(), poolArgs(t, "ledger")), "--name")
	require.ErrorContains(t, run(context.Background(), poolArgs(t, "kill")), "--name")
	require.Error(t, run(context.Background(), poolArgs(t, "kill", "--name", "nobody")))
}

func TestPlayCommand(t *testing.T) {
	out := redirect(t, strings.Repeat("0\n", 5))
	require.NoError(t, run(context.Background(), poolArgs(t, "play", "--name", "me")))
	require.Contains(t, out.String(), "standings:")
	require.Contains(t, out.String(), " me ")
}

func TestConfigCommandWritesEffectiveConfig(t *testing.T) {
	out := redirect(t, "")
	dir := t.TempDir()
	ini := filepath.Join(dir, "gennsing.ini")
	require.NoError(t, os.WriteFile(ini, []byte("[arena]\nbase_rate = 0.3\n"), 0o644))
	target := filepath.Join(dir, "effective.yaml")

	require.NoError(t, run(context.Background(), []string{"config", "--config", ini, "--store", "memory", "--file", target}))
	require.Contains(t, out.String(), "wrote "+target)

	cfg, err := config.Load(target)
	require.NoError(t, err)
	require.Equal(t, 0.3, cfg.Arena.BaseRate)
	require.Equal(t, "memory", cfg.Store.Kind)
}

func TestInvalidOverrideRejected(t *testing.T) {
	redirect(t, "")
	require.Error(t, run(context.Background(), poolArgs(t, "init", "--store", "redis")))
	require.Error(t, run(context.Background(), poolArgs(t, "init", "--log-format", "xml")))
}

func TestSplitNames(t *testing.T) {
	require.Nil(t, splitNames(" "))
	require.Equal(t, []string{"Ada", "Bo"}, splitNames("Ada, ,Bo"))
}

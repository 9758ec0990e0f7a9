package stats

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gennsing/internal/arena"
	"gennsing/internal/model"
)

func TestEpisodeWriterWritesHeaderOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run-1")
	w, err := NewEpisodeWriter(dir)
	require.NoError(t, err)
	require.Equal(t, dir, w.Dir())

	episodes := []arena.Episode{
		{RunID: "run-1", Iteration: 1, Players: "ann vs bob", Winner: "ann", Loser: "bob", Performance: 0.6, BestPerformance: 0.6, DurationMS: 12},
		{RunID: "run-1", Iteration: 2, Players: "ann vs cid", Winner: "cid", Loser: "ann", Performance: 0.5, BestPerformance: 0.6, Stall: 1, DurationMS: 9},
	}
	for _, e := range episodes {
		require.NoError(t, w.Write(e))
	}
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	data, err := os.ReadFile(filepath.Join(dir, episodesFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "run_id,iteration,players,winner,loser,performance,best_performance,stall,duration_ms", lines[0])

	got, err := ReadEpisodes(dir)
	require.NoError(t, err)
	require.Equal(t, episodes, got)
}

func TestNilEpisodeWriterDiscards(t *testing.T) {
	w, err := NewEpisodeWriter("")
	require.NoError(t, err)
	require.Nil(t, w)
	require.NoError(t, w.Write(arena.Episode{}))
	require.NoError(t, w.Close())
	require.Empty(t, w.Dir())
}

func TestWriteLedgers(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLedgers(&buf, []model.Ledger{
		{Name: "ann", Entries: []model.LedgerEntry{{Opponent: "bob", Wins: 2}, {Opponent: "cid", Losses: 0.5}}},
		{Name: "bob"},
	}))
	require.Equal(t, "name,opponent,wins,losses\nann,bob,2,0\nann,cid,0,0.5\n", buf.String())
}

func TestStandingsOrder(t *testing.T) {
	standings := Standings([]model.Ledger{
		{Name: "cid"},
		{Name: "bob", Entries: []model.LedgerEntry{{Opponent: "ann", Wins: 1, Losses: 1}}},
		{Name: "ann", Entries: []model.LedgerEntry{{Opponent: "bob", Wins: 3, Losses: 1}}},
		{Name: "dan", Entries: []model.LedgerEntry{{Opponent: "bob", Wins: 2, Losses: 2}}},
	})
	names := make([]string, len(standings))
	for i, s := range standings {
		names[i] = s.Name
	}
	require.Equal(t, []string{"ann", "dan", "bob", "cid"}, names)
	require.Equal(t, 0.75, standings[0].WinShare)
	require.Zero(t, standings[3].WinShare)
}

func TestRunIndex(t *testing.T) {
	dir := t.TempDir()
	entries, err := ListRunIndex(dir)
	require.NoError(t, err)
	require.Empty(t, entries)

	require.Error(t, AppendRunIndex(dir, RunIndexEntry{}))
	require.NoError(t, AppendRunIndex(dir, RunIndexEntry{RunID: "a", Game: "trick", CreatedAtUTC: "2026-01-01T00:00:00Z"}))
	require.NoError(t, AppendRunIndex(dir, RunIndexEntry{RunID: "b", Game: "trick", CreatedAtUTC: "2026-01-02T00:00:00Z"}))
	require.NoError(t, AppendRunIndex(dir, RunIndexEntry{RunID: "c", Game: "trick", CreatedAtUTC: "2026-01-02T00:00:00Z"}))
	require.NoError(t, AppendRunIndex(dir, RunIndexEntry{RunID: "a", Game: "trick", Episodes: 7, CreatedAtUTC: "2026-01-01T00:00:00Z"}))

	entries, err = ListRunIndex(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "c", entries[0].RunID)
	require.Equal(t, "b", entries[1].RunID)
	require.Equal(t, 7, entries[2].Episodes)
}

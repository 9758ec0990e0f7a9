package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const runIndexFile = "run_index.json"

type RunIndexEntry struct {
	RunID           string  `json:"run_id"`
	Game            string  `json:"game"`
	Episodes        int     `json:"episodes"`
	BestPerformance float64 `json:"best_performance"`
	StopReason      string  `json:"stop_reason"`
	LastWinner      string  `json:"last_winner,omitempty"`
	Seed            int64   `json:"seed"`
	CreatedAtUTC    string  `json:"created_at_utc"`
}

func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}
	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}
	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex returns recorded runs, newest first.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, runIndexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	// later appends win ties on equal timestamps
	order := make(map[string]int, len(entries))
	for i, entry := range entries {
		order[entry.RunID] = i
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].CreatedAtUTC == entries[j].CreatedAtUTC {
			return order[entries[i].RunID] > order[entries[j].RunID]
		}
		return entries[i].CreatedAtUTC > entries[j].CreatedAtUTC
	})
	return entries, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

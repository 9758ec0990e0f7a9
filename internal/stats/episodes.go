package stats

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"gennsing/internal/arena"
)

const episodesFile = "episodes.csv"

// EpisodeWriter appends session episodes to runDir/episodes.csv. A nil
// writer discards everything.
type EpisodeWriter struct {
	dir           string
	file          *os.File
	headerWritten bool
}

func NewEpisodeWriter(runDir string) (*EpisodeWriter, error) {
	if runDir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating run directory: %w", err)
	}
	f, err := os.Create(filepath.Join(runDir, episodesFile))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", episodesFile, err)
	}
	return &EpisodeWriter{dir: runDir, file: f}, nil
}

func (w *EpisodeWriter) Dir() string {
	if w == nil {
		return ""
	}
	return w.dir
}

func (w *EpisodeWriter) Write(e arena.Episode) error {
	if w == nil {
		return nil
	}
	records := []arena.Episode{e}
	if !w.headerWritten {
		if err := gocsv.Marshal(records, w.file); err != nil {
			return fmt.Errorf("writing episode: %w", err)
		}
		w.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, w.file); err != nil {
		return fmt.Errorf("writing episode: %w", err)
	}
	return nil
}

func (w *EpisodeWriter) Close() error {
	if w == nil || w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// ReadEpisodes loads the episodes of one run directory.
func ReadEpisodes(runDir string) ([]arena.Episode, error) {
	f, err := os.Open(filepath.Join(runDir, episodesFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var episodes []arena.Episode
	if err := gocsv.UnmarshalFile(f, &episodes); err != nil {
		return nil, fmt.Errorf("reading %s: %w", episodesFile, err)
	}
	return episodes, nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gennsing/internal/model"
)

const (
	brainsDir  = "brains"
	recordsDir = "records"
)

// FileStore keeps one text file per brain under root/brains and one per
// ledger under root/records. Writes go to a temporary file that is renamed
// over the old one.
type FileStore struct {
	root string
}

func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

func (s *FileStore) Root() string {
	return s.root
}

func (s *FileStore) Init(_ context.Context) error {
	if s.root == "" {
		return errors.New("file store root is required")
	}
	for _, dir := range []string{brainsDir, recordsDir} {
		if err := os.MkdirAll(filepath.Join(s.root, dir), 0o755); err != nil {
			return err
		}
	}
	return nil
}

func (s *FileStore) ListBrains(_ context.Context) ([]string, error) {
	return s.list(brainsDir)
}

func (s *FileStore) SaveBrain(_ context.Context, brain model.BrainRecord) error {
	if err := validName(brain.Name); err != nil {
		return err
	}
	return s.write(brainsDir, brain.Name, EncodeBrain(brain))
}

func (s *FileStore) GetBrain(_ context.Context, name string) (model.BrainRecord, bool, error) {
	data, ok, err := s.read(brainsDir, name)
	if err != nil || !ok {
		return model.BrainRecord{}, false, err
	}
	brain, err := DecodeBrain(name, data)
	if err != nil {
		return model.BrainRecord{}, false, err
	}
	return brain, true, nil
}

func (s *FileStore) DeleteBrain(_ context.Context, name string) error {
	if err := validName(name); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.root, brainsDir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("brain %s: %w", name, ErrNotFound)
	}
	return err
}

func (s *FileStore) ListLedgers(_ context.Context) ([]string, error) {
	return s.list(recordsDir)
}

func (s *FileStore) SaveLedger(_ context.Context, ledger model.Ledger) error {
	if err := validName(ledger.Name); err != nil {
		return err
	}
	return s.write(recordsDir, ledger.Name, EncodeLedger(ledger))
}

func (s *FileStore) GetLedger(_ context.Context, name string) (model.Ledger, bool, error) {
	data, ok, err := s.read(recordsDir, name)
	if err != nil || !ok {
		return model.Ledger{}, false, err
	}
	ledger, err := DecodeLedger(name, data)
	if err != nil {
		return model.Ledger{}, false, err
	}
	return ledger, true, nil
}

func (s *FileStore) DeleteLedger(_ context.Context, name string) error {
	if err := validName(name); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.root, recordsDir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (s *FileStore) list(dir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, dir))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	slices.Sort(names)
	return names, nil
}

func (s *FileStore) read(dir, name string) ([]byte, bool, error) {
	if err := validName(name); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(filepath.Join(s.root, dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *FileStore) write(dir, name string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Join(s.root, dir), "."+name+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.root, dir, name)); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}

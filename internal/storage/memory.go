package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"gennsing/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	brains      map[string]model.BrainRecord
	ledgers     map[string]model.Ledger
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	s.initialized = true
	s.brains = make(map[string]model.BrainRecord)
	s.ledgers = make(map[string]model.Ledger)
	return nil
}

func (s *MemoryStore) ListBrains(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(); err != nil {
		return nil, err
	}
	return sortedKeys(s.brains), nil
}

func (s *MemoryStore) SaveBrain(_ context.Context, brain model.BrainRecord) error {
	if err := validName(brain.Name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(); err != nil {
		return err
	}
	s.brains[brain.Name] = brain.Clone()
	return nil
}

func (s *MemoryStore) GetBrain(_ context.Context, name string) (model.BrainRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(); err != nil {
		return model.BrainRecord{}, false, err
	}
	brain, ok := s.brains[name]
	if !ok {
		return model.BrainRecord{}, false, nil
	}
	return brain.Clone(), true, nil
}

func (s *MemoryStore) DeleteBrain(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(); err != nil {
		return err
	}
	if _, ok := s.brains[name]; !ok {
		return fmt.Errorf("brain %s: %w", name, ErrNotFound)
	}
	delete(s.brains, name)
	return nil
}

func (s *MemoryStore) ListLedgers(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(); err != nil {
		return nil, err
	}
	return sortedKeys(s.ledgers), nil
}

func (s *MemoryStore) SaveLedger(_ context.Context, ledger model.Ledger) error {
	if err := validName(ledger.Name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(); err != nil {
		return err
	}
	s.ledgers[ledger.Name] = ledger.Clone()
	return nil
}

func (s *MemoryStore) GetLedger(_ context.Context, name string) (model.Ledger, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(); err != nil {
		return model.Ledger{}, false, err
	}
	ledger, ok := s.ledgers[name]
	if !ok {
		return model.Ledger{}, false, nil
	}
	return ledger.Clone(), true, nil
}

func (s *MemoryStore) DeleteLedger(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(); err != nil {
		return err
	}
	delete(s.ledgers, name)
	return nil
}

func (s *MemoryStore) check() error {
	if !s.initialized {
		return errors.New("store is not initialized")
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

package scape

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	ErrGameExists   = errors.New("game already registered")
	ErrGameNotFound = errors.New("game not found")
)

var registry = struct {
	mu sync.RWMutex
	m  map[string]Spec
}{
	m: make(map[string]Spec),
}

func Register(spec Spec) error {
	name := Normalize(spec.Name)
	if name == "" {
		return errors.New("game name is required")
	}
	if spec.New == nil {
		return fmt.Errorf("game %s: factory is required", name)
	}
	if spec.MinPlayers < 2 || spec.MaxPlayers < spec.MinPlayers {
		return fmt.Errorf("game %s: invalid player range %d-%d", name, spec.MinPlayers, spec.MaxPlayers)
	}
	spec.Name = name

	registry.mu.Lock()
	defer registry.mu.Unlock()
	if _, exists := registry.m[name]; exists {
		return fmt.Errorf("%w: %s", ErrGameExists, name)
	}
	registry.m[name] = spec
	return nil
}

func Lookup(name string) (Spec, error) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	spec, ok := registry.m[Normalize(name)]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %s", ErrGameNotFound, name)
	}
	return spec, nil
}

func Names() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	names := make([]string, 0, len(registry.m))
	for name := range registry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Normalize canonicalizes game names: lower case, dashes for separators.
func Normalize(name string) string {
	normalized := strings.TrimSpace(strings.ToLower(name))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	return strings.Trim(normalized, "-")
}

package arena

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"slices"
	"time"

	"gennsing/internal/agent"
	"gennsing/internal/nn"
	"gennsing/internal/storage"
)

type Option func(*Manager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(m *Manager) {
		if rng != nil {
			m.rng = rng
		}
	}
}

// Manager owns the persisted brain pool of one game: which names are alive,
// how the pool is refilled, and who gets eliminated. A Manager is not safe
// for concurrent use.
type Manager struct {
	store     storage.Store
	cfg       Config
	logger    *slog.Logger
	rng       *rand.Rand
	namespace []string
	inSpace   map[string]struct{}
	records   *Recordkeeper
}

// NewManager initializes the store and fills the pool to its minimum size
// with fresh brains.
func NewManager(ctx context.Context, store storage.Store, cfg Config, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("arena store is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Manager{
		store:   store,
		cfg:     cfg,
		logger:  slog.Default(),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		inSpace: make(map[string]struct{}, len(cfg.Names)),
		records: NewRecordkeeper(store, cfg.BaseRate),
	}
	for _, opt := range opts {
		opt(m)
	}
	for _, name := range cfg.Names {
		if _, dup := m.inSpace[name]; dup {
			continue
		}
		m.inSpace[name] = struct{}{}
		m.namespace = append(m.namespace, name)
	}

	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	if err := m.Fill(ctx, nil); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) Config() Config {
	return m.cfg
}

func (m *Manager) Records() *Recordkeeper {
	return m.records
}

func (m *Manager) Store() storage.Store {
	return m.store
}

// NamesUsed lists the stored brains whose names belong to the namespace.
// Brains stored under other names are ignored.
func (m *Manager) NamesUsed(ctx context.Context) ([]string, error) {
	stored, err := m.store.ListBrains(ctx)
	if err != nil {
		return nil, err
	}
	used := make([]string, 0, len(stored))
	for _, name := range stored {
		if _, ok := m.inSpace[name]; ok {
			used = append(used, name)
		}
	}
	slices.Sort(used)
	return used, nil
}

// NamesUnused is the namespace minus NamesUsed, in namespace order.
func (m *Manager) NamesUnused(ctx context.Context) ([]string, error) {
	used, err := m.NamesUsed(ctx)
	if err != nil {
		return nil, err
	}
	taken := toSet(used)
	unused := make([]string, 0, len(m.namespace))
	for _, name := range m.namespace {
		if _, ok := taken[name]; !ok {
			unused = append(unused, name)
		}
	}
	return unused, nil
}

// Brain loads the named brain, creating and persisting an empty one when the
// store has none.
func (m *Manager) Brain(ctx context.Context, name string) (*nn.Brain, error) {
	record, ok, err := m.store.GetBrain(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		brain := nn.NewBrain(m.brainConfig())
		if err := m.store.SaveBrain(ctx, brain.Record(name)); err != nil {
			return nil, fmt.Errorf("create brain %s: %w", name, err)
		}
		m.logger.Info("brain created", "name", name)
		return brain, nil
	}
	return nn.NewBrainFromRecord(record, m.brainConfig())
}

func (m *Manager) AI(ctx context.Context, name string) (*agent.AI, error) {
	brain, err := m.Brain(ctx, name)
	if err != nil {
		return nil, err
	}
	return agent.NewAI(name, brain)
}

// AIs picks count pool members. Preferred names are taken first (a random
// subset when there are more than count), the rest is a random sample of the
// pool outside preferred and excluded. Unused names are brought to life when
// the pool is too small.
func (m *Manager) AIs(ctx context.Context, count int, preferred, excluded []string) ([]*agent.AI, error) {
	excludedSet := toSet(excluded)
	for _, name := range preferred {
		if _, ok := excludedSet[name]; ok {
			return nil, fmt.Errorf("%s is both preferred and excluded: %w", name, ErrOverlap)
		}
	}

	selected := slices.Compact(slices.Sorted(slices.Values(preferred)))
	if len(selected) > count {
		m.rng.Shuffle(len(selected), func(i, j int) { selected[i], selected[j] = selected[j], selected[i] })
		selected = selected[:count]
	}

	if remaining := count - len(selected); remaining > 0 {
		skip := toSet(excluded)
		for _, name := range preferred {
			skip[name] = struct{}{}
		}
		candidates, err := m.ensure(ctx, remaining, skip)
		if err != nil {
			return nil, err
		}
		m.rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
		selected = append(selected, candidates[:remaining]...)
	}

	ais := make([]*agent.AI, 0, len(selected))
	for _, name := range selected {
		ai, err := m.AI(ctx, name)
		if err != nil {
			return nil, err
		}
		ais = append(ais, ai)
	}
	return ais, nil
}

// ensure creates brains under random unused names until at least count used
// names fall outside skip, and returns those names.
func (m *Manager) ensure(ctx context.Context, count int, skip map[string]struct{}) ([]string, error) {
	for {
		used, err := m.NamesUsed(ctx)
		if err != nil {
			return nil, err
		}
		candidates := make([]string, 0, len(used))
		for _, name := range used {
			if _, ok := skip[name]; !ok {
				candidates = append(candidates, name)
			}
		}
		if len(candidates) >= count {
			return candidates, nil
		}
		name, err := m.unusedName(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := m.Brain(ctx, name); err != nil {
			return nil, err
		}
	}
}

func (m *Manager) unusedName(ctx context.Context) (string, error) {
	unused, err := m.NamesUnused(ctx)
	if err != nil {
		return "", err
	}
	if len(unused) == 0 {
		return "", ErrNamespaceExhausted
	}
	return unused[m.rng.Intn(len(unused))], nil
}

// Fill restores the pool to its minimum size. Without an example the new
// members are fresh brains; with one they are perturbed, mutated clones of
// the example's brain.
func (m *Manager) Fill(ctx context.Context, example *agent.AI) error {
	if example == nil {
		_, err := m.ensure(ctx, m.cfg.MinimumBrains, nil)
		return err
	}
	for {
		used, err := m.NamesUsed(ctx)
		if err != nil {
			return err
		}
		if len(used) >= m.cfg.MinimumBrains {
			return nil
		}
		name, err := m.unusedName(ctx)
		if err != nil {
			return err
		}
		clone := example.Brain().Clone(m.cfg.Perturb, m.cfg.Mutate)
		if err := m.store.SaveBrain(ctx, clone.Record(name)); err != nil {
			return fmt.Errorf("save clone %s: %w", name, err)
		}
		m.logger.Info("brain cloned", "name", name, "parent", example.Name())
	}
}

// Kill deletes the agent's brain and ledger for good.
func (m *Manager) Kill(ctx context.Context, a agent.Agent) error {
	if _, ok := a.(*agent.AI); !ok {
		return fmt.Errorf("kill %s: %w", a.Name(), ErrNotAI)
	}
	if err := m.store.DeleteBrain(ctx, a.Name()); err != nil {
		return fmt.Errorf("kill %s: %w", a.Name(), err)
	}
	if err := m.store.DeleteLedger(ctx, a.Name()); err != nil {
		return fmt.Errorf("kill %s: %w", a.Name(), err)
	}
	m.logger.Info("brain killed", "name", a.Name())
	return nil
}

func (m *Manager) brainConfig() nn.BrainConfig {
	return nn.BrainConfig{WeightRange: m.cfg.WeightRange, Rand: m.rng}
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

package model

// NeuronRecord is one persisted trainable unit. Weights[0] is the bias.
type NeuronRecord struct {
	Key     string    `json:"key"`
	Weights []float64 `json:"weights"`
}

// BrainRecord is the persisted form of one pool member's network.
type BrainRecord struct {
	Name    string         `json:"name"`
	Neurons []NeuronRecord `json:"neurons"`
}

type LedgerEntry struct {
	Opponent string  `json:"opponent" csv:"opponent"`
	Wins     float64 `json:"wins" csv:"wins"`
	Losses   float64 `json:"losses" csv:"losses"`
}

// Ledger is the win/loss history of one pool member against every opponent
// it has met, in first-met order.
type Ledger struct {
	Name    string        `json:"name"`
	Entries []LedgerEntry `json:"entries"`
}

func (l Ledger) Entry(opponent string) (LedgerEntry, bool) {
	for _, entry := range l.Entries {
		if entry.Opponent == opponent {
			return entry, true
		}
	}
	return LedgerEntry{}, false
}

// Credit adds wins and losses against opponent, appending a new entry on
// first contact.
func (l *Ledger) Credit(opponent string, wins, losses float64) {
	for i := range l.Entries {
		if l.Entries[i].Opponent == opponent {
			l.Entries[i].Wins += wins
			l.Entries[i].Losses += losses
			return
		}
	}
	l.Entries = append(l.Entries, LedgerEntry{Opponent: opponent, Wins: wins, Losses: losses})
}

func (l Ledger) Totals() (wins, losses float64) {
	for _, entry := range l.Entries {
		wins += entry.Wins
		losses += entry.Losses
	}
	return wins, losses
}

func (l Ledger) Clone() Ledger {
	return Ledger{Name: l.Name, Entries: append([]LedgerEntry(nil), l.Entries...)}
}

func (r BrainRecord) Clone() BrainRecord {
	out := BrainRecord{Name: r.Name, Neurons: make([]NeuronRecord, len(r.Neurons))}
	for i, neuron := range r.Neurons {
		out.Neurons[i] = NeuronRecord{Key: neuron.Key, Weights: append([]float64(nil), neuron.Weights...)}
	}
	return out
}

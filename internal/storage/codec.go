package storage

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gennsing/internal/model"
)

// Brains are stored one neuron per line as key<TAB>w0|w1|...|wn and ledgers
// one opponent per line as opponent<TAB>wins<TAB>losses. Floats use the
// shortest representation that parses back to the same value.

func EncodeBrain(record model.BrainRecord) []byte {
	var buf bytes.Buffer
	for _, neuron := range record.Neurons {
		buf.WriteString(neuron.Key)
		buf.WriteByte('\t')
		for i, weight := range neuron.Weights {
			if i > 0 {
				buf.WriteByte('|')
			}
			buf.WriteString(formatFloat(weight))
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func DecodeBrain(name string, data []byte) (model.BrainRecord, error) {
	record := model.BrainRecord{Name: name}
	err := eachLine(data, func(n int, line string) error {
		key, weights, ok := strings.Cut(line, "\t")
		if !ok || key == "" || strings.Contains(weights, "\t") {
			return fmt.Errorf("brain %s line %d: want key<TAB>weights: %w", name, n, ErrMalformed)
		}
		fields := strings.Split(weights, "|")
		neuron := model.NeuronRecord{Key: key, Weights: make([]float64, len(fields))}
		for i, field := range fields {
			value, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return fmt.Errorf("brain %s line %d weight %d: %q: %w", name, n, i, field, ErrMalformed)
			}
			neuron.Weights[i] = value
		}
		record.Neurons = append(record.Neurons, neuron)
		return nil
	})
	return record, err
}

func EncodeLedger(ledger model.Ledger) []byte {
	var buf bytes.Buffer
	for _, entry := range ledger.Entries {
		fmt.Fprintf(&buf, "%s\t%s\t%s\n", entry.Opponent, formatFloat(entry.Wins), formatFloat(entry.Losses))
	}
	return buf.Bytes()
}

func DecodeLedger(name string, data []byte) (model.Ledger, error) {
	ledger := model.Ledger{Name: name}
	err := eachLine(data, func(n int, line string) error {
		fields := strings.Split(line, "\t")
		if len(fields) != 3 || fields[0] == "" {
			return fmt.Errorf("ledger %s line %d: want opponent<TAB>wins<TAB>losses: %w", name, n, ErrMalformed)
		}
		wins, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return fmt.Errorf("ledger %s line %d wins: %q: %w", name, n, fields[1], ErrMalformed)
		}
		losses, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return fmt.Errorf("ledger %s line %d losses: %q: %w", name, n, fields[2], ErrMalformed)
		}
		ledger.Entries = append(ledger.Entries, model.LedgerEntry{Opponent: fields[0], Wins: wins, Losses: losses})
		return nil
	})
	return ledger, err
}

func eachLine(data []byte, fn func(n int, line string) error) error {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := fn(n, line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}

func validName(name string) error {
	if name == "" || strings.ContainsAny(name, "/\\\t\n") || name == "." || name == ".." {
		return fmt.Errorf("invalid record name %q", name)
	}
	return nil
}

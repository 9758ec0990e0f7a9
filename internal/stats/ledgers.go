package stats

import (
	"io"
	"sort"

	"github.com/gocarina/gocsv"

	"gennsing/internal/model"
)

type LedgerRow struct {
	Name     string  `csv:"name"`
	Opponent string  `csv:"opponent"`
	Wins     float64 `csv:"wins"`
	Losses   float64 `csv:"losses"`
}

// WriteLedgers flattens ledgers into one CSV row per name and opponent.
func WriteLedgers(w io.Writer, ledgers []model.Ledger) error {
	rows := make([]LedgerRow, 0, len(ledgers))
	for _, ledger := range ledgers {
		for _, entry := range ledger.Entries {
			rows = append(rows, LedgerRow{Name: ledger.Name, Opponent: entry.Opponent, Wins: entry.Wins, Losses: entry.Losses})
		}
	}
	return gocsv.Marshal(rows, w)
}

type Standing struct {
	Name     string  `csv:"name" json:"name"`
	Wins     float64 `csv:"wins" json:"wins"`
	Losses   float64 `csv:"losses" json:"losses"`
	WinShare float64 `csv:"win_share" json:"win_share"`
}

// Standings totals each ledger and orders the pool by win share, then by
// wins, then by name.
func Standings(ledgers []model.Ledger) []Standing {
	out := make([]Standing, 0, len(ledgers))
	for _, ledger := range ledgers {
		wins, losses := ledger.Totals()
		s := Standing{Name: ledger.Name, Wins: wins, Losses: losses}
		if wins+losses > 0 {
			s.WinShare = wins / (wins + losses)
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WinShare != out[j].WinShare {
			return out[i].WinShare > out[j].WinShare
		}
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		return out[i].Name < out[j].Name
	})
	return out
}

package storage

import (
	"context"
	"errors"

	"gennsing/internal/model"
)

var (
	ErrMalformed = errors.New("malformed record")
	ErrNotFound  = errors.New("record not found")
)

// Store persists the brain pool of one game and its win/loss ledgers. Every
// save rewrites the whole record.
type Store interface {
	Init(ctx context.Context) error
	ListBrains(ctx context.Context) ([]string, error)
	SaveBrain(ctx context.Context, brain model.BrainRecord) error
	GetBrain(ctx context.Context, name string) (model.BrainRecord, bool, error)
	DeleteBrain(ctx context.Context, name string) error
	ListLedgers(ctx context.Context) ([]string, error)
	SaveLedger(ctx context.Context, ledger model.Ledger) error
	GetLedger(ctx context.Context, name string) (model.Ledger, bool, error)
	// DeleteLedger succeeds when no ledger exists.
	DeleteLedger(ctx context.Context, name string) error
}

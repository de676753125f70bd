package bank

import (
	"context"
	"fmt"

	"training-quiz-service/internal/domain"
)

// Loader fetches a bank definition from a backing store (e.g., Postgres JSONB).
type Loader interface {
	LoadBank(ctx context.Context, bankID string) (domain.Bank, error)
}

// StaticLoader is a loader backed by an in-memory map (useful for tests/demos).
type StaticLoader struct {
	banks map[string]domain.Bank
}

func NewStaticLoader(banks ...domain.Bank) *StaticLoader {
	m := make(map[string]domain.Bank, len(banks))
	for _, b := range banks {
		m[b.ID] = b
	}
	return &StaticLoader{banks: m}
}

func (l *StaticLoader) LoadBank(_ context.Context, bankID string) (domain.Bank, error) {
	if b, ok := l.banks[bankID]; ok {
		return b, nil
	}
	return domain.Bank{}, fmt.Errorf("%w: %s", domain.ErrBankNotFound, bankID)
}

// Load fetches bankID through loader and validates it.
func Load(ctx context.Context, loader Loader, bankID string) (*Bank, error) {
	raw, err := loader.LoadBank(ctx, bankID)
	if err != nil {
		return nil, err
	}
	return New(raw)
}

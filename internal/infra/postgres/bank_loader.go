package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"training-quiz-service/internal/domain"
)

// BankStore loads and saves question bank JSONB in Postgres.
type BankStore struct {
	pool *pgxpool.Pool
}

func NewBankStore(pool *pgxpool.Pool) *BankStore {
	return &BankStore{pool: pool}
}

func (s *BankStore) LoadBank(ctx context.Context, bankID string) (domain.Bank, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM question_banks WHERE id=$1`, bankID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Bank{}, fmt.Errorf("%w: %s", domain.ErrBankNotFound, bankID)
	}
	if err != nil {
		return domain.Bank{}, fmt.Errorf("load bank: %w", err)
	}
	var b domain.Bank
	if err := json.Unmarshal(raw, &b); err != nil {
		return domain.Bank{}, fmt.Errorf("unmarshal bank: %w", err)
	}
	if b.ID == "" {
		b.ID = bankID
	}
	return b, nil
}

// SaveBank inserts or replaces a bank definition.
func (s *BankStore) SaveBank(ctx context.Context, b domain.Bank) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal bank: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO question_banks (id, data, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		b.ID, string(raw))
	if err != nil {
		return fmt.Errorf("save bank: %w", err)
	}
	return nil
}

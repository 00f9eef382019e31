package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"time"
)

//go:embed sql/seed/test_data.sql
var seedSQL string

// ApplySeed загружает эталонный набор данных (клиенты, товары, заказы)
// одной транзакцией. Предполагает пустую схему: повторная загрузка упадёт
// на ограничениях первичных ключей.
func (s *Store) ApplySeed(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("postgres store is not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}

	if _, err := tx.ExecContext(ctx, seedSQL); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("apply seed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}

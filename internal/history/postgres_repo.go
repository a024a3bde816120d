package history

import (
	"context"
	"fmt"

	"scenestudio/internal/infra"
	"scenestudio/internal/sqlinline"
)

// PostgresRepository persists history entries through the SQL runner. Used
// when DATABASE_URL is configured; the file repository is the default.
type PostgresRepository struct {
	runner infra.SQLExecutor
}

func NewPostgresRepository(ctx context.Context, runner infra.SQLExecutor) (*PostgresRepository, error) {
	if _, err := runner.Exec(ctx, sqlinline.QEnsureHistoryTable); err != nil {
		return nil, fmt.Errorf("history: ensure table: %w", err)
	}
	return &PostgresRepository{runner: runner}, nil
}

func (r *PostgresRepository) Load(ctx context.Context) ([]Entry, error) {
	rows, err := r.runner.Query(ctx, sqlinline.QListHistory)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Image.Data, &e.Image.MediaType, &e.Prompt, &e.Kind, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Save replaces the stored snapshot. The entry count is capped, so a full
// rewrite stays cheap.
func (r *PostgresRepository) Save(ctx context.Context, entries []Entry) error {
	if _, err := r.runner.Exec(ctx, sqlinline.QDeleteHistory); err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := r.runner.Exec(ctx, sqlinline.QInsertHistoryEntry,
			e.ID, e.Image.Data, e.Image.MediaType, e.Prompt, e.Kind, e.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

var _ Repository = (*PostgresRepository)(nil)

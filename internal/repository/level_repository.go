package repository

import (
	"context"
	"fmt"

	"skill-ladder/internal/database"
	"skill-ladder/internal/domain/level"

	"github.com/google/uuid"
)

type LevelRepository interface {
	ListByRole(ctx context.Context, roleID uuid.UUID) ([]level.Level, error)
	CountByRole(ctx context.Context, roleID uuid.UUID) (int, error)
	// InsertLevels adds the given levels to a role, leaving any key the role
	// already has untouched. It returns the number of rows written.
	InsertLevels(ctx context.Context, roleID uuid.UUID, levels []level.Level) (int64, error)
}

type PostgresLevelRepository struct {
	db database.DB
}

func NewPostgresLevelRepository(db database.DB) *PostgresLevelRepository {
	return &PostgresLevelRepository{db: db}
}

func (r *PostgresLevelRepository) ListByRole(ctx context.Context, roleID uuid.UUID) ([]level.Level, error) {
	rows, err := r.db.Query(ctx,
		`SELECT key, label, COALESCE(description, ''), order_index
		 FROM role_levels
		 WHERE role_id = $1
		 ORDER BY order_index ASC`,
		roleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]level.Level, 0)
	for rows.Next() {
		var l level.Level
		if err := rows.Scan(&l.Key, &l.Label, &l.Description, &l.OrderIndex); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresLevelRepository) CountByRole(ctx context.Context, roleID uuid.UUID) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM role_levels WHERE role_id = $1`, roleID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PostgresLevelRepository) InsertLevels(ctx context.Context, roleID uuid.UUID, levels []level.Level) (int64, error) {
	if len(levels) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	var inserted int64
	for _, l := range levels {
		n, err := tx.Exec(ctx,
			`INSERT INTO role_levels (role_id, key, label, description, order_index)
			 VALUES ($1, $2, $3, NULLIF($4, ''), $5)
			 ON CONFLICT (role_id, key) DO NOTHING`,
			roleID, l.Key, l.Label, l.Description, l.OrderIndex,
		)
		if err != nil {
			return 0, fmt.Errorf("insert level %s: %w", l.Key, err)
		}
		inserted += n
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"skill-ladder/internal/database"
	"skill-ladder/internal/domain/framework"
	"skill-ladder/internal/domain/level"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrRoleNotFound          = errors.New("role not found")
	ErrSubCompetencyNotFound = errors.New("sub-competency not found")
)

type RoleRow struct {
	ID        uuid.UUID
	Name      string
	Type      string
	CreatedAt time.Time
}

func (r RoleRow) ToDomain() (framework.Role, error) {
	t, err := level.ParseRoleType(r.Type)
	if err != nil {
		return framework.Role{}, fmt.Errorf("role %s: %w", r.ID, err)
	}
	return framework.Role{ID: r.ID, Name: r.Name, Type: t, CreatedAt: r.CreatedAt}, nil
}

type CompetencyRow struct {
	ID          uuid.UUID
	RoleID      uuid.UUID
	Title       string
	Code        string
	Description string
	OrderIndex  int
}

// SubCompetencyRow keeps level_criteria as raw JSON so callers decide how to
// treat records whose stored map does not decode.
type SubCompetencyRow struct {
	ID            uuid.UUID
	CompetencyID  uuid.UUID
	Title         string
	Code          string
	OrderIndex    int
	LevelCriteria []byte
	Legacy        framework.LegacyFields
}

func (r SubCompetencyRow) ToDomain() (framework.SubCompetency, error) {
	m, err := framework.DecodeLevelCriteria(r.LevelCriteria)
	if err != nil {
		return framework.SubCompetency{}, fmt.Errorf("sub-competency %s: %w", r.ID, err)
	}
	return framework.SubCompetency{
		ID:            r.ID,
		CompetencyID:  r.CompetencyID,
		Title:         r.Title,
		Code:          r.Code,
		OrderIndex:    r.OrderIndex,
		LevelCriteria: m,
		Legacy:        r.Legacy,
	}, nil
}

type FrameworkRepository interface {
	ListRoles(ctx context.Context) ([]RoleRow, error)
	GetRole(ctx context.Context, id uuid.UUID) (RoleRow, error)
	ListCompetenciesByRole(ctx context.Context, roleID uuid.UUID) ([]CompetencyRow, error)
	ListSubCompetenciesByCompetency(ctx context.Context, competencyID uuid.UUID) ([]SubCompetencyRow, error)
	ListSubCompetencies(ctx context.Context) ([]SubCompetencyRow, error)
	GetSubCompetency(ctx context.Context, id uuid.UUID) (SubCompetencyRow, error)
	UpdateLevelCriteria(ctx context.Context, id uuid.UUID, levelCriteria []byte) error
	ReplaceFramework(ctx context.Context, roleID uuid.UUID, competencies []framework.Competency) error
}

type PostgresFrameworkRepository struct {
	db database.DB
}

func NewPostgresFrameworkRepository(db database.DB) *PostgresFrameworkRepository {
	return &PostgresFrameworkRepository{db: db}
}

func (r *PostgresFrameworkRepository) ListRoles(ctx context.Context) ([]RoleRow, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, type, created_at FROM roles ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RoleRow, 0)
	for rows.Next() {
		var role RoleRow
		if err := rows.Scan(&role.ID, &role.Name, &role.Type, &role.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresFrameworkRepository) GetRole(ctx context.Context, id uuid.UUID) (RoleRow, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, type, created_at FROM roles WHERE id = $1`, id)

	var role RoleRow
	if err := row.Scan(&role.ID, &role.Name, &role.Type, &role.CreatedAt); err != nil {
		if isNoRows(err) {
			return RoleRow{}, ErrRoleNotFound
		}
		return RoleRow{}, err
	}
	return role, nil
}

func (r *PostgresFrameworkRepository) ListCompetenciesByRole(ctx context.Context, roleID uuid.UUID) ([]CompetencyRow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, role_id, title, COALESCE(code, ''), COALESCE(description, ''), order_index
		 FROM competencies
		 WHERE role_id = $1`,
		roleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CompetencyRow, 0)
	for rows.Next() {
		var c CompetencyRow
		if err := rows.Scan(&c.ID, &c.RoleID, &c.Title, &c.Code, &c.Description, &c.OrderIndex); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

const subCompetencyColumns = `id, competency_id, title, COALESCE(code, ''), order_index, level_criteria,
	associate_level, intermediate_level, senior_level, lead_level, principal_level`

func scanSubCompetency(row database.Row) (SubCompetencyRow, error) {
	var s SubCompetencyRow
	err := row.Scan(
		&s.ID, &s.CompetencyID, &s.Title, &s.Code, &s.OrderIndex, &s.LevelCriteria,
		&s.Legacy.Associate, &s.Legacy.Intermediate, &s.Legacy.Senior, &s.Legacy.Lead, &s.Legacy.Principal,
	)
	return s, err
}

func (r *PostgresFrameworkRepository) querySubCompetencies(ctx context.Context, query string, args ...any) ([]SubCompetencyRow, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SubCompetencyRow, 0)
	for rows.Next() {
		s, err := scanSubCompetency(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresFrameworkRepository) ListSubCompetenciesByCompetency(ctx context.Context, competencyID uuid.UUID) ([]SubCompetencyRow, error) {
	return r.querySubCompetencies(ctx,
		`SELECT `+subCompetencyColumns+` FROM sub_competencies WHERE competency_id = $1`,
		competencyID,
	)
}

func (r *PostgresFrameworkRepository) ListSubCompetencies(ctx context.Context) ([]SubCompetencyRow, error) {
	return r.querySubCompetencies(ctx, `SELECT `+subCompetencyColumns+` FROM sub_competencies ORDER BY id`)
}

func (r *PostgresFrameworkRepository) GetSubCompetency(ctx context.Context, id uuid.UUID) (SubCompetencyRow, error) {
	row := r.db.QueryRow(ctx, `SELECT `+subCompetencyColumns+` FROM sub_competencies WHERE id = $1`, id)
	s, err := scanSubCompetency(row)
	if err != nil {
		if isNoRows(err) {
			return SubCompetencyRow{}, ErrSubCompetencyNotFound
		}
		return SubCompetencyRow{}, err
	}
	return s, nil
}

func (r *PostgresFrameworkRepository) UpdateLevelCriteria(ctx context.Context, id uuid.UUID, levelCriteria []byte) error {
	affected, err := r.db.Exec(ctx,
		`UPDATE sub_competencies SET level_criteria = $1::jsonb, updated_at = now() WHERE id = $2`,
		string(levelCriteria), id,
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSubCompetencyNotFound
	}
	return nil
}

// ReplaceFramework swaps a role's competencies for the given ones in one
// transaction. Sub-competencies go with their competency through the cascade.
func (r *PostgresFrameworkRepository) ReplaceFramework(ctx context.Context, roleID uuid.UUID, competencies []framework.Competency) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM competencies WHERE role_id = $1`, roleID); err != nil {
		return err
	}

	for _, c := range competencies {
		compID := uuid.New()
		_, err := tx.Exec(ctx,
			`INSERT INTO competencies (id, role_id, title, code, description, order_index)
			 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6)`,
			compID, roleID, c.Title, c.Code, c.Description, c.OrderIndex,
		)
		if err != nil {
			return fmt.Errorf("insert competency %q: %w", c.Title, err)
		}

		for _, s := range c.SubCompetencies {
			raw, err := framework.EncodeLevelCriteria(s.LevelCriteria)
			if err != nil {
				return err
			}
			_, err = tx.Exec(ctx,
				`INSERT INTO sub_competencies (id, competency_id, title, code, order_index, level_criteria)
				 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6::jsonb)`,
				uuid.New(), compID, s.Title, s.Code, s.OrderIndex, string(raw),
			)
			if err != nil {
				return fmt.Errorf("insert sub-competency %q: %w", s.Title, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}

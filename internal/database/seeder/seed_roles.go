package seeder

import (
	"context"
	"fmt"

	"skill-ladder/internal/database"
)

// RolesSeeder inserts demo roles with a small framework stored in the legacy
// five-column layout, so a fresh database has something to migrate.
type RolesSeeder struct{}

func (RolesSeeder) Name() string { return "roles" }

type demoSub struct {
	Title     string
	Code      string
	Associate []string
	Senior    []string
	Principal []string
}

type demoRole struct {
	Name       string
	Type       string
	Competency string
	Subs       []demoSub
}

var demoRoles = []demoRole{
	{
		Name:       "Software Engineer",
		Type:       "ic",
		Competency: "Technical Delivery",
		Subs: []demoSub{
			{
				Title:     "Code Quality",
				Code:      "TD-1",
				Associate: []string{"Writes readable code with guidance"},
				Senior:    []string{"Sets review standards for the team"},
				Principal: []string{"Defines engineering practices across the organization"},
			},
			{
				Title:  "System Design",
				Code:   "TD-2",
				Senior: []string{"Designs services that other teams depend on"},
			},
		},
	},
	{
		Name:       "Engineering Manager",
		Type:       "management",
		Competency: "People Leadership",
		Subs: []demoSub{
			{
				Title:     "Coaching",
				Code:      "PL-1",
				Associate: []string{"Holds regular one-on-ones"},
				Senior:    []string{"Grows managers within the group"},
			},
		},
	},
}

func (RolesSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "roles", "id", "name", "type"); err != nil {
		return err
	}
	if err := EnsureTableColumns(ctx, db, "sub_competencies",
		"competency_id", "title", "code", "order_index", "associate_level", "senior_level", "principal_level",
	); err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	for _, r := range demoRoles {
		affected, err := tx.Exec(
			ctx,
			`INSERT INTO roles (id, name, type) VALUES (gen_random_uuid(), $1, $2) ON CONFLICT (name) DO NOTHING`,
			r.Name,
			r.Type,
		)
		if err != nil {
			return err
		}
		if affected == 0 {
			continue
		}

		var competencyID string
		if err := tx.QueryRow(
			ctx,
			`INSERT INTO competencies (id, role_id, title, order_index)
			 SELECT gen_random_uuid(), id, $2, 0 FROM roles WHERE name = $1
			 RETURNING id::text`,
			r.Name,
			r.Competency,
		).Scan(&competencyID); err != nil {
			return fmt.Errorf("insert competency for %s: %w", r.Name, err)
		}

		for i, s := range r.Subs {
			if _, err := tx.Exec(
				ctx,
				`INSERT INTO sub_competencies (id, competency_id, title, code, order_index, associate_level, senior_level, principal_level)
				 VALUES (gen_random_uuid(), $1::uuid, $2, $3, $4, $5, $6, $7)`,
				competencyID,
				s.Title,
				s.Code,
				i,
				s.Associate,
				s.Senior,
				s.Principal,
			); err != nil {
				return fmt.Errorf("insert sub-competency %s: %w", s.Code, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

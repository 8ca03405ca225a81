package seeder

import (
	"context"
	"fmt"

	"skill-ladder/internal/database"
	"skill-ladder/internal/pkg/logging"

	"github.com/sirupsen/logrus"
)

type Runner struct {
	Seeders []Seeder
	Logger  logrus.FieldLogger
}

// Run executes the seeders in order and stops at the first failure.
func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	log := logging.OrDefault(r.Logger)
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		if err := s.Run(ctx, db); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		log.WithField("seeder", s.Name()).Info("[Seeder] done")
	}
	return nil
}

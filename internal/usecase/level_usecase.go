package usecase

import (
	"context"
	"errors"

	"skill-ladder/internal/domain/framework"
	"skill-ladder/internal/domain/level"
	"skill-ladder/internal/repository"

	"github.com/google/uuid"
)

type RoleLevels struct {
	Role      framework.Role
	Levels    []level.Level
	IsDefault bool
}

type LevelUsecase interface {
	LevelsForRole(ctx context.Context, roleID uuid.UUID) (RoleLevels, error)
}

type Level struct {
	roles  repository.FrameworkRepository
	levels repository.LevelRepository
}

func NewLevelUsecase(roles repository.FrameworkRepository, levels repository.LevelRepository) *Level {
	return &Level{roles: roles, levels: levels}
}

// LevelsForRole returns the role's stored registry ordered by OrderIndex, or
// the default sequence for its type when nothing is stored yet.
func (u *Level) LevelsForRole(ctx context.Context, roleID uuid.UUID) (RoleLevels, error) {
	if roleID == uuid.Nil {
		return RoleLevels{}, ErrInvalidInput
	}

	row, err := u.roles.GetRole(ctx, roleID)
	if err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return RoleLevels{}, ErrNotFound
		}
		return RoleLevels{}, ErrInternal
	}
	role, err := row.ToDomain()
	if err != nil {
		return RoleLevels{}, ErrInternal
	}

	stored, err := u.levels.ListByRole(ctx, roleID)
	if err != nil {
		return RoleLevels{}, ErrInternal
	}
	if len(stored) > 0 {
		return RoleLevels{Role: role, Levels: level.Sorted(stored)}, nil
	}

	defaults, err := level.DefaultLevels(role.Type)
	if err != nil {
		return RoleLevels{}, ErrInternal
	}
	return RoleLevels{Role: role, Levels: defaults, IsDefault: true}, nil
}

package handler

import (
	"errors"

	"skill-ladder/internal/delivery/http/middleware"
	"skill-ladder/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

func toAppError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, err.Error(), nil, err)
	case errors.Is(err, usecase.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "role not found", nil, err)
	case errors.Is(err, usecase.ErrMigrationInProgress):
		return middleware.NewAppError(fiber.StatusConflict, err.Error(), nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, "", nil, err)
	}
}

func roleIDParam(c fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, middleware.NewAppError(fiber.StatusBadRequest, "invalid role id", nil, err)
	}
	return id, nil
}

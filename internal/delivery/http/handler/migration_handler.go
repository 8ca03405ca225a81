package handler

import (
	"strings"

	"skill-ladder/internal/pkg/response"
	"skill-ladder/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type MigrationHandler struct {
	uc usecase.LevelMigrationUsecase
}

func NewMigrationHandler(uc usecase.LevelMigrationUsecase) *MigrationHandler {
	return &MigrationHandler{uc: uc}
}

func (h *MigrationHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/migrations/levels")
	grp.Get("/verify", h.Verify)
	grp.Post("/:operation", h.Run)
}

func (h *MigrationHandler) Run(c fiber.Ctx) error {
	op := strings.ToLower(strings.TrimSpace(c.Params("operation")))
	if op == usecase.OperationRunAll {
		report, err := h.uc.RunAll(c.Context())
		if err != nil {
			return toAppError(err)
		}
		return response.Success(c, fiber.StatusOK, response.MessageOK, report)
	}

	res, err := h.uc.Run(c.Context(), op)
	if err != nil {
		return toAppError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func (h *MigrationHandler) Verify(c fiber.Ctx) error {
	report, err := h.uc.Verify(c.Context())
	if err != nil {
		return toAppError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, report)
}

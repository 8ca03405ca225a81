package handler

import (
	"skill-ladder/internal/domain/level"
	"skill-ladder/internal/pkg/response"
	"skill-ladder/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type LevelHandler struct {
	uc usecase.LevelUsecase
}

func NewLevelHandler(uc usecase.LevelUsecase) *LevelHandler {
	return &LevelHandler{uc: uc}
}

type levelResponse struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	OrderIndex  int    `json:"order_index"`
	ShortCode   string `json:"short_code"`
	BaseScore   int    `json:"base_score"`
}

type roleLevelsResponse struct {
	RoleID    uuid.UUID       `json:"role_id"`
	RoleName  string          `json:"role_name"`
	RoleType  string          `json:"role_type"`
	IsDefault bool            `json:"is_default"`
	Levels    []levelResponse `json:"levels"`
	MaxScore  int             `json:"max_chart_scale"`
}

func (h *LevelHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/roles/:id/levels", h.List)
}

func (h *LevelHandler) List(c fiber.Ctx) error {
	roleID, err := roleIDParam(c)
	if err != nil {
		return err
	}

	rl, err := h.uc.LevelsForRole(c.Context(), roleID)
	if err != nil {
		return toAppError(err)
	}

	keys := make([]string, 0, len(rl.Levels))
	items := make([]levelResponse, 0, len(rl.Levels))
	for _, l := range rl.Levels {
		keys = append(keys, l.Key)
		items = append(items, levelResponse{
			Key:         l.Key,
			Label:       l.Label,
			Description: l.Description,
			OrderIndex:  l.OrderIndex,
			ShortCode:   level.ShortCode(l.Key),
			BaseScore:   level.BaseScore(rl.Levels, l.Key),
		})
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, roleLevelsResponse{
		RoleID:    rl.Role.ID,
		RoleName:  rl.Role.Name,
		RoleType:  string(rl.Role.Type),
		IsDefault: rl.IsDefault,
		Levels:    items,
		MaxScore:  level.MaxChartScale(rl.Levels, keys),
	})
}

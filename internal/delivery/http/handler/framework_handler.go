package handler

import (
	"strconv"

	"skill-ladder/internal/pkg/response"
	"skill-ladder/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type FrameworkHandler struct {
	uc usecase.FrameworkUsecase
}

func NewFrameworkHandler(uc usecase.FrameworkUsecase) *FrameworkHandler {
	return &FrameworkHandler{uc: uc}
}

func (h *FrameworkHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/roles/:id/framework")
	grp.Get("/export", h.Export)
	grp.Post("/import", h.Import)
	grp.Get("/criteria", h.Criteria)
}

// Export answers with the envelope, or with the document itself when raw=true.
func (h *FrameworkHandler) Export(c fiber.Ctx) error {
	roleID, err := roleIDParam(c)
	if err != nil {
		return err
	}

	out, err := h.uc.Export(c.Context(), roleID, c.Query("format"))
	if err != nil {
		return toAppError(err)
	}

	if raw, _ := strconv.ParseBool(c.Query("raw")); raw {
		return response.Raw(c, out.ContentType, out.Body)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *FrameworkHandler) Import(c fiber.Ctx) error {
	roleID, err := roleIDParam(c)
	if err != nil {
		return err
	}

	body := append([]byte(nil), c.Body()...)
	res, err := h.uc.Import(c.Context(), roleID, body)
	if err != nil {
		return toAppError(err)
	}
	return response.Success(c, fiber.StatusOK, "Framework imported successfully", res)
}

func (h *FrameworkHandler) Criteria(c fiber.Ctx) error {
	roleID, err := roleIDParam(c)
	if err != nil {
		return err
	}

	items, err := h.uc.Criteria(c.Context(), roleID, c.Query("level"))
	if err != nil {
		return toAppError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

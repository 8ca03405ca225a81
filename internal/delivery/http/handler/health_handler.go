package handler

import (
	"context"
	"time"

	"skill-ladder/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	cache Pinger
}

func NewHealthHandler(db Pinger, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

type healthResponse struct {
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Check)
}

// Check fails only when the database is down; a missing cache is bypassed.
func (h *HealthHandler) Check(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	res := healthResponse{Database: pingStatus(ctx, h.db), Cache: pingStatus(ctx, h.cache)}
	if res.Database != "ok" {
		return response.Error(c, fiber.StatusServiceUnavailable, response.MessageServiceUnavailable, res)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func pingStatus(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		return "unavailable"
	}
	return "ok"
}

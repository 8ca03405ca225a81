package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"skill-ladder/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(logger logrus.FieldLogger, h fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(NewAccessLogMiddleware(logger).Middleware())
	app.Use(NewErrorMiddleware(logger).Middleware())
	app.Get("/x", h)
	return app
}

func call(t *testing.T, app *fiber.App) (int, response.Envelope) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/x", nil))
	require.NoError(t, err)
	var env response.Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestErrorMiddleware_Statuses(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{name: "app error", err: NewAppError(fiber.StatusBadRequest, "invalid role id", nil, nil), status: 400, message: "invalid role id"},
		{name: "app error default message", err: NewAppError(fiber.StatusConflict, "", nil, nil), status: 409, message: response.MessageConflict},
		{name: "internal detail hidden", err: NewAppError(fiber.StatusBadGateway, "upstream exploded", nil, nil), status: 500, message: response.MessageInternalServerError},
		{name: "unavailable kept", err: fiber.ErrServiceUnavailable, status: 503, message: response.MessageServiceUnavailable},
		{name: "fiber 404", err: fiber.ErrNotFound, status: 404, message: "Not Found"},
		{name: "plain error", err: errors.New("boom"), status: 500, message: response.MessageInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := test.NewNullLogger()
			app := newApp(logger, func(fiber.Ctx) error { return tt.err })

			status, env := call(t, app)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.status, env.Status)
			assert.Equal(t, tt.message, env.Message)
		})
	}
}

func TestErrorMiddleware_RecoversPanic(t *testing.T) {
	logger, hook := test.NewNullLogger()
	app := newApp(logger, func(fiber.Ctx) error { panic("nil map") })

	status, env := call(t, app)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, response.MessageInternalServerError, env.Message)

	var sawPanic bool
	for _, e := range hook.AllEntries() {
		if e.Message == "[HTTP] panic recovered" {
			sawPanic = true
		}
	}
	assert.True(t, sawPanic)
}

func TestAccessLog_RecordsRenderedStatus(t *testing.T) {
	logger, hook := test.NewNullLogger()
	app := newApp(logger, func(fiber.Ctx) error {
		return NewAppError(fiber.StatusNotFound, "role not found", nil, nil)
	})

	status, _ := call(t, app)
	assert.Equal(t, http.StatusNotFound, status)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "[HTTP] access", entry.Message)
	assert.Equal(t, http.StatusNotFound, entry.Data["status"])
	assert.NotEmpty(t, entry.Data["rid"])
}

package middleware

import (
	"errors"

	"skill-ladder/internal/pkg/logging"
	"skill-ladder/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

type AppError struct {
	StatusCode int
	Message    string
	Data       interface{}
	Cause      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewAppError(statusCode int, message string, data interface{}, cause error) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Data: data, Cause: cause}
}

type ErrorMiddleware struct {
	logger logrus.FieldLogger
}

func NewErrorMiddleware(logger logrus.FieldLogger) *ErrorMiddleware {
	return &ErrorMiddleware{logger: logging.OrDefault(logger)}
}

func (m *ErrorMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				m.logger.WithFields(logrus.Fields{"panic": r, "path": c.Path()}).Error("[HTTP] panic recovered")
				err = response.Error(c, fiber.StatusInternalServerError, response.MessageInternalServerError, nil)
			}
		}()

		err = c.Next()
		if err == nil {
			return nil
		}

		status, msg, data := normalizeError(err)
		if status >= 500 {
			m.logger.WithError(err).WithFields(logrus.Fields{"method": c.Method(), "path": c.Path()}).Error("[HTTP] request failed")
		}
		return response.Error(c, status, msg, data)
	}
}

// normalizeError hides the detail of every 5xx from the client.
func normalizeError(err error) (int, string, interface{}) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		status := response.NormalizeStatus(appErr.StatusCode)
		if appErr.StatusCode <= 0 || status >= 500 {
			return internalStatus(status), response.DefaultMessage(internalStatus(status)), nil
		}
		msg := appErr.Message
		if msg == "" {
			msg = response.DefaultMessage(status)
		}
		return status, msg, appErr.Data
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status := response.NormalizeStatus(fiberErr.Code)
		if status >= 500 {
			return internalStatus(status), response.DefaultMessage(internalStatus(status)), nil
		}
		msg := fiberErr.Message
		if msg == "" {
			msg = response.DefaultMessage(status)
		}
		return status, msg, nil
	}

	return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
}

// internalStatus keeps 503 distinguishable and folds every other 5xx into 500.
func internalStatus(status int) int {
	if status == fiber.StatusServiceUnavailable {
		return status
	}
	return fiber.StatusInternalServerError
}

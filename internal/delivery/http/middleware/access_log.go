package middleware

import (
	"time"

	"skill-ladder/internal/pkg/logging"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type AccessLogMiddleware struct {
	logger logrus.FieldLogger
}

func NewAccessLogMiddleware(logger logrus.FieldLogger) *AccessLogMiddleware {
	return &AccessLogMiddleware{logger: logging.OrDefault(logger)}
}

func (m *AccessLogMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := c.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set("X-Request-ID", rid)

		err := c.Next()

		m.logger.WithFields(logrus.Fields{
			"rid":        rid,
			"ip":         c.IP(),
			"method":     c.Method(),
			"path":       c.OriginalURL(),
			"status":     c.Response().StatusCode(),
			"latency":    time.Since(start).String(),
			"req_bytes":  c.Request().Header.ContentLength(),
			"resp_bytes": len(c.Response().Body()),
			"ua":         c.Get("User-Agent"),
		}).Info("[HTTP] access")

		return err
	}
}

package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type LoggingMiddleware struct {
	logger *logrus.Logger
}

func NewLoggingMiddleware(logger *logrus.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger}
}

func (m *LoggingMiddleware) RequestLogging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m.logger != nil {
				fields := logrus.Fields{"method": c.Request().Method, "path": c.Path()}
				// The cache-busting param is non-semantic but useful when
				// tracing stale reads through intermediary caches.
				if v := c.QueryParam("v"); v != "" {
					fields["bypass"] = v
				}
				m.logger.WithFields(fields).Debug("incoming request")
			}
			return next(c)
		}
	}
}

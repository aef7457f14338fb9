package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-stay-reservation/internal/api"
	"github.com/sanosuguru/go-stay-reservation/internal/auth"
	"github.com/sanosuguru/go-stay-reservation/internal/pkg/logger"
)

// RequestLogger はリクエストの構造化ログを出力するミドルウェア
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			req := c.Request()
			res := c.Response()

			// エラーはこの後で CustomHTTPErrorHandler が書き込むため、ステータスをエラーから求める
			status := res.Status
			if err != nil {
				status, _ = api.StatusFor(err)
			}

			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = res.Header().Get(echo.HeaderXRequestID)
			}

			fields := []zap.Field{
				zap.String("request_id", requestID),
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.String("query", req.URL.RawQuery),
				zap.Int("status", status),
				zap.Int64("size", res.Size),
				zap.Duration("latency", time.Since(start)),
				zap.String("remote_ip", c.RealIP()),
				zap.String("user_agent", req.UserAgent()),
			}
			if owner, ok := auth.OwnerFrom(req.Context()); ok {
				fields = append(fields, zap.String("owner", owner.Subject))
			}

			switch {
			case status >= 500:
				if err != nil {
					fields = append(fields, zap.Error(err))
				}
				logger.Error("server error", fields...)
			case status >= 400:
				if err != nil {
					fields = append(fields, zap.Error(err))
				}
				logger.Warn("client error", fields...)
			default:
				logger.Info("request completed", fields...)
			}

			return err
		}
	}
}

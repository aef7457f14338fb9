package middleware

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sanosuguru/go-stay-reservation/internal/config"
)

// MetricsBasicAuth は /metrics エンドポイント用の Basic 認証ミドルウェア
// ユーザーとパスワードが設定されていない場合は認証をスキップ（ローカル開発用）
func MetricsBasicAuth(cfg config.MetricsConfig) echo.MiddlewareFunc {
	if !cfg.AuthEnabled() {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Realm: "metrics",
		Validator: func(username, password string, c echo.Context) (bool, error) {
			// タイミング攻撃を防ぐため ConstantTimeCompare を使用
			userMatch := subtle.ConstantTimeCompare([]byte(username), []byte(cfg.User)) == 1
			passMatch := subtle.ConstantTimeCompare([]byte(password), []byte(cfg.Password)) == 1
			return userMatch && passMatch, nil
		},
	})
}

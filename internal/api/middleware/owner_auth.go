package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-stay-reservation/internal/auth"
	"github.com/sanosuguru/go-stay-reservation/internal/pkg/logger"
)

// OwnerContextKey は echo.Context に格納する検証済みオーナーのキー
const OwnerContextKey = "owner"

// OwnerAuth は Authorization: Bearer <token> を検証し、オーナー専用ルートを保護する
// 検証に成功するとリクエストのコンテキストに auth.Owner を格納する
func OwnerAuth(v auth.Verifier) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		Validator: func(token string, c echo.Context) (bool, error) {
			req := c.Request()
			owner, err := v.Verify(req.Context(), token)
			if err != nil {
				return false, err
			}
			c.SetRequest(req.WithContext(auth.WithOwner(req.Context(), owner)))
			c.Set(OwnerContextKey, owner)
			return true, nil
		},
		// ヘッダー欠落も検証失敗もすべて 401 として扱う
		ErrorHandler: func(err error, c echo.Context) error {
			logger.Debug("オーナー認証に失敗",
				zap.String("path", c.Request().URL.Path),
				zap.Error(err),
			)
			return fmt.Errorf("%w: %v", auth.ErrUnauthorized, err)
		},
	})
}

package api

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-stay-reservation/internal/domain/reservation"
)

// CustomValidator はEcho用のカスタムバリデーター
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator は新しいバリデーターを作成する
// mobile: +63 または 0 から始まる携帯番号
func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		return reservation.ValidMobileNumber(fl.Field().String())
	})
	return &CustomValidator{validator: v}
}

// Validate はリクエストのバリデーションを実行する
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(400, err.Error())
	}
	return nil
}

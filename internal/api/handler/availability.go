package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-stay-reservation/internal/domain/calendar"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/reservation"
)

type AvailabilityHandler struct {
	availability AvailabilityServiceInterface
	admission    AdmissionCheckerInterface
}

func NewAvailabilityHandler(a AvailabilityServiceInterface, ac AdmissionCheckerInterface) *AvailabilityHandler {
	return &AvailabilityHandler{availability: a, admission: ac}
}

type UnavailableDatesResponse struct {
	Month            int             `json:"month" example:"12"`
	Year             int             `json:"year" example:"2025"`
	UnavailableDates []calendar.Date `json:"unavailable_dates"`
}

type AdmissionResponse struct {
	StartDate calendar.Date `json:"start_date"`
	EndDate   calendar.Date `json:"end_date"`
	Available bool          `json:"available"`
	Reason    string        `json:"reason,omitempty"`
}

// UnavailableDates godoc
// @Summary 予約不可日を取得
// @Description 指定月の予約できない日付を昇順で返します（範囲外の月は空）
// @Tags availability
// @Produce json
// @Param month query int true "月 (1-12)"
// @Param year query int true "年"
// @Success 200 {object} UnavailableDatesResponse
// @Failure 400 {object} map[string]string
// @Router /reservations/available-dates [get]
func (h *AvailabilityHandler) UnavailableDates(c echo.Context) error {
	month, year, err := monthQuery(c)
	if err != nil {
		return err
	}
	dates, err := h.availability.UnavailableDates(c.Request().Context(), month, year)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UnavailableDatesResponse{Month: month, Year: year, UnavailableDates: dates})
}

// CheckAdmission godoc
// @Summary 期間の受付可否を確認
// @Description 指定期間で予約を作成できるかを返します（作成はしません）
// @Tags availability
// @Produce json
// @Param start_date query string true "開始日 (YYYY-MM-DD)"
// @Param end_date query string true "終了日 (YYYY-MM-DD)"
// @Success 200 {object} AdmissionResponse
// @Failure 400 {object} map[string]string
// @Router /reservations/admission [get]
func (h *AvailabilityHandler) CheckAdmission(c echo.Context) error {
	start, err := calendar.ParseDate(c.QueryParam("start_date"))
	if err != nil {
		return err
	}
	end, err := calendar.ParseDate(c.QueryParam("end_date"))
	if err != nil {
		return err
	}

	resp := AdmissionResponse{StartDate: start, EndDate: end, Available: true}
	err = h.admission.CheckAdmission(c.Request().Context(), start, end)
	switch {
	case err == nil:
	case errors.Is(err, reservation.ErrDatesUnavailable):
		resp.Available = false
		resp.Reason = err.Error()
	default:
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// monthQuery は month と year のクエリを読む（未指定は 0 として扱う）
func monthQuery(c echo.Context) (int, int, error) {
	parse := func(name string) (int, error) {
		raw := c.QueryParam(name)
		if raw == "" {
			return 0, nil
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, echo.NewHTTPError(http.StatusBadRequest, name+" は整数で指定してください")
		}
		return v, nil
	}
	month, err := parse("month")
	if err != nil {
		return 0, 0, err
	}
	year, err := parse("year")
	if err != nil {
		return 0, 0, err
	}
	return month, year, nil
}

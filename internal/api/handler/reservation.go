package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-stay-reservation/internal/application"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/calendar"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/reservation"
)

type ReservationHandler struct {
	service ReservationServiceInterface
}

func NewReservationHandler(s ReservationServiceInterface) *ReservationHandler {
	return &ReservationHandler{service: s}
}

type CreateReservationRequest struct {
	StartDate      calendar.Date `json:"start_date" example:"2025-12-25"`
	EndDate        calendar.Date `json:"end_date" example:"2025-12-27"`
	FullName       string        `json:"full_name" validate:"required" example:"Juan Dela Cruz"`
	Address        string        `json:"address" validate:"required" example:"123 Mabini St, Cebu City"`
	MobileNumber   string        `json:"mobile_number" validate:"required,mobile" example:"09171234567"`
	NumberOfGuests int           `json:"number_of_guests" validate:"required,min=1" example:"2"`
	GuestNames     []string      `json:"guest_names" example:"Juan Dela Cruz,Maria Dela Cruz"`
	PaymentMethod  string        `json:"payment_method" validate:"required,oneof=e-wallet cash" example:"e-wallet"`
}

type UpdateReservationRequest struct {
	Status        *string `json:"status" validate:"omitempty,oneof=pending confirmed cancelled" example:"confirmed"`
	PaymentStatus *string `json:"payment_status" validate:"omitempty,oneof=pending paid cash_on_arrival cancelled" example:"paid"`
	Notes         *string `json:"notes" example:"Late check-in"`
}

type GuestResponse struct {
	FullName       string   `json:"full_name"`
	Address        string   `json:"address"`
	MobileNumber   string   `json:"mobile_number"`
	NumberOfGuests int      `json:"number_of_guests"`
	GuestNames     []string `json:"guest_names"`
}

type ReservationResponse struct {
	ID            string        `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	StartDate     calendar.Date `json:"start_date"`
	EndDate       calendar.Date `json:"end_date"`
	Guest         GuestResponse `json:"guest"`
	PaymentMethod string        `json:"payment_method" example:"e-wallet"`
	Status        string        `json:"status" example:"pending"`
	PaymentStatus string        `json:"payment_status" example:"pending"`
	Notes         string        `json:"notes"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type CreateReservationResponse struct {
	Message             string              `json:"message"`
	Reservation         ReservationResponse `json:"reservation"`
	PaymentInstructions string              `json:"payment_instructions"`
}

func toReservationResponse(r *reservation.Reservation) ReservationResponse {
	names := r.Guest.GuestNames
	if names == nil {
		names = []string{}
	}
	return ReservationResponse{
		ID: r.ID, StartDate: r.StartDate, EndDate: r.EndDate,
		Guest: GuestResponse{
			FullName: r.Guest.FullName, Address: r.Guest.Address, MobileNumber: r.Guest.MobileNumber,
			NumberOfGuests: r.Guest.NumberOfGuests, GuestNames: names,
		},
		PaymentMethod: string(r.PaymentMethod), Status: string(r.Status), PaymentStatus: string(r.PaymentStatus),
		Notes: r.Notes, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

// Create godoc
// @Summary 予約を作成
// @Description 保留中の予約を作成し、支払い方法の案内を返します
// @Tags reservations
// @Accept json
// @Produce json
// @Param request body CreateReservationRequest true "予約情報"
// @Success 201 {object} CreateReservationResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string "日付が予約済みまたはブロック済み"
// @Failure 503 {object} map[string]string
// @Router /reservations [post]
func (h *ReservationHandler) Create(c echo.Context) error {
	var req CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	result, err := h.service.CreateReservation(c.Request().Context(), application.CreateReservationInput{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Guest: reservation.Guest{
			FullName:       req.FullName,
			Address:        req.Address,
			MobileNumber:   req.MobileNumber,
			NumberOfGuests: req.NumberOfGuests,
			GuestNames:     req.GuestNames,
		},
		PaymentMethod: reservation.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, CreateReservationResponse{
		Message:             "予約を受け付けました",
		Reservation:         toReservationResponse(result.Reservation),
		PaymentInstructions: result.PaymentInstructions,
	})
}

// GetByID godoc
// @Summary 予約を取得
// @Tags reservations
// @Produce json
// @Security OwnerToken
// @Param id path string true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /reservations/{id} [get]
func (h *ReservationHandler) GetByID(c echo.Context) error {
	r, err := h.service.GetReservation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}

// List godoc
// @Summary 予約一覧を取得
// @Description 全予約を作成日時の新しい順に返します
// @Tags reservations
// @Produce json
// @Security OwnerToken
// @Success 200 {array} ReservationResponse
// @Failure 401 {object} map[string]string
// @Router /reservations [get]
func (h *ReservationHandler) List(c echo.Context) error {
	reservations, err := h.service.ListReservations(c.Request().Context())
	if err != nil {
		return err
	}
	resp := make([]ReservationResponse, len(reservations))
	for i, r := range reservations {
		resp[i] = toReservationResponse(r)
	}
	return c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary 予約を部分更新
// @Description ステータス・支払いステータス・メモのうち指定されたものだけを更新します
// @Tags reservations
// @Accept json
// @Produce json
// @Security OwnerToken
// @Param id path string true "予約ID"
// @Param request body UpdateReservationRequest true "更新内容"
// @Success 200 {object} ReservationResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "確定済み予約と重なる"
// @Router /reservations/{id} [patch]
func (h *ReservationHandler) Update(c echo.Context) error {
	var req UpdateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	var u reservation.Update
	if req.Status != nil {
		s := reservation.Status(*req.Status)
		u.Status = &s
	}
	if req.PaymentStatus != nil {
		ps := reservation.PaymentStatus(*req.PaymentStatus)
		u.PaymentStatus = &ps
	}
	u.Notes = req.Notes

	r, err := h.service.UpdateReservation(c.Request().Context(), c.Param("id"), u)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}

// Delete godoc
// @Summary 予約を削除
// @Tags reservations
// @Security OwnerToken
// @Param id path string true "予約ID"
// @Success 204
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /reservations/{id} [delete]
func (h *ReservationHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteReservation(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

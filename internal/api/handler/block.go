package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-stay-reservation/internal/domain/block"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/calendar"
)

type BlockHandler struct {
	service BlockServiceInterface
}

func NewBlockHandler(s BlockServiceInterface) *BlockHandler {
	return &BlockHandler{service: s}
}

type ToggleBlockRequest struct {
	Date   calendar.Date `json:"date" example:"2025-06-01"`
	Reason string        `json:"reason" example:"Maintenance"`
}

type ToggleBlockResponse struct {
	Message string        `json:"message"`
	Date    calendar.Date `json:"date"`
	Blocked bool          `json:"blocked"`
}

type SetBlockedRequest struct {
	Blocked *bool  `json:"blocked" validate:"required"`
	Reason  string `json:"reason"`
}

type SetBlockedResponse struct {
	Date    calendar.Date `json:"date"`
	Blocked bool          `json:"blocked"`
	Changed bool          `json:"changed"`
}

type BlockResponse struct {
	Date      calendar.Date `json:"date"`
	Reason    string        `json:"reason"`
	CreatedAt time.Time     `json:"created_at"`
}

func toBlockResponse(b *block.DateBlock) BlockResponse {
	return BlockResponse{Date: b.Date, Reason: b.Reason, CreatedAt: b.CreatedAt}
}

// Toggle godoc
// @Summary 日付のブロックを反転
// @Description ブロックされていればブロックを解除し、されていなければブロックします
// @Tags blocks
// @Accept json
// @Produce json
// @Security OwnerToken
// @Param request body ToggleBlockRequest true "対象日"
// @Success 200 {object} ToggleBlockResponse
// @Failure 400 {object} map[string]string
// @Router /reservations/block-date [post]
func (h *BlockHandler) Toggle(c echo.Context) error {
	var req ToggleBlockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	blocked, err := h.service.ToggleBlock(c.Request().Context(), req.Date, req.Reason)
	if err != nil {
		return err
	}
	message := "ブロックを解除しました"
	if blocked {
		message = "日付をブロックしました"
	}
	return c.JSON(http.StatusOK, ToggleBlockResponse{Message: message, Date: req.Date, Blocked: blocked})
}

// Set godoc
// @Summary 日付のブロック状態を設定
// @Description 指定した状態にします（同じ状態なら何もしません）
// @Tags blocks
// @Accept json
// @Produce json
// @Security OwnerToken
// @Param date path string true "対象日 (YYYY-MM-DD)"
// @Param request body SetBlockedRequest true "ブロック状態"
// @Success 200 {object} SetBlockedResponse
// @Failure 400 {object} map[string]string
// @Router /blocked-dates/{date} [put]
func (h *BlockHandler) Set(c echo.Context) error {
	date, err := calendar.ParseDate(c.Param("date"))
	if err != nil {
		return err
	}
	var req SetBlockedRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	changed, err := h.service.SetBlocked(c.Request().Context(), date, *req.Blocked, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SetBlockedResponse{Date: date, Blocked: *req.Blocked, Changed: changed})
}

// List godoc
// @Summary ブロック日一覧を取得
// @Tags blocks
// @Produce json
// @Security OwnerToken
// @Param month query int true "月 (1-12)"
// @Param year query int true "年"
// @Success 200 {array} BlockResponse
// @Router /blocked-dates [get]
func (h *BlockHandler) List(c echo.Context) error {
	month, year, err := monthQuery(c)
	if err != nil {
		return err
	}
	blocks, err := h.service.ListBlocks(c.Request().Context(), month, year)
	if err != nil {
		return err
	}
	resp := make([]BlockResponse, len(blocks))
	for i, b := range blocks {
		resp[i] = toBlockResponse(b)
	}
	return c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary 指定日のブロックを取得
// @Tags blocks
// @Produce json
// @Security OwnerToken
// @Param date path string true "対象日 (YYYY-MM-DD)"
// @Success 200 {object} BlockResponse
// @Failure 404 {object} map[string]string
// @Router /blocked-dates/{date} [get]
func (h *BlockHandler) Get(c echo.Context) error {
	date, err := calendar.ParseDate(c.Param("date"))
	if err != nil {
		return err
	}
	b, err := h.service.GetBlock(c.Request().Context(), date)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBlockResponse(b))
}

package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/biletnam/ticket-service/internal/application"
	"github.com/biletnam/ticket-service/internal/domain/customer"
	"github.com/biletnam/ticket-service/internal/domain/hold"
	"github.com/biletnam/ticket-service/internal/domain/venue"
	"github.com/biletnam/ticket-service/internal/pkg/metrics"
)

type TicketHandler struct {
	service TicketServiceInterface
}

func NewTicketHandler(s TicketServiceInterface) *TicketHandler {
	return &TicketHandler{service: s}
}

type AvailabilityResponse struct {
	AvailableSeats int `json:"available_seats" example:"42"`
}

type CreateHoldRequest struct {
	NumSeats      int    `json:"num_seats" validate:"required" example:"4"`
	CustomerEmail string `json:"customer_email" validate:"required,email" example:"alice@example.com"`
}

type ReserveRequest struct {
	CustomerEmail string `json:"customer_email" validate:"required,email" example:"alice@example.com"`
}

type ReleaseRequest struct {
	CustomerEmail string `json:"customer_email" validate:"required,email" example:"alice@example.com"`
}

type HoldResponse struct {
	ID          string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	VenueID     string    `json:"venue_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	NumSeats    int       `json:"num_seats" example:"4"`
	Status      string    `json:"status" example:"active"`
	BookingCode *string   `json:"booking_code,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type ReserveResponse struct {
	HoldID      string `json:"hold_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	BookingCode string `json:"booking_code" example:"123e4567-e89b-12d3-a456-426614174000"`
}

func toHoldResponse(h *hold.Hold) HoldResponse {
	return HoldResponse{
		ID: h.ID, VenueID: h.VenueID, NumSeats: h.NumSeats,
		Status: string(h.Status), BookingCode: h.BookingCode, CreatedAt: h.CreatedAt,
	}
}

// Availability godoc
// @Summary 空席数を取得
// @Description 会場の現在の空席数を返します
// @Tags tickets
// @Produce json
// @Success 200 {object} AvailabilityResponse
// @Router /venue/availability [get]
func (h *TicketHandler) Availability(c echo.Context) error {
	count, err := h.service.NumSeatsAvailable(c.Request().Context())
	if err != nil {
		if errors.Is(err, venue.ErrVenueNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, AvailabilityResponse{AvailableSeats: count})
}

// CreateHold godoc
// @Summary 座席を仮押さえ
// @Description 空席を確認して座席を仮押さえします
// @Tags tickets
// @Accept json
// @Produce json
// @Param request body CreateHoldRequest true "仮押さえ情報"
// @Success 201 {object} HoldResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string "空席不足"
// @Router /holds [post]
func (h *TicketHandler) CreateHold(c echo.Context) error {
	var req CreateHoldRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.service.FindAndHoldSeats(c.Request().Context(), application.FindAndHoldSeatsInput{
		NumSeats:      req.NumSeats,
		CustomerEmail: req.CustomerEmail,
	})
	if err != nil {
		metrics.RecordHold("failure")
		switch {
		case errors.Is(err, hold.ErrInvalidNumSeats),
			errors.Is(err, customer.ErrEmailRequired),
			errors.Is(err, customer.ErrInvalidEmail):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, venue.ErrVenueNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, venue.ErrNoSeatsAvailable),
			errors.Is(err, venue.ErrInsufficientSeats):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	metrics.RecordHold("success")
	return c.JSON(http.StatusCreated, toHoldResponse(result))
}

// GetHold godoc
// @Summary 仮押さえを取得
// @Description 指定IDの仮押さえを取得します
// @Tags tickets
// @Produce json
// @Param id path string true "仮押さえID"
// @Success 200 {object} HoldResponse
// @Failure 404 {object} map[string]string
// @Router /holds/{id} [get]
func (h *TicketHandler) GetHold(c echo.Context) error {
	id := c.Param("id")
	result, err := h.service.GetHold(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, hold.ErrHoldNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toHoldResponse(result))
}

// GetCustomerHolds godoc
// @Summary 顧客の仮押さえ一覧を取得
// @Description メールアドレスで指定した顧客の仮押さえ一覧を取得します
// @Tags tickets
// @Produce json
// @Param email query string true "顧客メールアドレス"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} HoldResponse
// @Failure 404 {object} map[string]string
// @Router /holds [get]
func (h *TicketHandler) GetCustomerHolds(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "メールアドレスが必要です")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	holds, err := h.service.GetCustomerHolds(c.Request().Context(), email, limit, offset)
	if err != nil {
		if errors.Is(err, customer.ErrCustomerNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]HoldResponse, len(holds))
	for i, item := range holds {
		resp[i] = toHoldResponse(item)
	}
	return c.JSON(http.StatusOK, resp)
}

// Reserve godoc
// @Summary 仮押さえを予約確定
// @Description 有効な仮押さえを予約確定し、予約コードを返します
// @Tags tickets
// @Accept json
// @Produce json
// @Param id path string true "仮押さえID"
// @Param request body ReserveRequest true "確定情報"
// @Success 200 {object} ReserveResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string "メールアドレス不一致"
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "確定済みまたは解放済み"
// @Router /holds/{id}/reserve [post]
func (h *TicketHandler) Reserve(c echo.Context) error {
	id := c.Param("id")
	var req ReserveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	code, err := h.service.ReserveSeats(c.Request().Context(), id, req.CustomerEmail)
	if err != nil {
		metrics.RecordReservation("failure")
		switch {
		case errors.Is(err, hold.ErrHoldNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, hold.ErrEmailMismatch):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, hold.ErrHoldAlreadyBooked),
			errors.Is(err, hold.ErrHoldNotActive):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	metrics.RecordReservation("success")
	return c.JSON(http.StatusOK, ReserveResponse{HoldID: id, BookingCode: code})
}

// Release godoc
// @Summary 仮押さえを解放
// @Description 有効な仮押さえを解放し、座席を空席に戻します
// @Tags tickets
// @Accept json
// @Produce json
// @Param id path string true "仮押さえID"
// @Param request body ReleaseRequest true "解放情報"
// @Success 200 {object} HoldResponse
// @Failure 403 {object} map[string]string "メールアドレス不一致"
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "確定済みまたは解放済み"
// @Router /holds/{id}/release [post]
func (h *TicketHandler) Release(c echo.Context) error {
	id := c.Param("id")
	var req ReleaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.service.ReleaseHold(c.Request().Context(), id, req.CustomerEmail)
	if err != nil {
		switch {
		case errors.Is(err, hold.ErrHoldNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, hold.ErrEmailMismatch):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, hold.ErrHoldAlreadyBooked),
			errors.Is(err, hold.ErrHoldAlreadyReleased):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, toHoldResponse(result))
}

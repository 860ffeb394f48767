package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/meetroom/reservation-service/internal/dto"
	"github.com/meetroom/reservation-service/internal/middleware"
	"github.com/meetroom/reservation-service/internal/models"
	"github.com/meetroom/reservation-service/internal/service"
)

type ReservationHandler struct {
	svc service.ReservationService
}

func NewReservationHandler(svc service.ReservationService) *ReservationHandler {
	return &ReservationHandler{svc: svc}
}

func (h *ReservationHandler) RegisterRoutes(e *echo.Echo, auth echo.MiddlewareFunc) {
	reservations := e.Group("/reservations", auth)
	reservations.POST("", h.CreateReservation)
	reservations.GET("", h.ListReservations)
	reservations.PATCH("/:id/status", h.UpdateReservationStatus, middleware.RequireAdmin)
	reservations.PATCH("/:id/cancel", h.CancelReservation)
}

func (h *ReservationHandler) CreateReservation(c echo.Context) error {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req dto.CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.RoomID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "roomId is required")
	}

	startAt, err := time.Parse(time.RFC3339, req.StartAt)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "startAt must be an ISO-8601 timestamp")
	}
	endAt, err := time.Parse(time.RFC3339, req.EndAt)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "endAt must be an ISO-8601 timestamp")
	}

	reservation, err := h.svc.Create(c.Request().Context(), ident.UserID, req.RoomID, startAt, endAt, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInterval):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrRoomNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrSchedulingConflict):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, dto.ToReservationResponse(reservation))
}

func (h *ReservationHandler) ListReservations(c echo.Context) error {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	reservations, err := h.svc.ListForUser(c.Request().Context(), ident.UserID, ident.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.ReservationResponse, len(reservations))
	for i, r := range reservations {
		resp[i] = dto.ToReservationResponse(&r)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ReservationHandler) UpdateReservationStatus(c echo.Context) error {
	id := c.Param("id")

	var req dto.UpdateReservationStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	reservation, err := h.svc.UpdateStatus(c.Request().Context(), id, models.ReservationStatus(req.Status), req.Reason)
	if err != nil {
		var stateErr *service.InvalidStateError
		switch {
		case errors.Is(err, service.ErrReservationNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidTargetStatus),
			errors.Is(err, service.ErrReasonRequired),
			errors.As(err, &stateErr):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, dto.ToReservationResponse(reservation))
}

func (h *ReservationHandler) CancelReservation(c echo.Context) error {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	id := c.Param("id")

	reservation, err := h.svc.Cancel(c.Request().Context(), id, ident.UserID)
	if err != nil {
		var stateErr *service.InvalidStateError
		switch {
		case errors.Is(err, service.ErrReservationNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotOwner):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.As(err, &stateErr):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, dto.ToReservationResponse(reservation))
}

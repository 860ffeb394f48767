package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/meetroom/reservation-service/internal/dto"
	"github.com/meetroom/reservation-service/internal/repository"
)

// RoomHandler exposes the read-only room directory. Room administration is
// out of scope for this service.
type RoomHandler struct {
	roomRepo repository.RoomRepository
}

func NewRoomHandler(roomRepo repository.RoomRepository) *RoomHandler {
	return &RoomHandler{roomRepo: roomRepo}
}

func (h *RoomHandler) RegisterRoutes(e *echo.Echo, auth echo.MiddlewareFunc) {
	e.GET("/rooms", h.ListRooms, auth)
}

func (h *RoomHandler) ListRooms(c echo.Context) error {
	rooms, err := h.roomRepo.FindActive(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.RoomResponse, len(rooms))
	for i, room := range rooms {
		resp[i] = dto.ToRoomResponse(&room)
	}
	return c.JSON(http.StatusOK, resp)
}

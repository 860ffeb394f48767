package dto

import (
	"time"

	"github.com/meetroom/reservation-service/internal/models"
)

// Wire timestamps are ISO-8601 UTC with millisecond precision and a Z suffix.
const timestampLayout = "2006-01-02T15:04:05.000Z"

type ReservationResponse struct {
	ID        string                   `json:"id"`
	UserID    string                   `json:"userId"`
	RoomID    uint                     `json:"roomId"`
	StartAt   string                   `json:"startAt"`
	EndAt     string                   `json:"endAt"`
	Status    models.ReservationStatus `json:"status"`
	Reason    *string                  `json:"reason"`
	CreatedAt string                   `json:"createdAt"`
	UpdatedAt string                   `json:"updatedAt"`
	Room      *RoomResponse            `json:"room,omitempty"`
}

type RoomResponse struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Capacity    int     `json:"capacity"`
	Description *string `json:"description"`
	IsActive    bool    `json:"isActive"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func ToReservationResponse(r *models.Reservation) ReservationResponse {
	resp := ReservationResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		RoomID:    r.RoomID,
		StartAt:   formatTimestamp(r.StartAt),
		EndAt:     formatTimestamp(r.EndAt),
		Status:    r.Status,
		Reason:    r.Reason,
		CreatedAt: formatTimestamp(r.CreatedAt),
		UpdatedAt: formatTimestamp(r.UpdatedAt),
	}
	if r.Room != nil {
		room := ToRoomResponse(r.Room)
		resp.Room = &room
	}
	return resp
}

func ToRoomResponse(r *models.Room) RoomResponse {
	return RoomResponse{
		ID:          r.ID,
		Name:        r.Name,
		Capacity:    r.Capacity,
		Description: r.Description,
		IsActive:    r.IsActive,
	}
}

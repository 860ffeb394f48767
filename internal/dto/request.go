package dto

type CreateReservationRequest struct {
	RoomID  uint    `json:"roomId"`
	StartAt string  `json:"startAt"`
	EndAt   string  `json:"endAt"`
	Reason  *string `json:"reason,omitempty"`
}

type UpdateReservationStatusRequest struct {
	Status string  `json:"status"`
	Reason *string `json:"reason,omitempty"`
}

package service

import (
	"time"

	"github.com/meetroom/reservation-service/internal/models"
)

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Half-open semantics make back-to-back bookings
// (one ends exactly when the other starts) non-conflicting.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// HasConflict reports whether the candidate interval [start, end) overlaps
// any of the given reservations. Callers are expected to pass only active
// (PENDING or CONFIRMED) rows; terminal rows never block a booking.
func HasConflict(existing []models.Reservation, start, end time.Time) bool {
	for _, r := range existing {
		if Overlaps(r.StartAt, r.EndAt, start, end) {
			return true
		}
	}
	return false
}

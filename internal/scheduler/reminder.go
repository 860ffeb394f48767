// Package scheduler runs the periodic pre-meeting reminder sweep.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/meetroom/reservation-service/internal/models"
	"github.com/meetroom/reservation-service/internal/notifier"
	"github.com/meetroom/reservation-service/internal/repository"
)

const (
	sweepInterval = time.Minute

	// The sweep looks 10 minutes ahead with a window exactly as wide as the
	// sweep period, so each reservation qualifies on exactly one run. A
	// reservation that misses its run (sweep down, dispatch failure) falls out
	// of the window and is not retried: delivery is at-most-one-attempt.
	reminderLead  = 10 * time.Minute
	reminderWidth = time.Minute
)

// ReminderScheduler sweeps for confirmed, unnotified reservations that are
// about to start and dispatches one reminder per reservation.
type ReminderScheduler struct {
	reservationRepo repository.ReservationRepository
	notifier        notifier.Notifier
	location        *time.Location
}

func NewReminderScheduler(reservationRepo repository.ReservationRepository, n notifier.Notifier, location *time.Location) *ReminderScheduler {
	if location == nil {
		location = time.UTC
	}
	return &ReminderScheduler{
		reservationRepo: reservationRepo,
		notifier:        n,
		location:        location,
	}
}

// Start runs the sweep once per minute until ctx is canceled.
func (s *ReminderScheduler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()

		log.Printf("[Reminder] sweep started (every %s, lead %s)", sweepInterval, reminderLead)
		for {
			select {
			case <-ctx.Done():
				log.Println("[Reminder] sweep stopped")
				return
			case <-ticker.C:
				s.RunOnce(ctx, time.Now())
			}
		}
	}()
}

// RunOnce performs a single sweep pass as of the given instant. A failure on
// one reservation never aborts the rest of the batch.
func (s *ReminderScheduler) RunOnce(ctx context.Context, now time.Time) {
	now = now.UTC()
	windowStart := now.Add(reminderLead)
	windowEnd := windowStart.Add(reminderWidth)

	reservations, err := s.reservationRepo.FindDueForReminder(ctx, windowStart, windowEnd)
	if err != nil {
		log.Printf("[Reminder] query failed: %v", err)
		return
	}
	if len(reservations) == 0 {
		return
	}

	log.Printf("[Reminder] dispatching %d reminder(s)", len(reservations))
	for _, reservation := range reservations {
		if err := s.notifier.Send(ctx, s.buildMessage(&reservation)); err != nil {
			log.Printf("[Reminder] dispatch failed for reservation %s: %v", reservation.ID, err)
			continue
		}
		if err := s.reservationRepo.MarkNotified(ctx, reservation.ID); err != nil {
			log.Printf("[Reminder] mark notified failed for reservation %s: %v", reservation.ID, err)
			continue
		}
		log.Printf("[Reminder] sent reminder for reservation %s", reservation.ID)
	}
}

func (s *ReminderScheduler) buildMessage(reservation *models.Reservation) string {
	roomName := "unknown room"
	if reservation.Room != nil {
		roomName = reservation.Room.Name
	}
	attendee := reservation.UserID
	if reservation.User != nil {
		attendee = reservation.User.Name
	}
	startTime := reservation.StartAt.In(s.location).Format("15:04")

	return strings.Join([]string{
		"🔔 Meeting room reminder",
		"",
		fmt.Sprintf("Room: %s", roomName),
		fmt.Sprintf("Reserved by: %s", attendee),
		fmt.Sprintf("Starts at: %s (in about 10 minutes)", startTime),
	}, "\n")
}

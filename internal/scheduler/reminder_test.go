package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/meetroom/reservation-service/internal/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// --- Mock ReservationRepository ---

type mockReservationRepo struct {
	dueFn        func(ctx context.Context, windowStart, windowEnd time.Time) ([]models.Reservation, error)
	notifiedIDs  []string
	markNotifyFn func(ctx context.Context, id string) error
}

func (m *mockReservationRepo) Create(ctx context.Context, tx *gorm.DB, r *models.Reservation) error {
	return nil
}
func (m *mockReservationRepo) FindByID(ctx context.Context, id string) (*models.Reservation, error) {
	return nil, nil
}
func (m *mockReservationRepo) FindAll(ctx context.Context) ([]models.Reservation, error) {
	return nil, nil
}
func (m *mockReservationRepo) FindByUserID(ctx context.Context, userID string) ([]models.Reservation, error) {
	return nil, nil
}
func (m *mockReservationRepo) FindActiveByRoomID(ctx context.Context, tx *gorm.DB, roomID uint) ([]models.Reservation, error) {
	return nil, nil
}
func (m *mockReservationRepo) TransitionStatus(ctx context.Context, id string, from []models.ReservationStatus, updates map[string]interface{}) (int64, error) {
	return 1, nil
}
func (m *mockReservationRepo) FindDueForReminder(ctx context.Context, windowStart, windowEnd time.Time) ([]models.Reservation, error) {
	return m.dueFn(ctx, windowStart, windowEnd)
}
func (m *mockReservationRepo) MarkNotified(ctx context.Context, id string) error {
	if m.markNotifyFn != nil {
		if err := m.markNotifyFn(ctx, id); err != nil {
			return err
		}
	}
	m.notifiedIDs = append(m.notifiedIDs, id)
	return nil
}
func (m *mockReservationRepo) GetDB() *gorm.DB { return nil }

// --- Mock Notifier ---

type mockNotifier struct {
	sent   []string
	sendFn func(ctx context.Context, message string) error
}

func (m *mockNotifier) Send(ctx context.Context, message string) error {
	if m.sendFn != nil {
		if err := m.sendFn(ctx, message); err != nil {
			return err
		}
	}
	m.sent = append(m.sent, message)
	return nil
}

func dueReservation(id string, startAt time.Time) models.Reservation {
	return models.Reservation{
		ID:      id,
		UserID:  "user-1",
		RoomID:  1,
		StartAt: startAt,
		EndAt:   startAt.Add(time.Hour),
		Status:  models.StatusConfirmed,
		Room:    &models.Room{ID: 1, Name: "Aurora", Capacity: 8},
		User:    &models.User{ID: "user-1", Name: "Dana Kim"},
	}
}

func TestRunOnce_WindowBounds(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 30, 0, time.UTC)

	var gotStart, gotEnd time.Time
	repo := &mockReservationRepo{
		dueFn: func(ctx context.Context, windowStart, windowEnd time.Time) ([]models.Reservation, error) {
			gotStart, gotEnd = windowStart, windowEnd
			return nil, nil
		},
	}

	NewReminderScheduler(repo, &mockNotifier{}, time.UTC).RunOnce(context.Background(), now)

	assert.Equal(t, now.Add(10*time.Minute), gotStart)
	assert.Equal(t, now.Add(11*time.Minute), gotEnd)
	assert.Equal(t, time.Minute, gotEnd.Sub(gotStart), "window width must equal the sweep period")
}

func TestRunOnce_DispatchSuccessMarksNotified(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := &mockReservationRepo{
		dueFn: func(ctx context.Context, windowStart, windowEnd time.Time) ([]models.Reservation, error) {
			return []models.Reservation{dueReservation("res-1", windowStart)}, nil
		},
	}
	n := &mockNotifier{}

	NewReminderScheduler(repo, n, time.UTC).RunOnce(context.Background(), now)

	assert.Equal(t, []string{"res-1"}, repo.notifiedIDs)
	assert.Len(t, n.sent, 1)
	assert.Contains(t, n.sent[0], "Aurora")
	assert.Contains(t, n.sent[0], "Dana Kim")
	assert.Contains(t, n.sent[0], "09:10")
}

func TestRunOnce_RendersStartInLocalZone(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	assert.NoError(t, err)

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := &mockReservationRepo{
		dueFn: func(ctx context.Context, windowStart, windowEnd time.Time) ([]models.Reservation, error) {
			return []models.Reservation{dueReservation("res-1", windowStart)}, nil
		},
	}
	n := &mockNotifier{}

	NewReminderScheduler(repo, n, seoul).RunOnce(context.Background(), now)

	// 09:10 UTC is 18:10 KST
	assert.Contains(t, n.sent[0], "18:10")
}

func TestRunOnce_DispatchFailureLeavesUnnotified(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := &mockReservationRepo{
		dueFn: func(ctx context.Context, windowStart, windowEnd time.Time) ([]models.Reservation, error) {
			return []models.Reservation{dueReservation("res-1", windowStart)}, nil
		},
	}
	n := &mockNotifier{
		sendFn: func(ctx context.Context, message string) error {
			return errors.New("webhook down")
		},
	}

	NewReminderScheduler(repo, n, time.UTC).RunOnce(context.Background(), now)

	assert.Empty(t, repo.notifiedIDs, "failed dispatch must not mark the reservation notified")
}

func TestRunOnce_OneFailureDoesNotAbortBatch(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := &mockReservationRepo{
		dueFn: func(ctx context.Context, windowStart, windowEnd time.Time) ([]models.Reservation, error) {
			return []models.Reservation{
				dueReservation("res-1", windowStart),
				dueReservation("res-2", windowStart.Add(20*time.Second)),
				dueReservation("res-3", windowStart.Add(40*time.Second)),
			}, nil
		},
	}
	calls := 0
	n := &mockNotifier{
		sendFn: func(ctx context.Context, message string) error {
			calls++
			if calls == 2 {
				return errors.New("webhook down")
			}
			return nil
		},
	}

	NewReminderScheduler(repo, n, time.UTC).RunOnce(context.Background(), now)

	assert.Equal(t, []string{"res-1", "res-3"}, repo.notifiedIDs)
}

func TestRunOnce_MarkNotifiedFailureIsIsolated(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := &mockReservationRepo{
		dueFn: func(ctx context.Context, windowStart, windowEnd time.Time) ([]models.Reservation, error) {
			return []models.Reservation{
				dueReservation("res-1", windowStart),
				dueReservation("res-2", windowStart.Add(30*time.Second)),
			}, nil
		},
		markNotifyFn: func(ctx context.Context, id string) error {
			if id == "res-1" {
				return errors.New("db gone")
			}
			return nil
		},
	}
	n := &mockNotifier{}

	NewReminderScheduler(repo, n, time.UTC).RunOnce(context.Background(), now)

	assert.Len(t, n.sent, 2, "a save failure must not stop the rest of the batch")
	assert.Equal(t, []string{"res-2"}, repo.notifiedIDs)
}

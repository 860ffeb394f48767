package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/meetroom/reservation-service/internal/models"
	"github.com/meetroom/reservation-service/internal/repository"
	"github.com/meetroom/reservation-service/pkg/rabbitmq"
	"gorm.io/gorm"
)

var (
	ErrInvalidInterval     = errors.New("end time must be after start time")
	ErrRoomNotFound        = errors.New("room not found")
	ErrSchedulingConflict  = errors.New("a reservation already exists for that time slot")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrReasonRequired      = errors.New("a reason is required when rejecting a reservation")
	ErrNotOwner            = errors.New("only the reservation owner can cancel it")
	ErrInvalidTargetStatus = errors.New("target status must be CONFIRMED or REJECTED")
)

// InvalidStateError reports a state-machine violation. It carries the current
// status so the boundary can render a diagnosable message.
type InvalidStateError struct {
	Current models.ReservationStatus
	Allowed string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("reservation is %s: %s", e.Current, e.Allowed)
}

type ReservationService interface {
	Create(ctx context.Context, userID string, roomID uint, startAt, endAt time.Time, reason *string) (*models.Reservation, error)
	ListForUser(ctx context.Context, userID string, role models.UserRole) ([]models.Reservation, error)
	UpdateStatus(ctx context.Context, id string, target models.ReservationStatus, reason *string) (*models.Reservation, error)
	Cancel(ctx context.Context, id, userID string) (*models.Reservation, error)
}

type reservationService struct {
	reservationRepo repository.ReservationRepository
	roomRepo        repository.RoomRepository
	publisher       *rabbitmq.Publisher
}

func NewReservationService(reservationRepo repository.ReservationRepository, roomRepo repository.RoomRepository, publisher *rabbitmq.Publisher) ReservationService {
	return &reservationService{
		reservationRepo: reservationRepo,
		roomRepo:        roomRepo,
		publisher:       publisher,
	}
}

func (s *reservationService) Create(ctx context.Context, userID string, roomID uint, startAt, endAt time.Time, reason *string) (*models.Reservation, error) {
	startAt = startAt.UTC()
	endAt = endAt.UTC()

	if !endAt.After(startAt) {
		return nil, ErrInvalidInterval
	}

	var created *models.Reservation

	err := s.reservationRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Lock the room row — serializes concurrent creates for this room,
		// which is what keeps the conflict scan below race-free.
		if _, err := s.roomRepo.FindByIDForUpdate(ctx, tx, roomID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return err
		}

		// 2. Re-derive conflict state from a fresh read inside the transaction.
		active, err := s.reservationRepo.FindActiveByRoomID(ctx, tx, roomID)
		if err != nil {
			return err
		}
		if HasConflict(active, startAt, endAt) {
			return ErrSchedulingConflict
		}

		// 3. No conflict: exactly one row written.
		reservation := &models.Reservation{
			UserID:  userID,
			RoomID:  roomID,
			StartAt: startAt,
			EndAt:   endAt,
			Status:  models.StatusPending,
			Reason:  reason,
		}
		if err := s.reservationRepo.Create(ctx, tx, reservation); err != nil {
			return err
		}
		created = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.finishCreate(ctx, created), nil
}

// finishCreate reloads the committed reservation with its room attached and
// emits the created event. The row is already committed, so a failed reload
// only degrades the response body; it must not suppress the event.
func (s *reservationService) finishCreate(ctx context.Context, created *models.Reservation) *models.Reservation {
	reservation, err := s.reservationRepo.FindByID(ctx, created.ID)
	if err != nil {
		log.Printf("[Reservation] reload after create failed for %s: %v", created.ID, err)
		reservation = created
	}

	if s.publisher != nil {
		_ = s.publisher.Publish("reservation.created", reservation)
	}
	return reservation
}

func (s *reservationService) ListForUser(ctx context.Context, userID string, role models.UserRole) ([]models.Reservation, error) {
	if role == models.RoleAdmin {
		return s.reservationRepo.FindAll(ctx)
	}
	return s.reservationRepo.FindByUserID(ctx, userID)
}

func (s *reservationService) UpdateStatus(ctx context.Context, id string, target models.ReservationStatus, reason *string) (*models.Reservation, error) {
	if target != models.StatusConfirmed && target != models.StatusRejected {
		return nil, ErrInvalidTargetStatus
	}

	reservation, err := s.reservationRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}

	if reservation.Status != models.StatusPending {
		return nil, &InvalidStateError{
			Current: reservation.Status,
			Allowed: "only PENDING reservations can be confirmed or rejected",
		}
	}

	updates := map[string]interface{}{"status": target}
	switch target {
	case models.StatusRejected:
		if reason == nil || strings.TrimSpace(*reason) == "" {
			return nil, ErrReasonRequired
		}
		updates["reason"] = strings.TrimSpace(*reason)
	case models.StatusConfirmed:
		// Confirmations carry no reason; any user-supplied booking reason is
		// discarded here.
		updates["reason"] = nil
	}

	// The PENDING guard is re-checked by the UPDATE itself, so a reservation
	// canceled between the read above and this write stays canceled.
	rows, err := s.reservationRepo.TransitionStatus(ctx, id, []models.ReservationStatus{models.StatusPending}, updates)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, s.staleStateError(ctx, id, "only PENDING reservations can be confirmed or rejected")
	}

	updated, err := s.reservationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		_ = s.publisher.Publish("reservation."+strings.ToLower(string(target)), updated)
	}
	return updated, nil
}

// staleStateError re-reads a reservation whose guarded status update matched
// no rows and reports what actually blocked the transition.
func (s *reservationService) staleStateError(ctx context.Context, id, allowed string) error {
	reservation, err := s.reservationRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReservationNotFound
		}
		return err
	}
	return &InvalidStateError{Current: reservation.Status, Allowed: allowed}
}

func (s *reservationService) Cancel(ctx context.Context, id, userID string) (*models.Reservation, error) {
	reservation, err := s.reservationRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}

	if reservation.UserID != userID {
		return nil, ErrNotOwner
	}

	if !reservation.Status.IsActive() {
		return nil, &InvalidStateError{
			Current: reservation.Status,
			Allowed: "only PENDING or CONFIRMED reservations can be canceled",
		}
	}

	// Reason is left untouched; a rejection reason never applies here and a
	// booking reason stays part of the record. The active-status guard is
	// re-checked by the UPDATE itself.
	active := []models.ReservationStatus{models.StatusPending, models.StatusConfirmed}
	rows, err := s.reservationRepo.TransitionStatus(ctx, id, active, map[string]interface{}{"status": models.StatusCanceled})
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, s.staleStateError(ctx, id, "only PENDING or CONFIRMED reservations can be canceled")
	}

	updated, err := s.reservationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		_ = s.publisher.Publish("reservation.canceled", updated)
	}
	return updated, nil
}

package repository

import (
	"context"
	"time"

	"github.com/meetroom/reservation-service/internal/models"
	"gorm.io/gorm"
)

type ReservationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error
	FindByID(ctx context.Context, id string) (*models.Reservation, error)
	FindAll(ctx context.Context) ([]models.Reservation, error)
	FindByUserID(ctx context.Context, userID string) ([]models.Reservation, error)
	FindActiveByRoomID(ctx context.Context, tx *gorm.DB, roomID uint) ([]models.Reservation, error)
	TransitionStatus(ctx context.Context, id string, from []models.ReservationStatus, updates map[string]interface{}) (int64, error)
	FindDueForReminder(ctx context.Context, windowStart, windowEnd time.Time) ([]models.Reservation, error)
	MarkNotified(ctx context.Context, id string) error
	GetDB() *gorm.DB
}

type reservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *reservationRepository) Create(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error {
	return tx.WithContext(ctx).Create(reservation).Error
}

func (r *reservationRepository) FindByID(ctx context.Context, id string) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.db.WithContext(ctx).Preload("Room").First(&reservation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepository) FindAll(ctx context.Context) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.WithContext(ctx).
		Preload("Room").
		Order("created_at DESC").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *reservationRepository) FindByUserID(ctx context.Context, userID string) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.WithContext(ctx).
		Preload("Room").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

// FindActiveByRoomID loads the PENDING and CONFIRMED reservations of a room
// within the given transaction. It backs the conflict check, so it must run
// inside the same transaction that holds the room row lock.
func (r *reservationRepository) FindActiveByRoomID(ctx context.Context, tx *gorm.DB, roomID uint) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := tx.WithContext(ctx).
		Where("room_id = ? AND status IN ?", roomID, []models.ReservationStatus{models.StatusPending, models.StatusConfirmed}).
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

// TransitionStatus applies updates to the reservation only while its status is
// still one of from. The guard and the write are a single UPDATE statement, so
// a reservation that already left the allowed statuses is never overwritten.
// A zero row count means the guard failed.
func (r *reservationRepository) TransitionStatus(ctx context.Context, id string, from []models.ReservationStatus, updates map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// FindDueForReminder selects confirmed, unnotified reservations starting in
// [windowStart, windowEnd), with user and room preloaded for the message body.
func (r *reservationRepository) FindDueForReminder(ctx context.Context, windowStart, windowEnd time.Time) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.WithContext(ctx).
		Preload("Room").
		Preload("User").
		Where("is_notified = ? AND status = ?", false, models.StatusConfirmed).
		Where("start_at >= ? AND start_at < ?", windowStart, windowEnd).
		Order("start_at ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *reservationRepository) MarkNotified(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ?", id).
		Update("is_notified", true).Error
}

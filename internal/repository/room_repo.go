package repository

import (
	"context"

	"github.com/meetroom/reservation-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoomRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Room, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Room, error)
	FindActive(ctx context.Context) ([]models.Room, error)
}

type roomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) FindByID(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).First(&room, id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// FindByIDForUpdate acquires a row-level lock on the room within the given
// transaction. All concurrent creates for the same room serialize here, which
// closes the check-then-insert race on the conflict scan.
func (r *roomRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Room, error) {
	var room models.Room
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&room, id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepository) FindActive(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

package database

import (
	"log"

	"github.com/meetroom/reservation-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Room{}, &models.Reservation{}); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	// Partial index: the conflict scan only ever reads active rows of one room
	db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_reservations_room_active
		ON reservations (room_id, start_at)
		WHERE status IN ('PENDING', 'CONFIRMED')
	`)

	return db
}

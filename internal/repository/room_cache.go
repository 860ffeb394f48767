package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/meetroom/reservation-service/internal/models"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const roomCacheTTL = 5 * time.Minute

// cachedRoomRepository is a read-through Redis cache in front of a
// RoomRepository. Rooms are read-only from the reservation core's point of
// view, so entries only ever expire. Lock-taking reads (FindByIDForUpdate)
// always go to the database.
type cachedRoomRepository struct {
	inner RoomRepository
	rdb   *redis.Client
}

// NewCachedRoomRepository wraps inner with a Redis cache. A nil client
// disables caching and returns inner unchanged.
func NewCachedRoomRepository(inner RoomRepository, rdb *redis.Client) RoomRepository {
	if rdb == nil {
		return inner
	}
	return &cachedRoomRepository{inner: inner, rdb: rdb}
}

func roomCacheKey(id uint) string {
	return fmt.Sprintf("room:%d", id)
}

func (r *cachedRoomRepository) FindByID(ctx context.Context, id uint) (*models.Room, error) {
	key := roomCacheKey(id)
	if raw, err := r.rdb.Get(ctx, key).Bytes(); err == nil {
		var room models.Room
		if err := json.Unmarshal(raw, &room); err == nil {
			return &room, nil
		}
	}

	room, err := r.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(room); err == nil {
		if err := r.rdb.Set(ctx, key, raw, roomCacheTTL).Err(); err != nil {
			log.Printf("[RoomCache] set %s failed: %v", key, err)
		}
	}
	return room, nil
}

func (r *cachedRoomRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Room, error) {
	return r.inner.FindByIDForUpdate(ctx, tx, id)
}

func (r *cachedRoomRepository) FindActive(ctx context.Context) ([]models.Room, error) {
	const key = "rooms:active"
	if raw, err := r.rdb.Get(ctx, key).Bytes(); err == nil {
		var rooms []models.Room
		if err := json.Unmarshal(raw, &rooms); err == nil {
			return rooms, nil
		}
	}

	rooms, err := r.inner.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(rooms); err == nil {
		if err := r.rdb.Set(ctx, key, raw, roomCacheTTL).Err(); err != nil {
			log.Printf("[RoomCache] set %s failed: %v", key, err)
		}
	}
	return rooms, nil
}

package service

import (
	"math/rand"
	"testing"
	"time"

	"github.com/meetroom/reservation-service/internal/models"
	"github.com/stretchr/testify/assert"
)

var base = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return base.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func TestOverlaps_Boundaries(t *testing.T) {
	tests := []struct {
		name   string
		aStart, aEnd,
		bStart, bEnd time.Time
		want bool
	}{
		{"identical intervals", at(10, 0), at(12, 0), at(10, 0), at(12, 0), true},
		{"back to back, a then b", at(10, 0), at(12, 0), at(12, 0), at(14, 0), false},
		{"back to back, b then a", at(12, 0), at(14, 0), at(10, 0), at(12, 0), false},
		{"partial overlap", at(10, 0), at(14, 0), at(11, 0), at(13, 0), true},
		{"b contains a", at(11, 0), at(12, 0), at(9, 0), at(15, 0), true},
		{"a contains b", at(9, 0), at(15, 0), at(11, 0), at(12, 0), true},
		{"disjoint with gap", at(8, 0), at(9, 0), at(10, 0), at(11, 0), false},
		{"one minute overlap", at(10, 0), at(12, 1), at(12, 0), at(14, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			// Overlap is symmetric
			assert.Equal(t, tt.want, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

// Randomized intervals must agree with the defining predicate
// a1 < b2 && a2 > b1, including touching boundaries.
func TestOverlaps_Randomized(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	randInterval := func() (time.Time, time.Time) {
		start := rng.Intn(48)
		length := 1 + rng.Intn(12)
		return at(start, 0), at(start+length, 0)
	}

	for i := 0; i < 2000; i++ {
		aStart, aEnd := randInterval()
		bStart, bEnd := randInterval()

		want := aStart.Before(bEnd) && aEnd.After(bStart)
		got := Overlaps(aStart, aEnd, bStart, bEnd)
		assert.Equal(t, want, got,
			"intervals [%v,%v) and [%v,%v)", aStart, aEnd, bStart, bEnd)
	}
}

func TestHasConflict(t *testing.T) {
	existing := []models.Reservation{
		{RoomID: 1, StartAt: at(10, 0), EndAt: at(12, 0), Status: models.StatusPending},
		{RoomID: 1, StartAt: at(15, 0), EndAt: at(16, 0), Status: models.StatusConfirmed},
	}

	assert.False(t, HasConflict(existing, at(12, 0), at(14, 0)), "back-to-back booking must not conflict")
	assert.False(t, HasConflict(existing, at(14, 0), at(15, 0)))
	assert.True(t, HasConflict(existing, at(11, 0), at(13, 0)))
	assert.True(t, HasConflict(existing, at(15, 30), at(15, 45)))
	assert.False(t, HasConflict(nil, at(10, 0), at(12, 0)))
}

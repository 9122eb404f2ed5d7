package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvailableSlots_EmptyDay(t *testing.T) {
	slots := availableSlots(nil)

	assert.Len(t, slots, 10)
	assert.Equal(t, "08:00", slots[0])
	assert.Equal(t, "17:00", slots[len(slots)-1])
}

func TestAvailableSlots_SkipsBookedHours(t *testing.T) {
	slots := availableSlots([]int{10})

	assert.Len(t, slots, 9)
	assert.NotContains(t, slots, "10:00")
	assert.Contains(t, slots, "09:00")
	assert.Contains(t, slots, "11:00")
}

func TestAvailableSlots_BoundaryHours(t *testing.T) {
	slots := availableSlots([]int{8, 17})

	assert.NotContains(t, slots, "08:00")
	assert.NotContains(t, slots, "17:00")
	assert.Len(t, slots, 8)
}

func TestAvailableSlots_HoursOutsideWindowIgnored(t *testing.T) {
	// A booking at 18:00 must not block the 17:00 slot.
	slots := availableSlots([]int{7, 18, 23})

	assert.Len(t, slots, 10)
	assert.Contains(t, slots, "08:00")
	assert.Contains(t, slots, "17:00")
}

func TestAvailableSlots_FullyBooked(t *testing.T) {
	booked := make([]int, 0, 10)
	for h := OpeningHour; h <= ClosingHour; h++ {
		booked = append(booked, h)
	}

	assert.Empty(t, availableSlots(booked))
}

func TestAvailableSlots_Ordering(t *testing.T) {
	slots := availableSlots([]int{12})

	for i := 1; i < len(slots); i++ {
		assert.Less(t, slots[i-1], slots[i])
	}
}

func TestAvailableSlots_DuplicateBookingsCollapse(t *testing.T) {
	// Duplicates can only come from legacy data; they must not produce
	// duplicate or missing labels.
	slots := availableSlots([]int{9, 9, 9})

	assert.Len(t, slots, 9)
	assert.NotContains(t, slots, "09:00")
}

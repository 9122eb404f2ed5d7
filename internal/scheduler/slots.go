package scheduler

import "fmt"

// Business-hours window, inclusive on both ends: ten hourly slots per day.
const (
	OpeningHour = 8
	ClosingHour = 17
)

// availableSlots returns the HH:00 labels of the business hours not present
// in booked, in ascending order.
func availableSlots(booked []int) []string {
	taken := make(map[int]struct{}, len(booked))
	for _, h := range booked {
		taken[h] = struct{}{}
	}

	slots := make([]string, 0, ClosingHour-OpeningHour+1)
	for hour := OpeningHour; hour <= ClosingHour; hour++ {
		if _, ok := taken[hour]; !ok {
			slots = append(slots, fmt.Sprintf("%02d:00", hour))
		}
	}
	return slots
}

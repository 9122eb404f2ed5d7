package scheduler

import "errors"

var (
	ErrPetNotFound             = errors.New("pet not found")
	ErrVetNotFound             = errors.New("veterinarian not found")
	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrForbidden               = errors.New("access denied")
	ErrPastDate                = errors.New("cannot schedule for a past date")
	ErrSlotTaken               = errors.New("veterinarian already booked at this time")
	ErrAlreadyCancelled        = errors.New("appointment already cancelled")
	ErrCancelCompleted         = errors.New("cannot cancel a completed appointment")
	ErrUpdateCompleted         = errors.New("cannot modify a completed appointment")
	ErrInvalidStatus           = errors.New("invalid appointment status")
	ErrInvalidStatusTransition = errors.New("invalid appointment status transition")
)

package service

import "errors"

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrProfileNotFound  = errors.New("profile not found")
	ErrPropertyNotFound = errors.New("property not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrReviewNotFound   = errors.New("review not found")

	ErrUnauthorized = errors.New("unauthorized access to resource")

	ErrInvalidDates        = errors.New("check-out date must be after check-in date")
	ErrTooManyGuests       = errors.New("guest count exceeds property capacity")
	ErrDatesUnavailable    = errors.New("property is not available for selected dates")
	ErrPropertySuspended   = errors.New("property is suspended")
	ErrInvalidBookingState = errors.New("operation is not allowed for current booking status")

	ErrBookingNotCompleted = errors.New("booking is not completed yet")
	ErrReviewExists        = errors.New("review already exists for this booking")
)

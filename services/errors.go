package services

import "errors"

// Booking error taxonomy. Handlers translate these to HTTP statuses; the
// sentinel is the machine-readable kind, anything wrapped around it is the
// human-readable detail.
var (
	ErrValidation          = errors.New("invalid input")
	ErrAlreadyEnrolled     = errors.New("already enrolled in this course")
	ErrCourseNotFound      = errors.New("course not found")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrSessionNotFound     = errors.New("checkout session not found")
	ErrPaymentIncomplete   = errors.New("payment not completed")
	ErrProviderUnavailable = errors.New("payment provider not configured")
	ErrConfiguration       = errors.New("frontend URL not determined; set FRONTEND_URL or send an Origin header")
	ErrPaymentProvider     = errors.New("payment provider error")
	ErrPersistence         = errors.New("failed to persist booking")
)

// ErrorCode returns the stable machine-readable code for a booking error,
// or "internal_error" for anything outside the taxonomy.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrAlreadyEnrolled):
		return "already_enrolled"
	case errors.Is(err, ErrCourseNotFound):
		return "course_not_found"
	case errors.Is(err, ErrBookingNotFound):
		return "booking_not_found"
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrPaymentIncomplete):
		return "payment_incomplete"
	case errors.Is(err, ErrProviderUnavailable):
		return "provider_unavailable"
	case errors.Is(err, ErrConfiguration):
		return "configuration_error"
	case errors.Is(err, ErrPaymentProvider):
		return "payment_provider_error"
	case errors.Is(err, ErrPersistence):
		return "persistence_error"
	default:
		return "internal_error"
	}
}

package services

import (
	"context"
	"time"

	"github.com/URAYUSHJAIN/skillforge/models"
	"github.com/google/uuid"
)

// BookingStore is the persistence port of the booking service. The GORM
// implementation lives in the database package; tests use in-memory fakes.
type BookingStore interface {
	// Create inserts the booking. It must return ErrAlreadyEnrolled when the
	// active-enrollment unique constraint rejects the row, so a race between
	// two concurrent creates loses at the storage layer.
	Create(ctx context.Context, booking *models.Booking) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	GetBySessionID(ctx context.Context, sessionID string) (*models.Booking, error)
	GetByReference(ctx context.Context, reference string) (*models.Booking, error)

	// FindActive returns the Pending or Confirmed booking for the pair, or
	// nil when none exists.
	FindActive(ctx context.Context, userID string, courseID uuid.UUID) (*models.Booking, error)

	// MarkPaid transitions the booking to Paid/Confirmed, setting paidAt and
	// the payment intent id. The update is conditional on the booking not
	// already being Paid; it reports whether a row was changed.
	MarkPaid(ctx context.Context, id uuid.UUID, paymentIntentID string, paidAt time.Time) (bool, error)

	// Cancel sets OrderStatus to Cancelled and reports whether a row matched.
	Cancel(ctx context.Context, id uuid.UUID) (bool, error)

	// MarkFailed transitions a booking to Failed unless it is already Paid.
	MarkFailed(ctx context.Context, id uuid.UUID) error

	ListAll(ctx context.Context) ([]models.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)

	// ListStalePending returns Online bookings still Pending that were
	// created before the cutoff.
	ListStalePending(ctx context.Context, cutoff time.Time) ([]models.Booking, error)

	Stats(ctx context.Context) (*BookingStats, error)
}

// CourseStore resolves the course a booking refers to.
type CourseStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
}

// Notifier receives booking lifecycle events. Implementations must be safe
// for concurrent use; the service invokes them on their own goroutines and
// never lets them affect the operation outcome.
type Notifier interface {
	BookingCreated(booking *models.Booking)
	BookingConfirmed(booking *models.Booking)
	BookingCancelled(booking *models.Booking)
	BookingFailed(booking *models.Booking)
}

type BookingStats struct {
	TotalBookings  int64            `json:"totalBookings"`
	TotalRevenue   float64          `json:"totalRevenue"`
	RecentBookings int64            `json:"recentBookings"`
	PendingOrders  int64            `json:"pendingOrders"`
	TopCourses     []CourseBookings `json:"topCourses"`
}

type CourseBookings struct {
	CourseName string  `json:"courseName"`
	Count      int64   `json:"count"`
	Revenue    float64 `json:"revenue"`
}

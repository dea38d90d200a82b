package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PaymentMethodOnline = "Online"
	PaymentMethodFree   = "Free"

	PaymentStatusUnpaid = "Unpaid"
	PaymentStatusPaid   = "Paid"

	OrderStatusPending   = "Pending"
	OrderStatusConfirmed = "Confirmed"
	OrderStatusCancelled = "Cancelled"
	OrderStatusCompleted = "Completed"
	OrderStatusFailed    = "Failed"
)

// Booking records one user's enrollment attempt for one course. Course name,
// teacher and price are snapshotted at booking time and never updated when
// the course is edited later.
//
// The partial unique index on (user_id, course_id) only covers Pending and
// Confirmed rows, so a user can re-enroll after a Cancelled or Failed
// attempt, but two concurrent creates for the same pair cannot both commit.
type Booking struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Reference string    `gorm:"size:32;not null;unique" json:"reference"`

	UserID    string `gorm:"size:255;not null;uniqueIndex:uniq_active_enrollment,where:order_status IN ('Pending','Confirmed')" json:"user_id"`
	UserName  string `gorm:"size:255" json:"user_name"`
	UserEmail string `gorm:"size:255" json:"user_email"`

	CourseID    uuid.UUID `gorm:"not null;uniqueIndex:uniq_active_enrollment,where:order_status IN ('Pending','Confirmed')" json:"course_id"`
	CourseName  string    `gorm:"size:255" json:"course_name"`
	TeacherName string    `gorm:"size:255" json:"teacher_name"`
	Price       float64   `gorm:"type:numeric(10,2);not null;default:0" json:"price"`

	PaymentMethod string `gorm:"size:50;not null;default:'Online'" json:"payment_method"`
	PaymentStatus string `gorm:"size:50;not null;default:'Unpaid'" json:"payment_status"`
	OrderStatus   string `gorm:"size:50;not null;default:'Pending'" json:"order_status"`

	SessionID       *string    `gorm:"size:255;unique" json:"session_id"`
	PaymentIntentID *string    `gorm:"size:255" json:"payment_intent_id"`
	PaidAt          *time.Time `json:"paid_at"`

	Notes string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Active reports whether this booking blocks another enrollment attempt for
// the same (user, course) pair.
func (b *Booking) Active() bool {
	return b.OrderStatus == OrderStatusPending || b.OrderStatus == OrderStatusConfirmed
}

// Enrolled reports whether the booking grants course access.
func (b *Booking) Enrolled() bool {
	return b.PaymentStatus == PaymentStatusPaid && b.OrderStatus == OrderStatusConfirmed
}

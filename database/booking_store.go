package database

import (
	"context"
	"errors"
	"time"

	"github.com/URAYUSHJAIN/skillforge/models"
	"github.com/URAYUSHJAIN/skillforge/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookingStore is the GORM-backed persistence port of the booking service.
type BookingStore struct {
	db *gorm.DB
}

func NewBookingStore(db *gorm.DB) *BookingStore {
	return &BookingStore{db: db}
}

func (s *BookingStore) Create(ctx context.Context, booking *models.Booking) error {
	err := s.db.WithContext(ctx).Create(booking).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// The partial unique index on (user_id, course_id) rejected the row:
		// an active booking for the pair already exists.
		return services.ErrAlreadyEnrolled
	}
	return err
}

func (s *BookingStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).First(&booking, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (s *BookingStore) GetBySessionID(ctx context.Context, sessionID string) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).First(&booking, "session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (s *BookingStore) GetByReference(ctx context.Context, reference string) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).First(&booking, "reference = ?", reference).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (s *BookingStore) FindActive(ctx context.Context, userID string, courseID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ? AND order_status IN ?", userID, courseID,
			[]string{models.OrderStatusPending, models.OrderStatusConfirmed}).
		First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// MarkPaid is conditional on the booking not already being Paid, which makes
// the confirm transition safe under duplicate webhook delivery.
func (s *BookingStore) MarkPaid(ctx context.Context, id uuid.UUID, paymentIntentID string, paidAt time.Time) (bool, error) {
	updates := map[string]interface{}{
		"payment_status": models.PaymentStatusPaid,
		"order_status":   models.OrderStatusConfirmed,
		"paid_at":        paidAt,
	}
	if paymentIntentID != "" {
		updates["payment_intent_id"] = paymentIntentID
	}

	result := s.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND payment_status <> ?", id, models.PaymentStatusPaid).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *BookingStore) Cancel(ctx context.Context, id uuid.UUID) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Update("order_status", models.OrderStatusCancelled)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *BookingStore) MarkFailed(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND payment_status <> ?", id, models.PaymentStatusPaid).
		Update("order_status", models.OrderStatusFailed).Error
}

func (s *BookingStore) ListAll(ctx context.Context) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).Order("created_at desc").Find(&bookings).Error
	return bookings, err
}

func (s *BookingStore) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&bookings).Error
	return bookings, err
}

func (s *BookingStore) ListStalePending(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Where("payment_method = ? AND order_status = ? AND created_at < ?",
			models.PaymentMethodOnline, models.OrderStatusPending, cutoff).
		Find(&bookings).Error
	return bookings, err
}

func (s *BookingStore) Stats(ctx context.Context) (*services.BookingStats, error) {
	db := s.db.WithContext(ctx)
	stats := &services.BookingStats{}

	if err := db.Model(&models.Booking{}).Count(&stats.TotalBookings).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Booking{}).
		Where("payment_status = ?", models.PaymentStatusPaid).
		Select("COALESCE(SUM(price), 0)").
		Scan(&stats.TotalRevenue).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Booking{}).
		Where("created_at >= ?", time.Now().AddDate(0, 0, -7)).
		Count(&stats.RecentBookings).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Booking{}).
		Where("order_status = ?", models.OrderStatusPending).
		Count(&stats.PendingOrders).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Booking{}).
		Select("course_name, COUNT(*) as count, COALESCE(SUM(price), 0) as revenue").
		Group("course_name").
		Order("count desc").
		Limit(6).
		Scan(&stats.TopCourses).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

// CourseStore resolves courses for the booking service.
type CourseStore struct {
	db *gorm.DB
}

func NewCourseStore(db *gorm.DB) *CourseStore {
	return &CourseStore{db: db}
}

func (s *CourseStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	var course models.Course
	err := s.db.WithContext(ctx).First(&course, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

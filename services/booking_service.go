package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	config "github.com/URAYUSHJAIN/skillforge/configs"
	"github.com/URAYUSHJAIN/skillforge/models"
	"github.com/URAYUSHJAIN/skillforge/payments"
	"github.com/URAYUSHJAIN/skillforge/utils"
	"github.com/google/uuid"
)

// BookingService owns the booking state machine from enrollment intent to a
// terminal state, coordinating the local bookings table with the payment
// provider's checkout sessions. Constructed once at startup; all
// dependencies are injected and immutable afterwards.
type BookingService struct {
	store    BookingStore
	courses  CourseStore
	provider payments.CheckoutProvider
	notifier Notifier
	cfg      config.BookingConfig
}

func NewBookingService(
	store BookingStore,
	courses CourseStore,
	provider payments.CheckoutProvider,
	notifier Notifier,
	cfg config.BookingConfig,
) *BookingService {
	return &BookingService{
		store:    store,
		courses:  courses,
		provider: provider,
		notifier: notifier,
		cfg:      cfg,
	}
}

type CreateBookingInput struct {
	UserID    string
	UserName  string
	UserEmail string
	CourseID  uuid.UUID
	Price     float64
	Notes     string

	// ReturnBase is the Origin/Host-derived fallback for provider return
	// URLs; the configured FRONTEND_URL wins when set.
	ReturnBase string
}

type CreateBookingResult struct {
	Booking     *models.Booking
	CheckoutURL string
}

// Create validates the enrollment request and branches on free vs paid. The
// course row is authoritative for the price and the snapshot fields; the
// client-declared price is only sanity-checked.
func (s *BookingService) Create(ctx context.Context, in CreateBookingInput) (*CreateBookingResult, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrValidation)
	}
	if in.CourseID == uuid.Nil {
		return nil, fmt.Errorf("%w: courseId is required", ErrValidation)
	}
	if math.IsNaN(in.Price) || math.IsInf(in.Price, 0) || in.Price < 0 {
		return nil, fmt.Errorf("%w: price must be a valid non-negative number", ErrValidation)
	}

	course, err := s.courses.GetByID(ctx, in.CourseID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}

	existing, err := s.store.FindActive(ctx, in.UserID, in.CourseID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if existing != nil {
		return nil, ErrAlreadyEnrolled
	}

	price := course.EffectivePrice()
	booking := &models.Booking{
		Reference:   utils.GenerateBookingReference(),
		UserID:      in.UserID,
		UserName:    in.UserName,
		UserEmail:   in.UserEmail,
		CourseID:    course.ID,
		CourseName:  course.Name,
		TeacherName: course.Teacher,
		Price:       price,
		Notes:       in.Notes,
	}

	if price == 0 {
		return s.createFree(ctx, booking)
	}
	return s.createPaid(ctx, booking, in)
}

// createFree persists the booking directly in its terminal happy state. The
// provider is never contacted.
func (s *BookingService) createFree(ctx context.Context, booking *models.Booking) (*CreateBookingResult, error) {
	now := time.Now()
	booking.PaymentMethod = models.PaymentMethodFree
	booking.PaymentStatus = models.PaymentStatusPaid
	booking.OrderStatus = models.OrderStatusConfirmed
	booking.PaidAt = &now

	if err := s.store.Create(ctx, booking); err != nil {
		if errors.Is(err, ErrAlreadyEnrolled) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	go s.notifier.BookingConfirmed(booking)

	return &CreateBookingResult{Booking: booking}, nil
}

func (s *BookingService) createPaid(ctx context.Context, booking *models.Booking, in CreateBookingInput) (*CreateBookingResult, error) {
	if s.provider == nil {
		return nil, ErrProviderUnavailable
	}

	base := s.returnBase(in.ReturnBase)
	if base == "" {
		return nil, ErrConfiguration
	}

	session, err := s.provider.CreateSession(ctx, payments.CreateSessionParams{
		Currency:      s.cfg.Currency,
		AmountMinor:   int64(math.Round(booking.Price * 100)),
		ProductName:   booking.CourseName,
		CustomerEmail: booking.UserEmail,
		SuccessURL:    base + "/booking/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     base + "/booking/cancel",
		Metadata: map[string]string{
			"bookingId": booking.Reference,
			"courseId":  booking.CourseID.String(),
			"userId":    booking.UserID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}

	booking.PaymentMethod = models.PaymentMethodOnline
	booking.PaymentStatus = models.PaymentStatusUnpaid
	booking.OrderStatus = models.OrderStatusPending
	booking.SessionID = &session.ID

	if err := s.store.Create(ctx, booking); err != nil {
		if errors.Is(err, ErrAlreadyEnrolled) {
			// Lost the race to a concurrent enrollment. The session just
			// created is orphaned on the provider side and left to expire.
			log.Printf("🔥 Duplicate enrollment race for user %s course %s, orphaned session %s", booking.UserID, booking.CourseID, session.ID)
			return nil, ErrAlreadyEnrolled
		}
		// The provider session exists but we have no booking row for it. The
		// reconcile job can still confirm it through the metadata fallback
		// if the customer pays, but the operator needs to know.
		log.Printf("🔥 CRITICAL: checkout session %s created but booking insert failed: %v", session.ID, err)
		return nil, fmt.Errorf("%w: checkout session %s may be orphaned", ErrPersistence, session.ID)
	}

	go s.notifier.BookingCreated(booking)

	return &CreateBookingResult{Booking: booking, CheckoutURL: session.URL}, nil
}

func (s *BookingService) returnBase(fallback string) string {
	base := s.cfg.FrontendURL
	if base == "" {
		base = fallback
	}
	return strings.TrimRight(base, "/")
}

// ConfirmPayment reconciles a checkout session against the stored booking
// and transitions it to Paid/Confirmed. It is idempotent: a second delivery
// for an already-paid booking is a no-op success, and it does not care
// whether the polling endpoint or the webhook invoked it.
func (s *BookingService) ConfirmPayment(ctx context.Context, sessionID string) (*models.Booking, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session_id is required", ErrValidation)
	}
	if s.provider == nil {
		return nil, ErrProviderUnavailable
	}

	session, err := s.provider.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, payments.ErrSessionMissing) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}

	if session.PaymentStatus != payments.PaymentStatusPaid {
		return nil, ErrPaymentIncomplete
	}

	booking, err := s.store.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if booking == nil {
		// The session may have been created by a code path that persisted
		// the booking under a different session id; fall back to the
		// reference carried in the session metadata.
		if ref := session.Metadata["bookingId"]; ref != "" {
			booking, err = s.store.GetByReference(ctx, ref)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
			}
		}
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	if booking.PaymentStatus == models.PaymentStatusPaid {
		return booking, nil
	}

	now := time.Now()
	updated, err := s.store.MarkPaid(ctx, booking.ID, session.PaymentIntentID, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	booking.PaymentStatus = models.PaymentStatusPaid
	booking.OrderStatus = models.OrderStatusConfirmed
	if booking.PaidAt == nil {
		booking.PaidAt = &now
	}
	if session.PaymentIntentID != "" {
		booking.PaymentIntentID = &session.PaymentIntentID
	}

	if updated {
		go s.notifier.BookingConfirmed(booking)
	}

	return booking, nil
}

// Cancel flags the booking Cancelled regardless of payment status. It never
// contacts the provider: there is no refund flow, which is a known gap.
func (s *BookingService) Cancel(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	booking, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	matched, err := s.store.Cancel(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !matched {
		return nil, ErrBookingNotFound
	}

	booking.OrderStatus = models.OrderStatusCancelled
	go s.notifier.BookingCancelled(booking)

	return booking, nil
}

// CheckEnrollment reports whether the user holds a paid, confirmed booking
// for the course. Read-only.
func (s *BookingService) CheckEnrollment(ctx context.Context, userID string, courseID uuid.UUID) (bool, *models.Booking, error) {
	booking, err := s.store.FindActive(ctx, userID, courseID)
	if err != nil {
		return false, nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if booking == nil || !booking.Enrolled() {
		return false, nil, nil
	}
	return true, booking, nil
}

func (s *BookingService) ListAll(ctx context.Context) ([]models.Booking, error) {
	return s.store.ListAll(ctx)
}

func (s *BookingService) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *BookingService) Stats(ctx context.Context) (*BookingStats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return stats, nil
}

// ReconcileStalePending sweeps Online bookings that sat in Pending past the
// session TTL. Paid sessions are confirmed through the same idempotent
// transition as ConfirmPayment; expired or unpaid ones are marked Failed. It
// never re-creates checkout sessions.
func (s *BookingService) ReconcileStalePending(ctx context.Context) (confirmed, failed int, err error) {
	if s.provider == nil {
		return 0, 0, nil
	}

	cutoff := time.Now().Add(-s.cfg.PendingTTL)
	stale, err := s.store.ListStalePending(ctx, cutoff)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	for i := range stale {
		booking := &stale[i]
		if booking.SessionID == nil {
			continue
		}

		session, err := s.provider.GetSession(ctx, *booking.SessionID)
		switch {
		case errors.Is(err, payments.ErrSessionMissing):
			if err := s.fail(ctx, booking); err == nil {
				failed++
			}
		case err != nil:
			// Transient provider error; leave the booking for the next run.
			log.Printf("Reconcile: could not retrieve session %s: %v", *booking.SessionID, err)
		case session.PaymentStatus == payments.PaymentStatusPaid:
			now := time.Now()
			updated, err := s.store.MarkPaid(ctx, booking.ID, session.PaymentIntentID, now)
			if err != nil {
				log.Printf("Reconcile: failed to confirm booking %s: %v", booking.ID, err)
				continue
			}
			if updated {
				booking.PaymentStatus = models.PaymentStatusPaid
				booking.OrderStatus = models.OrderStatusConfirmed
				booking.PaidAt = &now
				go s.notifier.BookingConfirmed(booking)
				confirmed++
			}
		default:
			if err := s.fail(ctx, booking); err == nil {
				failed++
			}
		}
	}

	return confirmed, failed, nil
}

func (s *BookingService) fail(ctx context.Context, booking *models.Booking) error {
	if err := s.store.MarkFailed(ctx, booking.ID); err != nil {
		log.Printf("Reconcile: failed to mark booking %s failed: %v", booking.ID, err)
		return err
	}
	booking.OrderStatus = models.OrderStatusFailed
	go s.notifier.BookingFailed(booking)
	return nil
}

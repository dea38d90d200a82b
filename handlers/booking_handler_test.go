package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	config "github.com/URAYUSHJAIN/skillforge/configs"
	"github.com/URAYUSHJAIN/skillforge/models"
	"github.com/URAYUSHJAIN/skillforge/payments"
	"github.com/URAYUSHJAIN/skillforge/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*models.Booking
}

func (m *memStore) Create(_ context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.bookings {
		if existing.UserID == b.UserID && existing.CourseID == b.CourseID && existing.Active() {
			return services.ErrAlreadyEnrolled
		}
	}
	b.ID = uuid.New()
	b.CreatedAt = time.Now()
	clone := *b
	m.bookings[b.ID] = &clone
	return nil
}

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.bookings[id]; ok {
		clone := *b
		return &clone, nil
	}
	return nil, nil
}

func (m *memStore) GetBySessionID(_ context.Context, sessionID string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.SessionID != nil && *b.SessionID == sessionID {
			clone := *b
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetByReference(_ context.Context, reference string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.Reference == reference {
			clone := *b
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindActive(_ context.Context, userID string, courseID uuid.UUID) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.UserID == userID && b.CourseID == courseID && b.Active() {
			clone := *b
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *memStore) MarkPaid(_ context.Context, id uuid.UUID, intentID string, paidAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.PaymentStatus == models.PaymentStatusPaid {
		return false, nil
	}
	b.PaymentStatus = models.PaymentStatusPaid
	b.OrderStatus = models.OrderStatusConfirmed
	b.PaidAt = &paidAt
	if intentID != "" {
		b.PaymentIntentID = &intentID
	}
	return true, nil
}

func (m *memStore) Cancel(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return false, nil
	}
	b.OrderStatus = models.OrderStatusCancelled
	return true, nil
}

func (m *memStore) MarkFailed(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.bookings[id]; ok && b.PaymentStatus != models.PaymentStatusPaid {
		b.OrderStatus = models.OrderStatusFailed
	}
	return nil
}

func (m *memStore) ListAll(_ context.Context) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Booking, 0, len(m.bookings))
	for _, b := range m.bookings {
		out = append(out, *b)
	}
	return out, nil
}

func (m *memStore) ListByUser(_ context.Context, userID string) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memStore) ListStalePending(_ context.Context, cutoff time.Time) ([]models.Booking, error) {
	return nil, nil
}

func (m *memStore) Stats(_ context.Context) (*services.BookingStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &services.BookingStats{}
	for _, b := range m.bookings {
		stats.TotalBookings++
		if b.PaymentStatus == models.PaymentStatusPaid {
			stats.TotalRevenue += b.Price
		}
	}
	return stats, nil
}

type memCourses struct {
	courses map[uuid.UUID]*models.Course
}

func (m *memCourses) GetByID(_ context.Context, id uuid.UUID) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, nil
}

type memProvider struct {
	mu        sync.Mutex
	createErr error
	sessions  map[string]*payments.CheckoutSession
	nextID    int
}

func (m *memProvider) CreateSession(_ context.Context, p payments.CreateSessionParams) (*payments.CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.nextID++
	sess := &payments.CheckoutSession{
		ID:            fmt.Sprintf("cs_test_%d", m.nextID),
		URL:           fmt.Sprintf("https://checkout.test/cs_test_%d", m.nextID),
		PaymentStatus: "unpaid",
		Metadata:      p.Metadata,
	}
	m.sessions[sess.ID] = sess
	return sess, nil
}

func (m *memProvider) GetSession(_ context.Context, sessionID string) (*payments.CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[sessionID]; ok {
		clone := *sess
		return &clone, nil
	}
	return nil, payments.ErrSessionMissing
}

func (m *memProvider) markPaid(sessionID, intentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID].PaymentStatus = payments.PaymentStatusPaid
	m.sessions[sessionID].PaymentIntentID = intentID
}

type noopNotifier struct{}

func (noopNotifier) BookingCreated(*models.Booking)   {}
func (noopNotifier) BookingConfirmed(*models.Booking) {}
func (noopNotifier) BookingCancelled(*models.Booking) {}
func (noopNotifier) BookingFailed(*models.Booking)    {}

type bookingTestApp struct {
	app      *fiber.App
	provider *memProvider
	course   *models.Course
}

// fakeAuth plants the parsed token the way the JWT middleware would.
func fakeAuth(userID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if userID != "" {
			c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"user_id": userID}})
		}
		return c.Next()
	}
}

func newBookingTestApp(t *testing.T, course *models.Course, userID string) *bookingTestApp {
	t.Helper()

	store := &memStore{bookings: make(map[uuid.UUID]*models.Booking)}
	provider := &memProvider{sessions: make(map[string]*payments.CheckoutSession)}
	courses := &memCourses{courses: map[uuid.UUID]*models.Course{course.ID: course}}

	svc := services.NewBookingService(store, courses, provider, noopNotifier{}, config.BookingConfig{
		Currency:    "inr",
		FrontendURL: "https://skillforge.test",
		PendingTTL:  24 * time.Hour,
	})
	h := NewBookingHandler(svc, "")

	app := fiber.New()
	app.Post("/bookings/webhook", h.HandleWebhook)
	app.Use(fakeAuth(userID))
	app.Post("/bookings", h.CreateBooking)
	app.Get("/bookings/confirm", h.ConfirmPayment)
	app.Get("/bookings/check/:userId/:courseId", h.CheckEnrollment)
	app.Get("/bookings/user/:userId", h.ListUserBookings)
	app.Delete("/bookings/:id", h.CancelBooking)
	app.Get("/admin/bookings", h.ListBookings)
	app.Get("/admin/bookings/stats", h.GetStats)

	return &bookingTestApp{app: app, provider: provider, course: course}
}

func (ta *bookingTestApp) do(t *testing.T, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &payload))

	return resp.StatusCode, payload
}

func testCourse(price float64) *models.Course {
	pricing := models.PricingTypePaid
	if price == 0 {
		pricing = models.PricingTypeFree
	}
	return &models.Course{
		ID:          uuid.New(),
		Name:        "Distributed Systems",
		Teacher:     "Asha Rao",
		PricingType: pricing,
		PriceSale:   price,
	}
}

func TestCreateBookingEndpointFree(t *testing.T) {
	course := testCourse(0)
	ta := newBookingTestApp(t, course, "user-1")

	status, body := ta.do(t, http.MethodPost, "/bookings", fiber.Map{"courseId": course.ID.String()})
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, body["success"])
	assert.Nil(t, body["checkoutUrl"])

	booking := body["booking"].(map[string]interface{})
	assert.Equal(t, models.OrderStatusConfirmed, booking["order_status"])
	assert.Equal(t, models.PaymentStatusPaid, booking["payment_status"])
}

func TestCreateBookingEndpointPaid(t *testing.T) {
	course := testCourse(499)
	ta := newBookingTestApp(t, course, "user-1")

	status, body := ta.do(t, http.MethodPost, "/bookings", fiber.Map{"courseId": course.ID.String()})
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "https://checkout.test/cs_test_1", body["checkoutUrl"])

	booking := body["booking"].(map[string]interface{})
	assert.Equal(t, models.OrderStatusPending, booking["order_status"])
	assert.Equal(t, float64(499), booking["price"])
}

func TestCreateBookingEndpointRejects(t *testing.T) {
	course := testCourse(499)
	ta := newBookingTestApp(t, course, "user-1")

	// Malformed course id.
	status, _ := ta.do(t, http.MethodPost, "/bookings", fiber.Map{"courseId": "not-a-uuid"})
	assert.Equal(t, http.StatusBadRequest, status)

	// Unknown course.
	status, body := ta.do(t, http.MethodPost, "/bookings", fiber.Map{"courseId": uuid.New().String()})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "course_not_found", body["code"])

	// Duplicate enrollment.
	status, _ = ta.do(t, http.MethodPost, "/bookings", fiber.Map{"courseId": course.ID.String()})
	require.Equal(t, http.StatusCreated, status)
	status, body = ta.do(t, http.MethodPost, "/bookings", fiber.Map{"courseId": course.ID.String()})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "already_enrolled", body["code"])
}

func TestCreateBookingEndpointNameFallback(t *testing.T) {
	course := testCourse(0)
	ta := newBookingTestApp(t, course, "u1")

	status, body := ta.do(t, http.MethodPost, "/bookings", fiber.Map{"courseId": course.ID.String()})
	require.Equal(t, http.StatusCreated, status)

	booking := body["booking"].(map[string]interface{})
	assert.Equal(t, "User-u1", booking["user_name"], "short user ids still get a display name")
}

func TestCreateBookingEndpointUnauthenticated(t *testing.T) {
	course := testCourse(0)
	ta := newBookingTestApp(t, course, "")

	status, _ := ta.do(t, http.MethodPost, "/bookings", fiber.Map{"courseId": course.ID.String()})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCreateBookingEndpointProviderDown(t *testing.T) {
	course := testCourse(499)
	ta := newBookingTestApp(t, course, "user-1")
	ta.provider.createErr = errors.New("stripe is down")

	status, body := ta.do(t, http.MethodPost, "/bookings", fiber.Map{"courseId": course.ID.String()})
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "payment_provider_error", body["code"])
}

func TestConfirmPaymentEndpoint(t *testing.T) {
	course := testCourse(499)
	ta := newBookingTestApp(t, course, "user-1")

	status, _ := ta.do(t, http.MethodPost, "/bookings", fiber.Map{"courseId": course.ID.String()})
	require.Equal(t, http.StatusCreated, status)

	// Not paid yet.
	status, body := ta.do(t, http.MethodGet, "/bookings/confirm?session_id=cs_test_1", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "payment_incomplete", body["code"])

	ta.provider.markPaid("cs_test_1", "pi_1")

	status, body = ta.do(t, http.MethodGet, "/bookings/confirm?session_id=cs_test_1", nil)
	assert.Equal(t, http.StatusOK, status)
	booking := body["booking"].(map[string]interface{})
	assert.Equal(t, models.OrderStatusConfirmed, booking["order_status"])

	// Unknown session.
	status, body = ta.do(t, http.MethodGet, "/bookings/confirm?session_id=cs_nope", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "session_not_found", body["code"])

	// Enrollment now reports true.
	status, body = ta.do(t, http.MethodGet, "/bookings/check/user-1/"+course.ID.String(), nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["isEnrolled"])
}

func TestWebhookEndpoint(t *testing.T) {
	course := testCourse(499)
	ta := newBookingTestApp(t, course, "user-1")

	status, _ := ta.do(t, http.MethodPost, "/bookings", fiber.Map{"courseId": course.ID.String()})
	require.Equal(t, http.StatusCreated, status)
	ta.provider.markPaid("cs_test_1", "pi_1")

	event := fiber.Map{
		"type": "checkout.session.completed",
		"data": fiber.Map{"object": fiber.Map{"id": "cs_test_1"}},
	}
	status, body := ta.do(t, http.MethodPost, "/bookings/webhook", event)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	// Redelivery is acknowledged, not an error.
	status, _ = ta.do(t, http.MethodPost, "/bookings/webhook", event)
	assert.Equal(t, http.StatusOK, status)

	// Irrelevant event types are ignored.
	status, body = ta.do(t, http.MethodPost, "/bookings/webhook", fiber.Map{
		"type": "invoice.paid",
		"data": fiber.Map{"object": fiber.Map{"id": "in_1"}},
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Event ignored", body["message"])
}

func TestCancelBookingEndpoint(t *testing.T) {
	course := testCourse(0)
	ta := newBookingTestApp(t, course, "user-1")

	status, body := ta.do(t, http.MethodPost, "/bookings", fiber.Map{"courseId": course.ID.String()})
	require.Equal(t, http.StatusCreated, status)
	booking := body["booking"].(map[string]interface{})
	id := booking["id"].(string)

	status, _ = ta.do(t, http.MethodDelete, "/bookings/"+id, nil)
	assert.Equal(t, http.StatusOK, status)

	status, body = ta.do(t, http.MethodDelete, "/bookings/"+uuid.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "booking_not_found", body["code"])

	status, _ = ta.do(t, http.MethodDelete, "/bookings/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestBookingListsAndStats(t *testing.T) {
	course := testCourse(0)
	ta := newBookingTestApp(t, course, "user-1")

	status, _ := ta.do(t, http.MethodPost, "/bookings", fiber.Map{"courseId": course.ID.String()})
	require.Equal(t, http.StatusCreated, status)

	status, body := ta.do(t, http.MethodGet, "/bookings/user/user-1", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["bookings"], 1)

	status, body = ta.do(t, http.MethodGet, "/bookings/user/somebody-else", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["bookings"])

	status, body = ta.do(t, http.MethodGet, "/admin/bookings", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["bookings"], 1)

	status, body = ta.do(t, http.MethodGet, "/admin/bookings/stats", nil)
	assert.Equal(t, http.StatusOK, status)
	stats := body["stats"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["totalBookings"])
}

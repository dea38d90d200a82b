package handlers

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/URAYUSHJAIN/skillforge/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76/webhook"
)

// BookingHandler is the HTTP boundary of the booking lifecycle manager. The
// service is injected at startup; the handler only parses, delegates and
// maps errors to statuses.
type BookingHandler struct {
	svc           *services.BookingService
	webhookSecret string
}

func NewBookingHandler(svc *services.BookingService, webhookSecret string) *BookingHandler {
	return &BookingHandler{svc: svc, webhookSecret: webhookSecret}
}

type CreateBookingRequest struct {
	CourseID    string  `json:"courseId" validate:"required,uuid"`
	CourseName  string  `json:"courseName"`
	TeacherName string  `json:"teacherName"`
	Price       float64 `json:"price" validate:"gte=0"`
	StudentName string  `json:"studentName"`
	Email       string  `json:"email" validate:"omitempty,email"`
	Notes       string  `json:"notes"`
}

func (h *BookingHandler) CreateBooking(c *fiber.Ctx) error {
	userID := authUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Authentication required"})
	}

	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid courseId"})
	}

	studentName := req.StudentName
	if studentName == "" {
		studentName = req.Email
	}
	if studentName == "" {
		short := userID
		if len(short) > 8 {
			short = short[:8]
		}
		studentName = "User-" + short
	}

	result, err := h.svc.Create(c.Context(), services.CreateBookingInput{
		UserID:     userID,
		UserName:   studentName,
		UserEmail:  req.Email,
		CourseID:   courseID,
		Price:      req.Price,
		Notes:      req.Notes,
		ReturnBase: requestBase(c),
	})
	if err != nil {
		return bookingError(c, err)
	}

	var checkoutURL interface{}
	if result.CheckoutURL != "" {
		checkoutURL = result.CheckoutURL
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":     true,
		"booking":     result.Booking,
		"checkoutUrl": checkoutURL,
	})
}

// ConfirmPayment is the client-invoked polling trigger; the webhook below
// funnels into the same idempotent service operation.
func (h *BookingHandler) ConfirmPayment(c *fiber.Ctx) error {
	sessionID := c.Query("session_id")

	booking, err := h.svc.ConfirmPayment(c.Context(), sessionID)
	if err != nil {
		return bookingError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "booking": booking})
}

type webhookSession struct {
	ID string `json:"id"`
}

func (h *BookingHandler) HandleWebhook(c *fiber.Ctx) error {
	body := c.Body()

	var eventType string
	var raw json.RawMessage

	if h.webhookSecret != "" {
		event, err := webhook.ConstructEvent(body, c.Get("Stripe-Signature"), h.webhookSecret)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid webhook signature"})
		}
		eventType = string(event.Type)
		raw = event.Data.Raw
	} else {
		var payload struct {
			Type string `json:"type"`
			Data struct {
				Object json.RawMessage `json:"object"`
			} `json:"data"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot parse webhook payload"})
		}
		eventType = payload.Type
		raw = payload.Data.Object
	}

	if eventType != "checkout.session.completed" {
		return c.JSON(fiber.Map{"success": true, "message": "Event ignored"})
	}

	var session webhookSession
	if err := json.Unmarshal(raw, &session); err != nil || session.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Webhook payload has no session id"})
	}

	_, err := h.svc.ConfirmPayment(c.Context(), session.ID)
	switch {
	case errors.Is(err, services.ErrPaymentIncomplete):
		// Final from the provider's point of view; acknowledge so the
		// delivery is not retried.
		return c.JSON(fiber.Map{"success": true, "message": "Acknowledged: payment not completed"})
	case err != nil:
		log.Printf("🔥 Webhook confirm failed for session %s: %v", session.ID, err)
		return bookingError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "Payment confirmed"})
}

func (h *BookingHandler) CancelBooking(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid booking id"})
	}

	if _, err := h.svc.Cancel(c.Context(), id); err != nil {
		return bookingError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "Booking cancelled"})
}

func (h *BookingHandler) CheckEnrollment(c *fiber.Ctx) error {
	userID := c.Params("userId")
	courseID, err := uuid.Parse(c.Params("courseId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid courseId"})
	}

	enrolled, booking, err := h.svc.CheckEnrollment(c.Context(), userID, courseID)
	if err != nil {
		return bookingError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "isEnrolled": enrolled, "booking": booking})
}

func (h *BookingHandler) ListBookings(c *fiber.Ctx) error {
	bookings, err := h.svc.ListAll(c.Context())
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "bookings": bookings})
}

func (h *BookingHandler) ListUserBookings(c *fiber.Ctx) error {
	bookings, err := h.svc.ListByUser(c.Context(), c.Params("userId"))
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "bookings": bookings})
}

func (h *BookingHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.svc.Stats(c.Context())
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "stats": stats})
}

// bookingError maps the service error taxonomy onto HTTP statuses with a
// stable machine-readable code. Nothing outside the taxonomy leaks through.
func bookingError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrPaymentIncomplete):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrAlreadyEnrolled):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrCourseNotFound),
		errors.Is(err, services.ErrBookingNotFound),
		errors.Is(err, services.ErrSessionNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrPaymentProvider):
		status = fiber.StatusBadGateway
	}

	message := err.Error()
	if services.ErrorCode(err) == "internal_error" {
		log.Printf("🔥 Unexpected booking error: %v", err)
		message = "Server error"
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"code":    services.ErrorCode(err),
		"message": message,
	})
}

// requestBase derives the provider return-URL base from the request when no
// frontend URL is configured, mirroring the Origin-then-Host fallback of the
// storefront.
func requestBase(c *fiber.Ctx) string {
	if origin := c.Get("Origin"); origin != "" {
		return origin
	}
	if host := c.Hostname(); host != "" {
		return c.Protocol() + "://" + host
	}
	return ""
}

func authUserID(c *fiber.Ctx) string {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	userID, _ := claims["user_id"].(string)
	return userID
}

package routes

import (
	"github.com/URAYUSHJAIN/skillforge/handlers"
	"github.com/URAYUSHJAIN/skillforge/middleware"
	"github.com/gofiber/fiber/v2"
)

func BookingRoutes(app *fiber.App, h *handlers.BookingHandler) {
	api := app.Group("/api/v1")

	// The webhook carries its own signature; JWT middleware would reject it.
	api.Post("/bookings/webhook", h.HandleWebhook)

	booking := api.Group("/bookings", middleware.Protected())
	booking.Post("", h.CreateBooking)
	booking.Get("/confirm", h.ConfirmPayment)
	booking.Get("/check/:userId/:courseId", h.CheckEnrollment)
	booking.Get("/user/:userId", h.ListUserBookings)
	booking.Delete("/:id", h.CancelBooking)

	adminBooking := api.Group("/admin/bookings", middleware.Protected(), middleware.AdminRequired())
	adminBooking.Get("", h.ListBookings)
	adminBooking.Get("/stats", h.GetStats)
}

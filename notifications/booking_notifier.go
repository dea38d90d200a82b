package notifications

import (
	"fmt"
	"log"

	"github.com/URAYUSHJAIN/skillforge/models"
	ws "github.com/URAYUSHJAIN/skillforge/websocket"
)

// BookingNotifier fans booking lifecycle events out to the student's inbox
// and the admin websocket feed. Implements services.Notifier.
type BookingNotifier struct {
	mail *EmailService
}

func NewBookingNotifier(mail *EmailService) *BookingNotifier {
	return &BookingNotifier{mail: mail}
}

func (n *BookingNotifier) BookingCreated(booking *models.Booking) {
	ws.Publish(ws.EventBookingCreated, booking)
}

func (n *BookingNotifier) BookingConfirmed(booking *models.Booking) {
	ws.Publish(ws.EventBookingConfirmed, booking)
	n.email(booking,
		"Your Enrollment is Confirmed!",
		fmt.Sprintf("<h1>Enrollment Confirmed</h1><p>You are now enrolled in <b>%s</b>. Head to My Courses to start learning.</p>", booking.CourseName),
	)
}

func (n *BookingNotifier) BookingCancelled(booking *models.Booking) {
	ws.Publish(ws.EventBookingCancelled, booking)
}

func (n *BookingNotifier) BookingFailed(booking *models.Booking) {
	ws.Publish(ws.EventBookingFailed, booking)
	n.email(booking,
		"Your Enrollment Could Not Be Completed",
		fmt.Sprintf("<h1>Payment Incomplete</h1><p>We could not confirm the payment for <b>%s</b>. You can try enrolling again from the course page.</p>", booking.CourseName),
	)
}

func (n *BookingNotifier) email(booking *models.Booking, subject, htmlContent string) {
	if n.mail == nil || booking.UserEmail == "" {
		return
	}
	if err := n.mail.Send(booking.UserName, booking.UserEmail, subject, htmlContent); err != nil {
		log.Printf("🔥 Failed to email %s: %v", booking.UserEmail, err)
		return
	}
	log.Printf("✅ Email sent to %s", booking.UserEmail)
}

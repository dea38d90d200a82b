package notifications

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/URAYUSHJAIN/skillforge/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailServiceSend(t *testing.T) {
	var got emailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	svc := &EmailService{
		apiKey:      "key",
		senderEmail: "noreply@skillforge.test",
		senderName:  "SkillForge",
		endpoint:    srv.URL,
		client:      srv.Client(),
	}

	require.NoError(t, svc.Send("Dev", "dev@example.com", "Welcome", "<p>hi</p>"))
	require.Len(t, got.To, 1)
	assert.Equal(t, "dev@example.com", got.To[0].Email)
	assert.Equal(t, "Dev", got.To[0].Name)
	assert.Equal(t, "noreply@skillforge.test", got.Sender.Email)

	// Recipient name falls back to the mailbox part.
	require.NoError(t, svc.Send("", "dev@example.com", "Welcome", "<p>hi</p>"))
	assert.Equal(t, "dev", got.To[0].Name)

	assert.Error(t, svc.Send("Dev", "not-an-email", "Welcome", "<p>hi</p>"))
}

func TestEmailServiceSendRejectedByProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	svc := &EmailService{
		apiKey:   "bad-key",
		endpoint: srv.URL,
		client:   srv.Client(),
	}

	err := svc.Send("Dev", "dev@example.com", "Welcome", "<p>hi</p>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestEmailServiceNilReceiver(t *testing.T) {
	var svc *EmailService
	assert.NoError(t, svc.Send("Dev", "dev@example.com", "Welcome", "<p>hi</p>"))
}

func TestBookingNotifierWithoutMailer(t *testing.T) {
	n := NewBookingNotifier(nil)
	booking := &models.Booking{UserName: "Dev", UserEmail: "dev@example.com", CourseName: "Go Basics"}

	// No mailer configured: events still publish and nothing panics.
	n.BookingCreated(booking)
	n.BookingConfirmed(booking)
	n.BookingCancelled(booking)
	n.BookingFailed(booking)
}

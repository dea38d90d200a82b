package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	config "github.com/URAYUSHJAIN/skillforge/configs"
)

const brevoSendURL = "https://api.brevo.com/v3/smtp/email"

// EmailService delivers transactional mail through Brevo's REST API. A nil
// *EmailService is a valid no-op sender, so callers never branch on whether
// email is configured.
type EmailService struct {
	apiKey      string
	senderEmail string
	senderName  string
	endpoint    string
	client      *http.Client
}

// NewEmailService reads the Brevo credentials from the environment and
// returns nil when any of them is missing.
func NewEmailService() *EmailService {
	apiKey := config.Config("BREVO_API_KEY")
	senderEmail := config.Config("EMAIL_SENDER")
	senderName := config.Config("EMAIL_SENDER_NAME")

	if apiKey == "" || senderEmail == "" || senderName == "" {
		log.Println("⚠️ BREVO_API_KEY/EMAIL_SENDER/EMAIL_SENDER_NAME not set, transactional email is disabled")
		return nil
	}

	log.Println("✅ Email service initialized")
	return &EmailService{
		apiKey:      apiKey,
		senderEmail: senderEmail,
		senderName:  senderName,
		endpoint:    brevoSendURL,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

type emailRecipient struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type emailRequest struct {
	Sender      emailRecipient   `json:"sender"`
	To          []emailRecipient `json:"to"`
	Subject     string           `json:"subject"`
	HTMLContent string           `json:"htmlContent"`
}

// Send posts one HTML email. Safe to call on a nil receiver.
func (s *EmailService) Send(toName, toEmail, subject, htmlContent string) error {
	if s == nil {
		return nil
	}
	if !strings.Contains(toEmail, "@") {
		return fmt.Errorf("invalid recipient email %q", toEmail)
	}
	if toName == "" {
		toName = strings.Split(toEmail, "@")[0]
	}

	body, err := json.Marshal(emailRequest{
		Sender:      emailRecipient{Email: s.senderEmail, Name: s.senderName},
		To:          []emailRecipient{{Email: toEmail, Name: toName}},
		Subject:     subject,
		HTMLContent: htmlContent,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("content-type", "application/json")
	req.Header.Set("api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("brevo returned status %d: %s", resp.StatusCode, detail)
	}

	return nil
}

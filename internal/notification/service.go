// internal/notification/service.go
// Event notifications for match and session activity.
// Delivery is fire-and-forget: failures are logged, never returned to callers.

package notification

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/skillbarter/backend/internal/users"
)

// Service sends user-facing notifications
type Service interface {
	SendMatchRequest(to, from *users.User)
	SendMatchAccepted(to, from *users.User)
	SendSessionScheduled(to, from *users.User, scheduledAt time.Time)
}

// notificationService implements Service
type notificationService struct {
	email   EmailProvider
	sms     SMSProvider
	baseURL string
}

// NewService creates a notification service
func NewService(email EmailProvider, sms SMSProvider, baseURL string) Service {
	return &notificationService{email: email, sms: sms, baseURL: baseURL}
}

func (s *notificationService) SendMatchRequest(to, from *users.User) {
	subject := fmt.Sprintf("%s wants to exchange skills with you", from.Name)
	plain := fmt.Sprintf(
		"Hi %s,\n\n%s sent you a skill exchange request. Open SkillBarter to respond.\n\n%s",
		to.Name, from.Name, s.baseURL)
	html := fmt.Sprintf(
		`<p>Hi %s,</p><p><strong>%s</strong> sent you a skill exchange request.</p><p><a href="%s/matches">Respond to the request</a></p>`,
		to.Name, from.Name, s.baseURL)

	s.deliver(to.Email, subject, plain, html)
	s.deliverSMS(to.Phone, fmt.Sprintf("SkillBarter: %s sent you a skill exchange request.", from.Name))
}

func (s *notificationService) SendMatchAccepted(to, from *users.User) {
	subject := fmt.Sprintf("%s accepted your skill exchange request", from.Name)
	plain := fmt.Sprintf(
		"Hi %s,\n\n%s accepted your skill exchange request. You can now chat and schedule sessions.\n\n%s",
		to.Name, from.Name, s.baseURL)
	html := fmt.Sprintf(
		`<p>Hi %s,</p><p><strong>%s</strong> accepted your skill exchange request. You can now chat and schedule sessions.</p><p><a href="%s/matches">View the match</a></p>`,
		to.Name, from.Name, s.baseURL)

	s.deliver(to.Email, subject, plain, html)
	s.deliverSMS(to.Phone, fmt.Sprintf("SkillBarter: %s accepted your skill exchange request.", from.Name))
}

func (s *notificationService) SendSessionScheduled(to, from *users.User, scheduledAt time.Time) {
	when := scheduledAt.Format("Mon, 02 Jan 2006 at 15:04 MST")
	subject := fmt.Sprintf("Session with %s scheduled", from.Name)
	plain := fmt.Sprintf(
		"Hi %s,\n\n%s scheduled a session with you for %s.\n\n%s",
		to.Name, from.Name, when, s.baseURL)
	html := fmt.Sprintf(
		`<p>Hi %s,</p><p><strong>%s</strong> scheduled a session with you for <strong>%s</strong>.</p><p><a href="%s/matches">View the session</a></p>`,
		to.Name, from.Name, when, s.baseURL)

	s.deliver(to.Email, subject, plain, html)
	s.deliverSMS(to.Phone, fmt.Sprintf("SkillBarter: %s scheduled a session with you for %s.", from.Name, when))
}

// deliver sends asynchronously with a bounded timeout
func (s *notificationService) deliver(to, subject, plain, html string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.email.SendEmail(ctx, to, subject, plain, html); err != nil {
			log.Printf("Failed to send notification to %s: %v", to, err)
		}
	}()
}

// deliverSMS sends a text asynchronously; users without a phone are skipped
func (s *notificationService) deliverSMS(to, body string) {
	if to == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.sms.SendSMS(ctx, to, body); err != nil {
			log.Printf("Failed to send SMS to %s: %v", to, err)
		}
	}()
}

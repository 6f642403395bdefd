// internal/notification/providers.go
// Email and SMS delivery providers

package notification

import (
	"context"
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// EmailProvider sends transactional email
type EmailProvider interface {
	SendEmail(ctx context.Context, to, subject, plainText, htmlContent string) error
}

// SMSProvider sends text messages
type SMSProvider interface {
	SendSMS(ctx context.Context, to, body string) error
}

// sendGridProvider implements EmailProvider using SendGrid
type sendGridProvider struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

// NewSendGridProvider creates a SendGrid email provider
func NewSendGridProvider(apiKey, fromEmail, fromName string) EmailProvider {
	return &sendGridProvider{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (p *sendGridProvider) SendEmail(ctx context.Context, to, subject, plainText, htmlContent string) error {
	from := mail.NewEmail(p.fromName, p.fromEmail)
	toEmail := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, toEmail, plainText, htmlContent)

	response, err := p.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}

// twilioProvider implements SMSProvider using Twilio
type twilioProvider struct {
	client     *twilio.RestClient
	fromNumber string
}

// NewTwilioProvider creates a Twilio SMS provider
func NewTwilioProvider(accountSID, authToken, fromNumber string) SMSProvider {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &twilioProvider{client: client, fromNumber: fromNumber}
}

func (p *twilioProvider) SendSMS(_ context.Context, to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(p.fromNumber)
	params.SetBody(body)

	_, err := p.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	return nil
}

// mockProvider logs instead of delivering, for development and tests
type mockProvider struct{}

// NewMockEmailProvider creates a logging email provider
func NewMockEmailProvider() EmailProvider {
	return &mockProvider{}
}

// NewMockSMSProvider creates a logging SMS provider
func NewMockSMSProvider() SMSProvider {
	return &mockProvider{}
}

func (p *mockProvider) SendEmail(_ context.Context, to, subject, plainText, _ string) error {
	log.Printf("[MOCK EMAIL] to=%s subject=%q body=%q", to, subject, plainText)
	return nil
}

func (p *mockProvider) SendSMS(_ context.Context, to, body string) error {
	log.Printf("[MOCK SMS] to=%s body=%q", to, body)
	return nil
}

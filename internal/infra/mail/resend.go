package mail

import (
	"context"
	"fmt"
	"net/url"

	"github.com/NasaVasa/oddswatch/internal/domain"
	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// ResendMailer delivers alert emails through the Resend API.
type ResendMailer struct {
	client *resend.Client
	logger *zap.Logger
}

func NewResendMailer(apiKey string, logger *zap.Logger) *ResendMailer {
	return &ResendMailer{client: resend.NewClient(apiKey), logger: logger}
}

// WithBaseURL points the mailer at another API host.
func (m *ResendMailer) WithBaseURL(raw string) (*ResendMailer, error) {
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse resend base url: %w", err)
	}
	m.client.BaseURL = base
	return m, nil
}

func (m *ResendMailer) Send(ctx context.Context, email domain.Email) error {
	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    email.From,
		To:      []string{email.To},
		Subject: email.Subject,
		Html:    email.HTML,
	})
	if err != nil {
		return fmt.Errorf("resend send: %w", err)
	}
	m.logger.Debug("email accepted", zap.String("email_id", sent.Id), zap.String("subject", email.Subject))
	return nil
}

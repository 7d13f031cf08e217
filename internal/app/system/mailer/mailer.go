// Package mailer sends transactional email through Mailjet.
//
// When no API keys are configured the mailer degrades to logging the
// email instead of sending it, so local development does not need a
// Mailjet account.
package mailer

import (
	"context"
	"fmt"

	mailjet "github.com/mailjet/mailjet-apiv3-go/v4"
	"go.uber.org/zap"
)

// Email is one outbound message.
type Email struct {
	To       string
	ToName   string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer sends email. The verification flow is the only caller today.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// Config holds the sender identity and Mailjet credentials.
type Config struct {
	FromEmail string
	FromName  string
	PublicKey string
	SecretKey string
}

// New returns a Mailjet-backed mailer, or a log-only mailer when keys
// are absent.
func New(cfg Config, logger *zap.Logger) Mailer {
	if cfg.PublicKey == "" || cfg.SecretKey == "" {
		logger.Warn("mailjet keys not configured; emails will be logged, not sent")
		return &logMailer{from: cfg.FromEmail, log: logger}
	}
	return &mailjetMailer{
		client: mailjet.NewMailjetClient(cfg.PublicKey, cfg.SecretKey),
		cfg:    cfg,
		log:    logger,
	}
}

type mailjetMailer struct {
	client *mailjet.Client
	cfg    Config
	log    *zap.Logger
}

func (m *mailjetMailer) Send(ctx context.Context, email Email) error {
	messages := mailjet.MessagesV31{Info: []mailjet.InfoMessagesV31{
		{
			From: &mailjet.RecipientV31{
				Email: m.cfg.FromEmail,
				Name:  m.cfg.FromName,
			},
			To: &mailjet.RecipientsV31{
				{Email: email.To, Name: email.ToName},
			},
			Subject:  email.Subject,
			TextPart: email.TextBody,
			HTMLPart: email.HTMLBody,
		},
	}}

	if _, err := m.client.SendMailV31(&messages); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	m.log.Info("email sent",
		zap.String("to", email.To),
		zap.String("subject", email.Subject))
	return nil
}

// logMailer records emails instead of sending them. The full text body
// appears in the log so a developer can copy the verification code.
type logMailer struct {
	from string
	log  *zap.Logger
}

func (m *logMailer) Send(_ context.Context, email Email) error {
	m.log.Info("email (not sent; mailjet disabled)",
		zap.String("from", m.from),
		zap.String("to", email.To),
		zap.String("subject", email.Subject),
		zap.String("text", email.TextBody))
	return nil
}

package mailer

import (
	"context"
	"fmt"

	"github.com/vegobolt/vegobolt-backend/pkg/config"
	"github.com/vegobolt/vegobolt-backend/pkg/logger"
	"github.com/wneessen/go-mail"
)

// Sender is the outbound mail surface the auth service depends on.
// Deliveries are best effort: callers log failures and keep going.
type Sender interface {
	SendVerificationEmail(ctx context.Context, to, displayName, verifyURL string) error
	SendPasswordResetEmail(ctx context.Context, to, displayName, resetURL string) error
}

// Mailer sends transactional mail over SMTP.
type Mailer struct {
	cfg    config.SMTPConfig
	client *mail.Client
	logger *logger.Logger
}

// New builds the SMTP mailer. Returns a disabled mailer when the transport
// is not configured, so dev environments work without an SMTP server.
func New(cfg config.SMTPConfig, logg *logger.Logger) (*Mailer, error) {
	m := &Mailer{cfg: cfg, logger: logg}
	if !cfg.Configured() {
		return m, nil
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("building smtp client: %w", err)
	}
	m.client = client
	return m, nil
}

// SendVerificationEmail delivers the account verification link.
func (m *Mailer) SendVerificationEmail(ctx context.Context, to, displayName, verifyURL string) error {
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Welcome to VegoBolt. Please verify your email address by clicking the link below:</p>
<p><a href="%s">Verify my email</a></p>
<p>This link expires in 24 hours. If you did not create an account, you can ignore this message.</p>`,
		displayName, verifyURL)
	return m.send(ctx, to, "Verify your VegoBolt account", body)
}

// SendPasswordResetEmail delivers the password reset link.
func (m *Mailer) SendPasswordResetEmail(ctx context.Context, to, displayName, resetURL string) error {
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>We received a request to reset your VegoBolt password. Click the link below to choose a new one:</p>
<p><a href="%s">Reset my password</a></p>
<p>This link expires in 1 hour. If you did not request a reset, you can ignore this message.</p>`,
		displayName, resetURL)
	return m.send(ctx, to, "Reset your VegoBolt password", body)
}

func (m *Mailer) send(ctx context.Context, to, subject, htmlBody string) error {
	if m.client == nil {
		if m.logger != nil {
			ctx = m.logger.WithField(ctx, "subject", subject)
			m.logger.Warn(ctx, "smtp not configured, dropping outbound email")
		}
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("setting from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}

package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/pkg/logger"
)

// Mailer sends the transactional emails of the service.
type Mailer interface {
	domain.WelcomeMailer
}

var (
	_ Mailer = (*SMTPMailer)(nil)
	_ Mailer = (*LogMailer)(nil)
)

// Config holds the configuration for the mailer
type Config struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
	AppURL       string
}

// SMTPMailer implements the Mailer interface using SMTP
type SMTPMailer struct {
	config   *Config
	renderer *Renderer
	send     func(ctx context.Context, msg *mail.Msg) error
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(config *Config) *SMTPMailer {
	m := &SMTPMailer{
		config:   config,
		renderer: NewRenderer(config.AppURL),
	}
	m.send = m.dialAndSend
	return m
}

// SendWelcome renders the welcome template and delivers it
func (m *SMTPMailer) SendWelcome(ctx context.Context, user *domain.User, plan *domain.Plan) error {
	email := welcomeFor(user, plan)
	rendered, err := m.renderer.Welcome(ctx, email)
	if err != nil {
		return err
	}

	msg, err := m.buildMessage(email.Email, rendered)
	if err != nil {
		return err
	}

	if err := m.send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

func (m *SMTPMailer) buildMessage(to string, rendered *RenderedEmail) (*mail.Msg, error) {
	msg := mail.NewMsg(mail.WithNoDefaultUserAgent())

	if err := msg.FromFormat(m.config.FromName, m.config.FromEmail); err != nil {
		return nil, fmt.Errorf("failed to set email from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("failed to set email recipient: %w", err)
	}

	msg.Subject(rendered.Subject)
	msg.SetBodyString(mail.TypeTextHTML, rendered.HTML)
	msg.AddAlternativeString(mail.TypeTextPlain, rendered.Text)
	return msg, nil
}

func (m *SMTPMailer) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	client, err := m.createSMTPClient()
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// createSMTPClient creates and configures a new SMTP client
func (m *SMTPMailer) createSMTPClient() (*mail.Client, error) {
	clientOptions := []mail.Option{
		mail.WithPort(m.config.SMTPPort),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(10 * time.Second),
	}

	// Unauthenticated relays (port 25, local MTAs) are allowed
	if m.config.SMTPUsername != "" && m.config.SMTPPassword != "" {
		clientOptions = append(clientOptions,
			mail.WithUsername(m.config.SMTPUsername),
			mail.WithPassword(m.config.SMTPPassword),
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
		)
	}

	client, err := mail.NewClient(m.config.SMTPHost, clientOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	return client, nil
}

// LogMailer is used when SMTP is not configured: it renders the email and logs it.
type LogMailer struct {
	renderer *Renderer
	logger   logger.Logger
}

func NewLogMailer(appURL string, log logger.Logger) *LogMailer {
	return &LogMailer{renderer: NewRenderer(appURL), logger: log}
}

func (m *LogMailer) SendWelcome(ctx context.Context, user *domain.User, plan *domain.Plan) error {
	email := welcomeFor(user, plan)
	rendered, err := m.renderer.Welcome(ctx, email)
	if err != nil {
		return err
	}
	m.logger.WithFields(map[string]interface{}{
		"to":      email.Email,
		"subject": rendered.Subject,
	}).Info("SMTP not configured, welcome email not sent")
	m.logger.Debug(rendered.Text)
	return nil
}

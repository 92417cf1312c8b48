package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/pkg/logger"
)

func testConfig() *Config {
	return &Config{
		SMTPHost:  "smtp.example.com",
		SMTPPort:  587,
		FromEmail: "hello@cineprep.app",
		FromName:  "CinePrep",
		AppURL:    "https://app.example.com",
	}
}

func TestRenderer_Welcome(t *testing.T) {
	renderer := NewRenderer("https://app.example.com")

	t.Run("with display name", func(t *testing.T) {
		rendered, err := renderer.Welcome(context.Background(), WelcomeEmail{
			Email:           "tom@example.com",
			DisplayName:     "Tom & Jerry",
			PlanName:        "Free",
			MonthlyAnalyses: 5,
			MonthlyAudio:    2,
		})
		require.NoError(t, err)

		assert.Equal(t, "Welcome to CinePrep, Tom & Jerry", rendered.Subject)
		assert.Contains(t, rendered.HTML, "<!doctype html>")
		assert.Contains(t, rendered.HTML, "Tom &amp; Jerry")
		assert.Contains(t, rendered.HTML, `href="https://app.example.com"`)
		assert.Contains(t, rendered.Text, "Hi Tom & Jerry,")
		assert.Contains(t, rendered.Text, "5 lore analyses and 2 audio narrations")
		assert.Contains(t, rendered.Text, "Open CinePrep: https://app.example.com")
	})

	t.Run("without display name", func(t *testing.T) {
		rendered, err := renderer.Welcome(context.Background(), WelcomeEmail{Email: "anon@example.com"})
		require.NoError(t, err)

		assert.Equal(t, "Welcome to CinePrep", rendered.Subject)
		assert.Contains(t, rendered.Text, "Hi there,")
		assert.Contains(t, rendered.Text, "Free")
	})

	t.Run("markup in names is escaped", func(t *testing.T) {
		rendered, err := renderer.Welcome(context.Background(), WelcomeEmail{
			Email:       "x@example.com",
			DisplayName: "<script>alert(1)</script>",
		})
		require.NoError(t, err)
		assert.NotContains(t, rendered.HTML, "<script>alert(1)</script>")
	})
}

func TestSMTPMailer_SendWelcome(t *testing.T) {
	t.Run("builds and sends the message", func(t *testing.T) {
		m := NewSMTPMailer(testConfig())
		var sent *mail.Msg
		m.send = func(ctx context.Context, msg *mail.Msg) error {
			sent = msg
			return nil
		}

		err := m.SendWelcome(context.Background(), &domain.User{Email: "jane@example.com", DisplayName: "Jane"}, domain.FreePlan())
		require.NoError(t, err)
		require.NotNil(t, sent)

		to, err := sent.GetToString()
		require.NoError(t, err)
		assert.Equal(t, []string{"<jane@example.com>"}, to)
		assert.Equal(t, []string{"Welcome to CinePrep, Jane"}, sent.GetGenHeader(mail.HeaderSubject))

		var buf bytes.Buffer
		_, err = sent.WriteTo(&buf)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "text/plain")
		assert.Contains(t, buf.String(), "text/html")
	})

	t.Run("send failure", func(t *testing.T) {
		m := NewSMTPMailer(testConfig())
		m.send = func(ctx context.Context, msg *mail.Msg) error {
			return errors.New("connection refused")
		}

		err := m.SendWelcome(context.Background(), &domain.User{Email: "jane@example.com"}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to send welcome email")
	})

	t.Run("invalid recipient", func(t *testing.T) {
		m := NewSMTPMailer(testConfig())
		m.send = func(ctx context.Context, msg *mail.Msg) error {
			t.Fatal("send must not be called")
			return nil
		}

		err := m.SendWelcome(context.Background(), &domain.User{Email: "not an email"}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "recipient")
	})
}

func TestSMTPMailer_CreateSMTPClient(t *testing.T) {
	cfg := testConfig()
	cfg.SMTPUsername = "user"
	cfg.SMTPPassword = "pass"

	client, err := NewSMTPMailer(cfg).createSMTPClient()
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestLogMailer_SendWelcome(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer("https://app.example.com", logger.NewLoggerWithWriter(&buf))

	err := m.SendWelcome(context.Background(), &domain.User{Email: "jane@example.com", DisplayName: "Jane"}, domain.FreePlan())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "jane@example.com")
	assert.Contains(t, buf.String(), "Welcome to CinePrep, Jane")
}

func TestWelcomeFor(t *testing.T) {
	email := welcomeFor(&domain.User{Email: "a@example.com", DisplayName: "A"}, &domain.Plan{
		Name:                     "Premium",
		MaxAnalysesPerMonth:      -1,
		MaxAudioGenerationsMonth: 50,
	})
	assert.Equal(t, "Premium", email.PlanName)
	assert.Equal(t, -1, email.MonthlyAnalyses)

	rendered, err := NewRenderer("").Welcome(context.Background(), email)
	require.NoError(t, err)
	assert.Contains(t, rendered.Text, "unlimited lore analyses and 50 audio narrations")
	assert.Contains(t, rendered.HTML, "https://cineprep.app")
}

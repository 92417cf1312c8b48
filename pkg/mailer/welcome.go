package mailer

import (
	"context"
	"fmt"
	"strings"

	mjmlgo "github.com/Boostport/mjml-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/osteele/liquid"

	"github.com/CinePrep/cineprep/internal/domain"
)

// WelcomeEmail carries the data shown in the welcome message.
type WelcomeEmail struct {
	Email           string
	DisplayName     string
	PlanName        string
	MonthlyAnalyses int
	MonthlyAudio    int
}

func welcomeFor(user *domain.User, plan *domain.Plan) WelcomeEmail {
	email := WelcomeEmail{Email: user.Email, DisplayName: user.DisplayName}
	if plan != nil {
		email.PlanName = plan.Name
		email.MonthlyAnalyses = plan.MaxAnalysesPerMonth
		email.MonthlyAudio = plan.MaxAudioGenerationsMonth
	}
	return email
}

type RenderedEmail struct {
	Subject string
	HTML    string
	Text    string
}

const welcomeSubject = `Welcome to CinePrep{% if name != "" %}, {{ name }}{% endif %}`

const welcomeTemplate = `<mjml>
  <mj-head>
    <mj-title>Welcome to CinePrep</mj-title>
    <mj-attributes>
      <mj-all font-family="Helvetica, Arial, sans-serif" />
      <mj-text font-size="15px" line-height="22px" color="#1f2933" />
    </mj-attributes>
  </mj-head>
  <mj-body background-color="#0f1115">
    <mj-section background-color="#ffffff" padding="32px 24px">
      <mj-column>
        <mj-text font-size="22px" font-weight="bold">Hi {% if name != "" %}{{ name | escape }}{% else %}there{% endif %},</mj-text>
        <mj-text>Your CinePrep account is ready. Pick a movie, tell us what you have already watched, and we will catch you up on the story so far without spoiling the new one.</mj-text>
        <mj-text>You are on the <strong>{{ plan | escape }}</strong> plan: {% if analyses < 0 %}unlimited{% else %}{{ analyses }}{% endif %} lore analyses and {% if audio < 0 %}unlimited{% else %}{{ audio }}{% endif %} audio narrations every month.</mj-text>
        <mj-button href="{{ app_url }}" background-color="#e50914" color="#ffffff">Open CinePrep</mj-button>
        <mj-text font-size="12px" color="#7b8794">You received this email because you signed up for CinePrep.</mj-text>
      </mj-column>
    </mj-section>
  </mj-body>
</mjml>`

// Renderer turns the liquid/MJML templates into a subject, HTML and plain text.
type Renderer struct {
	engine *liquid.Engine
	appURL string
}

func NewRenderer(appURL string) *Renderer {
	if appURL == "" {
		appURL = "https://cineprep.app"
	}
	return &Renderer{engine: liquid.NewEngine(), appURL: appURL}
}

func (r *Renderer) Welcome(ctx context.Context, email WelcomeEmail) (*RenderedEmail, error) {
	plan := email.PlanName
	if plan == "" {
		plan = "Free"
	}
	bindings := map[string]interface{}{
		"name":     strings.TrimSpace(email.DisplayName),
		"plan":     plan,
		"analyses": email.MonthlyAnalyses,
		"audio":    email.MonthlyAudio,
		"app_url":  r.appURL,
	}

	subject, err := r.engine.ParseAndRenderString(welcomeSubject, bindings)
	if err != nil {
		return nil, fmt.Errorf("failed to render welcome subject: %w", err)
	}

	source, err := r.engine.ParseAndRenderString(welcomeTemplate, bindings)
	if err != nil {
		return nil, fmt.Errorf("failed to render welcome template: %w", err)
	}

	html, err := mjmlgo.ToHTML(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to compile welcome MJML: %w", err)
	}

	text, err := plainText(html)
	if err != nil {
		return nil, err
	}

	return &RenderedEmail{Subject: subject, HTML: html, Text: text}, nil
}

// plainText extracts the readable text of each block, one per line.
func plainText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse rendered email: %w", err)
	}

	var lines []string
	doc.Find("body").Find("div, a").Each(func(_ int, s *goquery.Selection) {
		if s.Children().Filter("div, table").Length() > 0 {
			return
		}
		line := strings.Join(strings.Fields(s.Text()), " ")
		if line == "" {
			return
		}
		if href, ok := s.Attr("href"); ok && goquery.NodeName(s) == "a" {
			line = fmt.Sprintf("%s: %s", line, href)
		}
		lines = append(lines, line)
	})
	return strings.Join(dedupe(lines), "\n\n"), nil
}

func dedupe(lines []string) []string {
	out := lines[:0]
	seen := make(map[string]bool, len(lines))
	for _, l := range lines {
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

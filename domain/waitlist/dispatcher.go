package waitlist

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/physiscaffold/waitlist-api/pkg/circuitbreaker"
	"github.com/physiscaffold/waitlist-api/pkg/mailer"
)

//go:generate mockgen -source=dispatcher.go -destination=mock_dispatcher.go -package=waitlist

const (
	DefaultSenderAddress = "PhysiScaffold <onboarding@resend.dev>"
	welcomeSubject       = "Welcome to PhysiScaffold - Your Access Code Inside"
)

// WelcomeDispatcher delivers the signup confirmation carrying the
// access code. Delivery is best-effort: a failure is reported to the
// caller but must never undo the enrollment that triggered it.
type WelcomeDispatcher interface {
	Notify(ctx context.Context, email, accessCode string) error
}

type welcomeDispatcher struct {
	sender  mailer.Sender
	breaker circuitbreaker.CircuitBreaker
	from    string
}

// NewWelcomeDispatcher wraps a mail sender with the welcome template.
// The circuit breaker keeps a dead provider from being hammered; it
// adds no retries, each enrollment still gets at most one attempt.
func NewWelcomeDispatcher(sender mailer.Sender, from string) WelcomeDispatcher {
	if strings.TrimSpace(from) == "" {
		from = DefaultSenderAddress
	}

	return &welcomeDispatcher{
		sender:  sender,
		breaker: circuitbreaker.NewCircuitBreaker(nil),
		from:    from,
	}
}

func (d *welcomeDispatcher) Notify(ctx context.Context, email, accessCode string) error {
	if d.sender == nil {
		return fmt.Errorf("mail sender is not configured")
	}

	body, err := renderWelcomeEmail(accessCode)
	if err != nil {
		return err
	}

	msg := &mailer.Message{
		From:    d.from,
		To:      email,
		Subject: welcomeSubject,
		HTML:    body,
	}

	return d.breaker.Call(func() error {
		return d.sender.Send(ctx, msg)
	})
}

// The code is embedded verbatim; the template only decorates it.
var welcomeTemplate = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin: 0; padding: 0; background-color: #0a0f1a; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;">
  <div style="max-width: 560px; margin: 0 auto; padding: 40px 20px;">
    <div style="background: linear-gradient(135deg, rgba(52, 211, 153, 0.1), rgba(129, 140, 248, 0.1)); border: 1px solid rgba(255,255,255,0.1); border-radius: 16px; padding: 32px;">

      <h1 style="color: #ffffff; font-size: 24px; margin: 0 0 8px 0;">Welcome to PhysiScaffold</h1>
      <p style="color: rgba(255,255,255,0.7); font-size: 15px; margin: 0 0 24px 0;">Your journey to physics mastery begins now.</p>

      <div style="background: rgba(0,0,0,0.3); border: 1px solid rgba(52, 211, 153, 0.3); border-radius: 12px; padding: 24px; text-align: center; margin-bottom: 24px;">
        <p style="color: rgba(255,255,255,0.6); font-size: 13px; margin: 0 0 8px 0; text-transform: uppercase; letter-spacing: 1px;">Your Access Code</p>
        <p style="color: #34d399; font-size: 32px; font-weight: 700; font-family: monospace; margin: 0; letter-spacing: 2px;">{{.AccessCode}}</p>
      </div>

      <p style="color: rgba(255,255,255,0.8); font-size: 14px; line-height: 1.6; margin: 0 0 16px 0;">
        You're on the early access list! We'll notify you when PhysiScaffold is ready for you. Keep this code safe - you'll need it to activate your account.
      </p>

      <p style="color: rgba(255,255,255,0.5); font-size: 13px; margin: 0;">
        Questions? Reply to this email or reach out on WhatsApp.
      </p>

    </div>

    <p style="color: rgba(255,255,255,0.4); font-size: 12px; text-align: center; margin-top: 24px;">
      PhysiScaffold - Your Physics Thinking Partner
    </p>
  </div>
</body>
</html>
`))

func renderWelcomeEmail(accessCode string) (string, error) {
	var buf bytes.Buffer

	err := welcomeTemplate.Execute(&buf, struct{ AccessCode string }{AccessCode: accessCode})
	if err != nil {
		return "", fmt.Errorf("render welcome email: %w", err)
	}

	return buf.String(), nil
}

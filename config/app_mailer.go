package config

import (
	"os"

	"github.com/physiscaffold/waitlist-api/internal/log"
	"github.com/physiscaffold/waitlist-api/pkg/mailer"
	"github.com/physiscaffold/waitlist-api/pkg/utils"
)

type MailerConfig struct {
	APIKey string
	From   string
}

func NewMailerConfig() *MailerConfig {
	return &MailerConfig{
		APIKey: os.Getenv("RESEND_API_KEY"),
		From:   utils.GetEnvTrimmed("MAIL_FROM"),
	}
}

func (mc *MailerConfig) IsConfigured() bool {
	return mc.APIKey != ""
}

// NewSenderOrNil builds the Resend client, or nil when no API key is
// set. Enrollment works without a sender; each signup's welcome
// dispatch then fails and is absorbed, exactly like a provider outage.
func (mc *MailerConfig) NewSenderOrNil(logger *log.Logger) mailer.Sender {
	if !mc.IsConfigured() {
		logger.Warn("RESEND_API_KEY not set; welcome emails will not be delivered")
		return nil
	}

	sender, err := mailer.NewResendClient(&mailer.ResendConfig{APIKey: mc.APIKey})
	if err != nil {
		logger.Error("Failed to create mail sender", "error", err)
		return nil
	}

	logger.Info("Mail sender (Resend) configured")
	return sender
}

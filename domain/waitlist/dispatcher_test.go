package waitlist

import (
	"context"
	"errors"
	"testing"

	"github.com/physiscaffold/waitlist-api/pkg/mailer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	sent []*mailer.Message
	err  error
}

func (s *captureSender) Send(_ context.Context, msg *mailer.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func TestWelcomeDispatcher_Notify(t *testing.T) {
	t.Run("sends the welcome email with the access code embedded", func(t *testing.T) {
		sender := &captureSender{}
		dispatcher := NewWelcomeDispatcher(sender, "PhysiScaffold <hello@physiscaffold.com>")

		err := dispatcher.Notify(context.Background(), "student@example.com", "PS-ABCDEFGH")
		require.NoError(t, err)
		require.Len(t, sender.sent, 1)

		msg := sender.sent[0]
		assert.Equal(t, "PhysiScaffold <hello@physiscaffold.com>", msg.From)
		assert.Equal(t, "student@example.com", msg.To)
		assert.Equal(t, "Welcome to PhysiScaffold - Your Access Code Inside", msg.Subject)
		assert.Contains(t, msg.HTML, "PS-ABCDEFGH")
		assert.Contains(t, msg.HTML, "Your Access Code")
	})

	t.Run("falls back to the default sender address", func(t *testing.T) {
		sender := &captureSender{}
		dispatcher := NewWelcomeDispatcher(sender, "  ")

		err := dispatcher.Notify(context.Background(), "student@example.com", "PS-ABCDEFGH")
		require.NoError(t, err)
		require.Len(t, sender.sent, 1)
		assert.Equal(t, DefaultSenderAddress, sender.sent[0].From)
	})

	t.Run("reports an unconfigured sender as an error", func(t *testing.T) {
		dispatcher := NewWelcomeDispatcher(nil, "")

		err := dispatcher.Notify(context.Background(), "student@example.com", "PS-ABCDEFGH")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not configured")
	})

	t.Run("propagates provider failures", func(t *testing.T) {
		sender := &captureSender{err: errors.New("provider unavailable")}
		dispatcher := NewWelcomeDispatcher(sender, "")

		err := dispatcher.Notify(context.Background(), "student@example.com", "PS-ABCDEFGH")
		require.Error(t, err)
	})
}

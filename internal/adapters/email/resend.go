package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"

	"github.com/vatelanka/waste-admin-api/internal/ports/out/notifier"
)

type sender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendNotifier delivers credential emails through the Resend API.
type ResendNotifier struct {
	emails   sender
	from     string
	renderer *Renderer
	log      zerolog.Logger
}

var _ notifier.Notifier = (*ResendNotifier)(nil)

func NewResendNotifier(apiKey, from string, logger zerolog.Logger) (*ResendNotifier, error) {
	return newResendNotifier(resend.NewClient(apiKey).Emails, from, logger)
}

func newResendNotifier(emails sender, from string, logger zerolog.Logger) (*ResendNotifier, error) {
	r, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	return &ResendNotifier{emails: emails, from: from, renderer: r, log: logger}, nil
}

func (n *ResendNotifier) SendCredentials(ctx context.Context, c notifier.Credentials) error {
	msg, err := n.renderer.Render(c)
	if err != nil {
		return err
	}
	sent, err := n.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	n.log.Info().
		Str("kind", string(c.Kind)).
		Str("entity_id", string(c.EntityID)).
		Str("email_id", sent.Id).
		Msg("credentials email sent")
	return nil
}

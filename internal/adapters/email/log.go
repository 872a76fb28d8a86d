package email

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vatelanka/waste-admin-api/internal/ports/out/notifier"
)

// LogNotifier renders the message and logs its envelope instead of sending it.
// The password is never logged.
type LogNotifier struct {
	renderer *Renderer
	log      zerolog.Logger
}

var _ notifier.Notifier = (*LogNotifier)(nil)

func NewLogNotifier(logger zerolog.Logger) (*LogNotifier, error) {
	r, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	return &LogNotifier{renderer: r, log: logger}, nil
}

func (n *LogNotifier) SendCredentials(_ context.Context, c notifier.Credentials) error {
	msg, err := n.renderer.Render(c)
	if err != nil {
		return err
	}
	n.log.Info().
		Str("kind", string(c.Kind)).
		Str("entity_id", string(c.EntityID)).
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Int("html_bytes", len(msg.HTML)).
		Msg("credentials email (not sent)")
	return nil
}

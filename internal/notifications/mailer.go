package notifications

import (
	"context"
	"fmt"

	"github.com/dhruvsahani/distrilink-backend/pkg/logger"
)

// LogMailer writes outbound mail to the log instead of an SMTP relay. It is
// the default mailer until a real provider is configured.
type LogMailer struct {
	From string
	Logg *logger.Logger
}

// Send implements Mailer.
func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.Logg == nil {
		return fmt.Errorf("log mailer has no logger")
	}
	ctx = m.Logg.WithFields(ctx, map[string]any{
		"from":    m.From,
		"to":      to,
		"subject": subject,
	})
	m.Logg.Info(ctx, "email (log delivery): "+body)
	return nil
}

package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"

	"ChannelMonitor/internal/config"
	"ChannelMonitor/internal/domain"
	"ChannelMonitor/internal/ports"
)

// Notifier delivers insight reports over authenticated SMTP as multipart
// plain + HTML messages.
type Notifier struct {
	cfg config.EmailConfig
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier wires SMTP settings; an incomplete config produces a disabled
// notifier rather than an error.
func NewNotifier(cfg config.EmailConfig) *Notifier {
	return &Notifier{cfg: cfg}
}

// Enabled reports whether credentials and at least one recipient exist.
func (n *Notifier) Enabled() bool {
	return n.cfg.Address != "" && n.cfg.Password != "" && len(n.recipients()) > 0
}

// Send renders and submits the insight report. Delivery is fire-and-forget:
// callers log failures but never retry.
func (n *Notifier) Send(ctx context.Context, in domain.Insight, videoID string) error {
	if !n.Enabled() {
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(n.cfg.Address); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if to := splitAddresses(n.cfg.To); len(to) > 0 {
		if err := msg.To(to...); err != nil {
			return fmt.Errorf("set recipients: %w", err)
		}
	}
	if cc := splitAddresses(n.cfg.Cc); len(cc) > 0 {
		if err := msg.Cc(cc...); err != nil {
			return fmt.Errorf("set cc recipients: %w", err)
		}
	}

	msg.Subject("YouTube Insight: " + in.Title)
	msg.SetBodyString(mail.TypeTextPlain, renderPlain(in, videoID))

	html, err := renderHTML(in, videoID)
	if err != nil {
		return fmt.Errorf("render html body: %w", err)
	}
	msg.AddAlternativeString(mail.TypeTextHTML, html)

	client, err := mail.NewClient(n.cfg.SMTPHost,
		mail.WithPort(n.cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(n.cfg.Address),
		mail.WithPassword(n.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("build smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func (n *Notifier) recipients() []string {
	return append(splitAddresses(n.cfg.To), splitAddresses(n.cfg.Cc)...)
}

func splitAddresses(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

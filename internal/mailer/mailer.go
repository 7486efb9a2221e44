package mailer

import (
	"context"
	"fmt"
	"strconv"

	"github.com/wneessen/go-mail"
)

// Sender delivers out-of-band notifications. Delivery is best-effort;
// callers log and swallow errors.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SMTPSender struct {
	client *mail.Client
	from   string
}

func NewSMTPSender(host, port, username, password, from string) (*SMTPSender, error) {
	p, err := strconv.Atoi(port)
	if err != nil {
		return nil, fmt.Errorf("mailer: invalid SMTP port %q: %w", port, err)
	}

	opts := []mail.Option{mail.WithPort(p)}
	if username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(password),
		)
	}

	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mailer: cannot create client: %w", err)
	}

	return &SMTPSender{client: client, from: from}, nil
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return fmt.Errorf("mailer: invalid from address: %w", err)
	}
	if err := m.To(to); err != nil {
		return fmt.Errorf("mailer: invalid recipient: %w", err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, body)

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("mailer: send failed: %w", err)
	}
	return nil
}

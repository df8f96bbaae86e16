package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"
)

// Mailer delivers notification messages over SMTP. With an empty host it
// degrades to log-only delivery, which is what dev and test setups run with.
type Mailer struct {
	host     string
	addr     string
	from     string
	password string
	log      *zerolog.Logger
}

func New(host string, port int, from, password string, log *zerolog.Logger) *Mailer {
	return &Mailer{
		host:     host,
		addr:     fmt.Sprintf("%s:%d", host, port),
		from:     from,
		password: password,
		log:      log,
	}
}

func (m *Mailer) Send(subject, body string, recipients []string) error {
	if len(recipients) == 0 {
		return nil
	}

	if m.host == "" {
		m.log.Info().
			Str("subject", subject).
			Strs("recipients", recipients).
			Msg("mailer disabled, logging notification instead")
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.from, recipients[0], subject, body,
	)

	auth := smtp.PlainAuth("", m.from, m.password, m.host)
	if err := smtp.SendMail(m.addr, auth, m.from, recipients, []byte(msg)); err != nil {
		m.log.Warn().Err(err).Strs("recipients", recipients).Msg("failed to send notification email")
		return fmt.Errorf("send email: %w", err)
	}

	m.log.Info().Strs("recipients", recipients).Str("subject", subject).Msg("notification email sent")
	return nil
}

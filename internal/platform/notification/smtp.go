package notification

import (
	"context"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// SMTPConfig holds the settings for the outbound mail relay.
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// SMTPSender delivers email through an SMTP relay using gomail.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender creates an SMTPSender from config. The dialer connects
// lazily on the first send.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass),
		from:   cfg.From,
	}
}

// SendEmail composes and delivers one message. The context is consulted
// before dialing since gomail itself does not take one.
func (s *SMTPSender) SendEmail(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	return s.dialer.DialAndSend(m)
}

// LogEmailSender writes email messages to the structured log. It is
// the fallback when no SMTP relay is configured.
type LogEmailSender struct {
	Logger zerolog.Logger
}

func (s *LogEmailSender) SendEmail(_ context.Context, to, subject, _ string) error {
	s.Logger.Info().
		Str("to", to).
		Str("subject", subject).
		Msg("email (log only)")
	return nil
}

// LogSMSSender writes SMS messages to the structured log instead of a
// real gateway. It stands in until a provider is configured.
type LogSMSSender struct {
	Logger zerolog.Logger
}

func (s *LogSMSSender) SendSMS(_ context.Context, to, body string) error {
	s.Logger.Info().
		Str("to", to).
		Str("body", body).
		Msg("sms (log only)")
	return nil
}

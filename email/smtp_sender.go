package email

import (
	"context"

	mail "github.com/wneessen/go-mail"
)

// SmtpSender submits messages over implicit TLS (SMTPS) to a fixed endpoint,
// authenticating with the per-call credentials. Gmail style app passwords on
// port 465 are the expected setup.
type SmtpSender struct {
	host string
	port int
}

func NewSmtpSender(host string, port int) *SmtpSender {
	if host == "" {
		host = "smtp.gmail.com"
	}
	if port == 0 {
		port = 465
	}
	return &SmtpSender{host: host, port: port}
}

func (s *SmtpSender) Send(ctx context.Context, creds Credentials, msg *Message) error {
	m := mail.NewMsg()
	if err := m.From(creds.Address); err != nil {
		return err
	}
	if err := m.To(msg.To); err != nil {
		return err
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	client, err := mail.NewClient(s.host,
		mail.WithPort(s.port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(creds.Address),
		mail.WithPassword(creds.AppPassword),
	)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, m)
}

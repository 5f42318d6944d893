package email

import (
	"context"
	"fmt"

	"github.com/go-kit/log/level"

	"github.com/alertify/go-alertify-server/global"
)

// SystemMailer sends account level notices (password reset, confirmation
// codes) with the system fallback credentials. When no system credentials are
// configured the message body is logged instead, so local development works
// without a mail account.
type SystemMailer struct {
	sender Sender
	conf   global.SystemConfig
}

func NewSystemMailer(sender Sender, conf global.SystemConfig) *SystemMailer {
	return &SystemMailer{sender: sender, conf: conf}
}

func (m *SystemMailer) SendPasswordReset(ctx context.Context, to, resetToken string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", m.conf.BaseUrl, resetToken)
	return m.send(ctx, NewPasswordResetMessage(to, link))
}

func (m *SystemMailer) SendConfirmationOtp(ctx context.Context, to, otp string) error {
	return m.send(ctx, NewConfirmationOtpMessage(to, otp))
}

func (m *SystemMailer) send(ctx context.Context, msg *Message) error {
	if m.conf.SenderEmail == "" || m.conf.AppPassword == "" {
		level.Warn(global.Logger).Log("msg", "system email credentials not set, logging message instead",
			"to", msg.To, "subject", msg.Subject, "body", msg.Body)
		return nil
	}
	creds := Credentials{Address: m.conf.SenderEmail, AppPassword: m.conf.AppPassword}
	return m.sender.Send(ctx, creds, msg)
}

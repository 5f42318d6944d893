package email

import (
	"fmt"
	"time"
)

// NewReminderMessage formats the notification for a single due reminder.
func NewReminderMessage(to, title, description string, dueAt time.Time) *Message {
	if description == "" {
		description = "No description provided"
	}
	body := fmt.Sprintf(`Hello!

This is a reminder for: %s

Description: %s

Scheduled Time: %s

---
This is an automated reminder from Alertify.
`, title, description, dueAt.Format("2006-01-02 15:04"))
	return &Message{
		To:      to,
		Subject: fmt.Sprintf("Reminder: %s", title),
		Body:    body,
	}
}

// NewTestMessage verifies submitted sender credentials before they are saved.
func NewTestMessage(to string) *Message {
	return &Message{
		To:      to,
		Subject: "Test Email from Alertify",
		Body: `Hello!

This is a test email from Alertify to verify your email credentials are working correctly.

If you received this email, your settings are configured properly.

---
This is an automated test email from Alertify.
`,
	}
}

func NewPasswordResetMessage(to, resetLink string) *Message {
	body := fmt.Sprintf(`Hello,

You requested a password reset for your Alertify account.

Click the link below to reset your password:
%s

This link will expire in 1 hour.

If you didn't request this, please ignore this email.

---
This is an automated email from Alertify.
`, resetLink)
	return &Message{
		To:      to,
		Subject: "Password Reset for Alertify",
		Body:    body,
	}
}

func NewConfirmationOtpMessage(to, otp string) *Message {
	body := fmt.Sprintf(`Hello,

Your confirmation code is: %s

This code expires in 5 minutes.

---
This is an automated email from Alertify.
`, otp)
	return &Message{
		To:      to,
		Subject: "Email Confirmation Code for Alertify",
		Body:    body,
	}
}

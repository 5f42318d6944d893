package types

// for login and register
type InputEmailPassword struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type InputForgotPassword struct {
	Email string `json:"email" validate:"required,email"`
}

type InputResetPassword struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

type InputConfirmEmail struct {
	Otp string `json:"otp" validate:"required"`
}

// profile settings (bio, picture reference)
type InputProfile struct {
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profilePicture"`
}

// per-user outbound mail credentials
type InputEmailCredentials struct {
	SenderEmail string `json:"senderEmail" validate:"required,email"`
	AppPassword string `json:"appPassword" validate:"required"`
	// optional recipient of the verification test email; defaults to SenderEmail
	TestRecipient string `json:"testRecipient,omitempty" validate:"omitempty,email"`
}

type InputReminder struct {
	Title          string `json:"title" validate:"required"`
	Description    string `json:"description"`
	ReminderTime   string `json:"reminderTime" validate:"required"`
	RecipientEmail string `json:"recipientEmail" validate:"omitempty,email"`
}

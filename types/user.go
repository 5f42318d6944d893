package types

type User struct {
	ID                string `json:"id" validate:"required"`
	Email             string `json:"email" validate:"required,email"`
	PasswordHash      string `json:"-" validate:"required"`
	IsEmailConfirmed  bool   `json:"isEmailConfirmed"`
	VerificationToken string `json:"-"`
	ResetToken        string `json:"-"`
	ResetTokenExpiry  string `json:"-"` // RFC3339, empty when no reset pending
	ProfilePicture    string `json:"profilePicture,omitempty"`
	Bio               string `json:"bio,omitempty"`
	// EmailCredentials is the sender address used for this users reminder emails
	EmailCredentials string `json:"emailCredentials,omitempty"`
	// AppPassword is the app level secret authorizing sends from EmailCredentials
	AppPassword string `json:"-"`
}

// HasSenderCredentials reports whether the user configured outbound mail credentials.
func (u *User) HasSenderCredentials() bool {
	return u.EmailCredentials != "" && u.AppPassword != ""
}

package types

type OutputToken struct {
	Token string `json:"token"`
}

type OutputUserProfile struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	Bio              string `json:"bio,omitempty"`
	ProfilePicture   string `json:"profilePicture,omitempty"`
	EmailCredentials string `json:"emailCredentials,omitempty"`
	HasAppPassword   bool   `json:"hasAppPassword"`
}

type OutputMessage struct {
	Message string `json:"message"`
}

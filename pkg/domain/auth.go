package domain

// LoginRequest is the payload for POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the payload for POST /register.
type RegisterRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Role                 Role   `json:"role"`
	Interests            []int  `json:"interests,omitempty"`
}

// AuthResponse is returned by both login and registration.
type AuthResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"access_token"`
}

package domain

// Session is the in-memory authentication state of the client.
// An empty Token is the absent token.
type Session struct {
	User            *User  `json:"user"`
	Token           string `json:"token"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

// AnonymousSession returns the logged-out session.
func AnonymousSession() Session {
	return Session{}
}

// NewSession returns an authenticated session for user and token.
func NewSession(user *User, token string) Session {
	return Session{User: user, Token: token, IsAuthenticated: true}
}

// Valid reports whether user, token and IsAuthenticated agree: either all set or all unset.
func (s Session) Valid() bool {
	hasUser := s.User != nil
	hasToken := s.Token != ""
	if hasUser != hasToken {
		return false
	}
	return s.IsAuthenticated == (hasUser && hasToken)
}

// Clone returns a copy that shares no pointers with s.
func (s Session) Clone() Session {
	if s.User != nil {
		u := *s.User
		if u.EmailVerifiedAt != nil {
			t := *u.EmailVerifiedAt
			u.EmailVerifiedAt = &t
		}
		s.User = &u
	}
	return s
}

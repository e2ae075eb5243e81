package auth

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/qamarabbas408/booknstay/internal/events"
	"github.com/qamarabbas408/booknstay/pkg/domain"
)

// Operations whose success carries fresh credentials.
const (
	OpLogin    = "login"
	OpRegister = "register"
)

// BindResults makes the slice react to successful login and registration responses, so callers
// never need to call SetCredentials after those operations themselves.
func BindResults(bus events.Bus, s *Slice, log logrus.FieldLogger) error {
	handler := func(payload any) {
		res, ok := authResponse(payload)
		if !ok {
			log.WithField("payload", fmt.Sprintf("%T", payload)).Warn("auth: unexpected fulfilled payload")
			return
		}
		if err := s.SetCredentials(&res.User, res.AccessToken); err != nil {
			log.WithError(err).Warn("auth: response without credentials ignored")
		}
	}
	for _, op := range []string{OpLogin, OpRegister} {
		if err := events.OnFulfilled(bus, op, handler); err != nil {
			return fmt.Errorf("auth.BindResults: %w", err)
		}
	}
	return nil
}

func authResponse(payload any) (domain.AuthResponse, bool) {
	switch v := payload.(type) {
	case domain.AuthResponse:
		return v, true
	case *domain.AuthResponse:
		if v != nil {
			return *v, true
		}
	}
	return domain.AuthResponse{}, false
}

package auth

import (
	"errors"
	"sync"
	"testing"

	"github.com/qamarabbas408/booknstay/pkg/domain"
)

func testUser() *domain.User {
	return &domain.User{ID: 1, Name: "Ada", Email: "ada@example.com", Role: domain.RoleGuest}
}

func TestNewIsAnonymous(t *testing.T) {
	s := New()
	st := s.State()
	if st.IsAuthenticated || st.User != nil || st.Token != "" {
		t.Errorf("initial state = %+v, want anonymous", st)
	}
}

func TestSetCredentials(t *testing.T) {
	s := New()
	if err := s.SetCredentials(testUser(), "abc123"); err != nil {
		t.Fatalf("SetCredentials() error: %v", err)
	}
	st := s.State()
	if !st.IsAuthenticated || st.User == nil || st.Token != "abc123" {
		t.Errorf("state = %+v, want authenticated with abc123", st)
	}
	if !st.Valid() {
		t.Error("state violates session invariant")
	}
	if s.Token() != "abc123" {
		t.Errorf("Token() = %q, want %q", s.Token(), "abc123")
	}
}

func TestSetCredentialsRejectsPartial(t *testing.T) {
	s := New()
	if err := s.SetCredentials(nil, "abc123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("nil user error = %v, want ErrInvalidCredentials", err)
	}
	if err := s.SetCredentials(testUser(), ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("empty token error = %v, want ErrInvalidCredentials", err)
	}
	if s.IsAuthenticated() {
		t.Error("rejected credentials changed the session")
	}
}

func TestSetCredentialsCopiesUser(t *testing.T) {
	s := New()
	u := testUser()
	s.SetCredentials(u, "tok") //nolint:errcheck
	u.Name = "mutated"

	if got := s.State().User.Name; got != "Ada" {
		t.Errorf("User.Name = %q, want %q", got, "Ada")
	}
}

func TestLogoutIdempotent(t *testing.T) {
	s := New()
	s.SetCredentials(testUser(), "tok") //nolint:errcheck

	s.Logout()
	once := s.State()
	s.Logout()
	twice := s.State()

	if once != twice {
		t.Errorf("second Logout changed state: %+v vs %+v", once, twice)
	}
	if twice.IsAuthenticated || twice.User != nil || twice.Token != "" {
		t.Errorf("state = %+v, want anonymous", twice)
	}
}

func TestSubscribeReceivesTransitions(t *testing.T) {
	s := New()
	var got []bool
	unsubscribe := s.Subscribe(func(st domain.Session) { got = append(got, st.IsAuthenticated) })

	s.SetCredentials(testUser(), "tok") //nolint:errcheck
	s.Logout()
	unsubscribe()
	s.SetCredentials(testUser(), "tok") //nolint:errcheck

	if len(got) != 2 || got[0] != true || got[1] != false {
		t.Errorf("transitions = %v, want [true false]", got)
	}
}

func TestConcurrentTransitionsKeepInvariant(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.SetCredentials(testUser(), "tok") //nolint:errcheck
		}()
		go func() {
			defer wg.Done()
			s.Logout()
		}()
	}
	wg.Wait()

	if !s.State().Valid() {
		t.Errorf("state %+v violates session invariant", s.State())
	}
	s.Logout()
	if s.IsAuthenticated() {
		t.Error("last transition (Logout) did not win")
	}
}

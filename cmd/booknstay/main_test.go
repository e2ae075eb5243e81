package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

type backend struct {
	*httptest.Server
	revoked atomic.Bool
}

// fakeBackend accepts a@b.test / pw and serves one hotel and one booking to tok-1 until
// the token is revoked. Any other password for a@b.test is rejected with 401.
func fakeBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Email, Password string }
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		if req.Email == "a@b.test" && req.Password != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message":"Invalid login credentials."}`)
			return
		}
		if req.Email != "a@b.test" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			fmt.Fprint(w, `{"message":"These credentials do not match our records."}`)
			return
		}
		fmt.Fprint(w, `{"user":{"id":1,"name":"Ayesha","email":"a@b.test","role":"guest"},"access_token":"tok-1"}`)
	})
	mux.HandleFunc("GET /hotels", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"id":3,"name":"Sea View","city":"Karachi","star_rating":4,"price_per_night":120}],"meta":{"current_page":1,"last_page":1,"total":1}}`)
	})
	mux.HandleFunc("GET /guest/bookings", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" || b.revoked.Load() {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message":"Unauthenticated."}`)
			return
		}
		fmt.Fprint(w, `{"data":[{"id":9,"reference":"BK-0009","type":"hotel","status":"confirmed","hotel":{"id":3,"name":"Sea View"},"total_price":240}],"meta":{"current_page":1,"last_page":1,"total":1}}`)
	})
	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Close)
	return b
}

func writeConfig(t *testing.T, apiURL string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf("api_url: %s\ndata_dir: %s\nlog:\n  level: debug\n", apiURL, filepath.Join(dir, "data"))
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	if err != nil {
		t.Fatal(err)
	}
	if out != "booknstay dev\n" {
		t.Errorf("version output = %q", out)
	}
}

func TestSessionLifecycle(t *testing.T) {
	srv := fakeBackend(t)
	cfg := writeConfig(t, srv.URL)

	out, err := execute(t, "", "--config", cfg, "whoami")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if !strings.Contains(out, "booknstay login") {
		t.Errorf("anonymous whoami = %q", out)
	}

	if _, err := execute(t, "", "--config", cfg, "bookings"); err != errNotSignedIn {
		t.Errorf("bookings before login: err = %v", err)
	}

	out, err = execute(t, "pw\n", "--config", cfg, "login", "--email", "a@b.test")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "Signed in as Ayesha") {
		t.Errorf("login output = %q", out)
	}

	// A fresh process reads the session back from disk.
	out, err = execute(t, "", "--config", cfg, "whoami")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "a@b.test") {
		t.Errorf("whoami after login = %q", out)
	}
	out, err = execute(t, "", "--config", cfg, "bookings")
	if err != nil {
		t.Fatalf("bookings: %v", err)
	}
	if !strings.Contains(out, "BK-0009") || !strings.Contains(out, "Sea View") {
		t.Errorf("bookings output = %q", out)
	}

	out, err = execute(t, "", "--config", cfg, "logout")
	if err != nil || !strings.Contains(out, "Signed out.") {
		t.Fatalf("logout = %q, %v", out, err)
	}
	out, err = execute(t, "", "--config", cfg, "logout")
	if err != nil || !strings.Contains(out, "Already signed out.") {
		t.Errorf("second logout = %q, %v", out, err)
	}
}

func TestLoginRejected(t *testing.T) {
	srv := fakeBackend(t)
	cfg := writeConfig(t, srv.URL)

	_, err := execute(t, "", "--config", cfg, "login", "--email", "c@d.test", "--password", "nope")
	if err == nil || !strings.Contains(err.Error(), "credentials do not match") {
		t.Errorf("err = %v", err)
	}
}

func TestLoginRejectedWith401HasNoSessionHint(t *testing.T) {
	srv := fakeBackend(t)
	cfg := writeConfig(t, srv.URL)

	out, err := execute(t, "", "--config", cfg, "login", "--email", "a@b.test", "--password", "wrong")
	if err == nil || !strings.Contains(err.Error(), "Invalid login credentials.") {
		t.Errorf("err = %v", err)
	}
	if strings.Contains(out, sessionEndedHint) {
		t.Errorf("anonymous login printed %q", out)
	}
}

func TestRevokedSessionPrintsHint(t *testing.T) {
	srv := fakeBackend(t)
	cfg := writeConfig(t, srv.URL)

	if _, err := execute(t, "", "--config", cfg, "login", "--email", "a@b.test", "--password", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	srv.revoked.Store(true)

	out, err := execute(t, "", "--config", cfg, "bookings")
	if err != errNotSignedIn {
		t.Errorf("err = %v, want errNotSignedIn", err)
	}
	if !strings.Contains(out, sessionEndedHint) {
		t.Errorf("output = %q, want the session hint", out)
	}
	out, _ = execute(t, "", "--config", cfg, "whoami")
	if !strings.Contains(out, "booknstay login") {
		t.Errorf("whoami after revocation = %q", out)
	}
}

func TestHotelsCommand(t *testing.T) {
	srv := fakeBackend(t)
	cfg := writeConfig(t, srv.URL)

	out, err := execute(t, "", "--config", cfg, "hotels", "--search", "sea")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Sea View") || !strings.Contains(out, "$120.00/night") {
		t.Errorf("hotels output = %q", out)
	}
	if _, err := execute(t, "", "--config", cfg, "hotels", "abc"); err == nil {
		t.Error("expected an error for a non-numeric id")
	}
}

func TestMissingConfigFile(t *testing.T) {
	_, err := execute(t, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "whoami")
	if err == nil {
		t.Error("expected an error for an explicit missing config")
	}
}

func TestPageResource(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"hotel", "hotels", false},
		{"events", "events", false},
		{"room", "", true},
	}
	for _, tt := range tests {
		got, err := pageResource(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("pageResource(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestParseID(t *testing.T) {
	if id, err := parseID("42"); err != nil || id != 42 {
		t.Errorf("parseID(42) = %d, %v", id, err)
	}
	for _, s := range []string{"0", "-1", "x"} {
		if _, err := parseID(s); err == nil {
			t.Errorf("parseID(%q) should fail", s)
		}
	}
}

func TestReadSecret(t *testing.T) {
	var prompt bytes.Buffer
	got, err := readSecret(strings.NewReader("hunter2\r\n"), &prompt, "Password: ")
	if err != nil || got != "hunter2" {
		t.Errorf("readSecret = %q, %v", got, err)
	}
	if prompt.String() != "Password: " {
		t.Errorf("prompt = %q", prompt.String())
	}
}

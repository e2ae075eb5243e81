package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestDoInjectsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]string{"ok": "yes"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, WithTokenSource(func() string { return "abc123" }))
	resp, err := c.Do(context.Background(), Request{Path: "/guest/bookings"})
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if gotAuth != "Bearer abc123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer abc123")
	}
	if resp.Status != http.StatusOK {
		t.Errorf("Status = %d, want %d", resp.Status, http.StatusOK)
	}
}

func TestDoCallerHeadersCannotOverrideAuthorization(t *testing.T) {
	var gotAuth, gotCustom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCustom = r.Header.Get("X-Locale")
	}))
	defer srv.Close()

	c := New(srv.URL, WithTokenSource(func() string { return "abc123" }))
	h := http.Header{}
	h.Set("Authorization", "Bearer stolen")
	h.Set("X-Locale", "en")
	if _, err := c.Do(context.Background(), Request{Path: "/hotels", Header: h}); err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if gotAuth != "Bearer abc123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer abc123")
	}
	if gotCustom != "en" {
		t.Errorf("X-Locale = %q, want %q", gotCustom, "en")
	}
}

func TestDoWithoutTokenSendsNoAuthorization(t *testing.T) {
	var hadAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		_, hadAuth = r.Header["Authorization"]
	}))
	defer srv.Close()

	c := New(srv.URL)
	h := http.Header{}
	h.Set("Authorization", "Bearer leftover")
	if _, err := c.Do(context.Background(), Request{Path: "/hotels", Header: h}); err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if hadAuth {
		t.Error("expected no Authorization header when token is empty")
	}
}

func TestDoReadsTokenPerRequest(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
	}))
	defer srv.Close()

	token := "first"
	c := New(srv.URL, WithTokenSource(func() string { return token }))
	c.Do(context.Background(), Request{Path: "/a"}) //nolint:errcheck
	token = "second"
	c.Do(context.Background(), Request{Path: "/b"}) //nolint:errcheck

	if len(seen) != 2 || seen[0] != "Bearer first" || seen[1] != "Bearer second" {
		t.Errorf("Authorization headers = %v, want [Bearer first Bearer second]", seen)
	}
}

func TestDoUnauthorizedRunsHandler(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Unauthenticated."}) //nolint:errcheck
	}))
	defer srv.Close()

	var calls atomic.Int32
	c := New(srv.URL,
		WithTokenSource(func() string { return "expired" }),
		WithUnauthorizedHandler(func() { calls.Add(1) }),
	)
	_, err := c.Do(context.Background(), Request{Path: "/guest/bookings"})
	if err == nil {
		t.Fatal("expected error for unauthorized request")
	}
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Errorf("IsStatus(err, 401) = false, err = %v", err)
	}
	if got := err.Error(); !strings.Contains(got, "HTTP 401") {
		t.Errorf("error = %q, want it to contain 'HTTP 401'", got)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("unauthorized handler calls = %d, want 1", got)
	}
}

func TestDoServerErrorKeepsPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"message":"The given data was invalid.","errors":{"email":["taken"]}}`) //nolint:errcheck
	}))
	defer srv.Close()

	var calls atomic.Int32
	c := New(srv.URL, WithUnauthorizedHandler(func() { calls.Add(1) }))
	_, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/register", Body: map[string]string{}})
	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusUnprocessableEntity {
		t.Errorf("Status = %d, want 422", apiErr.Status)
	}
	raw, ok := apiErr.Data.(json.RawMessage)
	if !ok {
		t.Fatalf("Data = %T, want json.RawMessage", apiErr.Data)
	}
	if !strings.Contains(string(raw), `"email":["taken"]`) {
		t.Errorf("Data = %s, want the server payload", raw)
	}
	if got := Message(err); got != "The given data was invalid." {
		t.Errorf("Message() = %q", got)
	}
	if calls.Load() != 0 {
		t.Error("unauthorized handler ran for a 422")
	}
}

func TestDoPlainTextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "upstream down") //nolint:errcheck
	}))
	defer srv.Close()

	_, err := New(srv.URL).Do(context.Background(), Request{Path: "/hotels"})
	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Data != "upstream down" {
		t.Errorf("Data = %v, want %q", apiErr.Data, "upstream down")
	}
}

func TestDoNetworkFailureSkipsHandler(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	var calls atomic.Int32
	c := New(url, WithUnauthorizedHandler(func() { calls.Add(1) }))
	_, err := c.Do(context.Background(), Request{Path: "/hotels"})
	if err == nil {
		t.Fatal("expected error for closed server")
	}
	if !IsNetwork(err) {
		t.Errorf("IsNetwork(err) = false, err = %v", err)
	}
	apiErr, _ := AsAPIError(err)
	if _, ok := apiErr.Data.(string); !ok {
		t.Errorf("Data = %T, want string message", apiErr.Data)
	}
	if calls.Load() != 0 {
		t.Error("unauthorized handler ran for a network failure")
	}
}

func TestDoCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(2 * time.Second) // slow server
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(srv.URL).Do(ctx, Request{Path: "/hotels"})
	if !IsNetwork(err) {
		t.Fatalf("expected network error for canceled context, got %v", err)
	}
}

func TestDoQueryAndJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("city") != "Lahore" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			w.WriteHeader(http.StatusUnsupportedMediaType)
			return
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck
		json.NewEncoder(w).Encode(body)       //nolint:errcheck
	}))
	defer srv.Close()

	resp, err := New(srv.URL).Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/echo",
		Query:  map[string][]string{"city": {"Lahore"}},
		Body:   map[string]string{"name": "Harbor Inn"},
	})
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	var out map[string]string
	if err := resp.Decode(&out); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if out["name"] != "Harbor Inn" {
		t.Errorf("name = %q, want %q", out["name"], "Harbor Inn")
	}
}

func TestDoMultipartUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f, hdr, err := r.FormFile("images[]")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()                              //nolint:errcheck
		content, _ := io.ReadAll(f)                  //nolint:errcheck
		json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck
			"name":     r.FormValue("name"),
			"filename": hdr.Filename,
			"content":  string(content),
		})
	}))
	defer srv.Close()

	form := NewMultipart().Add("name", "Harbor Inn").AddFile("images[]", "front.jpg", []byte("jpeg"))
	resp, err := New(srv.URL).Do(context.Background(), Request{Method: http.MethodPost, Path: "/hotels", Body: form})
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	var out map[string]string
	resp.Decode(&out) //nolint:errcheck
	if out["name"] != "Harbor Inn" || out["filename"] != "front.jpg" || out["content"] != "jpeg" {
		t.Errorf("multipart echo = %v", out)
	}
}

type recordingObserver struct {
	statuses []int
}

func (o *recordingObserver) ObserveRequest(_ string, status int, _ time.Duration) {
	o.statuses = append(o.statuses, status)
}

func TestDoReportsToObserver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	New(srv.URL, WithObserver(obs)).Do(context.Background(), Request{Path: "/hotels/9"}) //nolint:errcheck
	if len(obs.statuses) != 1 || obs.statuses[0] != http.StatusNotFound {
		t.Errorf("observed statuses = %v, want [404]", obs.statuses)
	}
}

package screens

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"realtydesk/api"
	"realtydesk/apitest"
	"realtydesk/models"
	"realtydesk/session"
)

type env struct {
	backend *apitest.Server
	client  *api.Client
	store   *session.MemoryStore
	hits    *atomic.Int64
}

func newEnv(t *testing.T) *env {
	t.Helper()
	backend := apitest.New()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		backend.Handler().ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	store := session.NewMemoryStore()
	return &env{
		backend: backend,
		client:  api.NewClient(srv.URL, 5*time.Second, store),
		store:   store,
		hits:    &hits,
	}
}

func (e *env) loginAs(t *testing.T, email, password string) {
	t.Helper()
	screen := NewLogin(e.client, e.store)
	defer screen.Close()
	if _, err := screen.Submit(context.Background(), email, password, true); err != nil {
		t.Fatalf("login as %s: %v", email, err)
	}
}

func TestLogin_validationBlocksSubmission(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	screen := NewLogin(e.client, e.store)
	defer screen.Close()

	_, err := screen.Submit(context.Background(), "  ", "", false)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if verr.Fields["username"] == "" || verr.Fields["password"] == "" {
		t.Fatalf("fields %v, want username and password errors", verr.Fields)
	}
	if e.hits.Load() != 0 {
		t.Fatalf("network was contacted %d times during validation failure", e.hits.Load())
	}
	if session.Token(e.store) != "" {
		t.Fatalf("session written on validation failure")
	}
}

func TestLogin_persistsNormalizedSession(t *testing.T) {
	t.Parallel()

	// Fixed response, so the stored values can be asserted exactly.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"T","user":{"id":"1","email":"a@b.com","role":"authenticated"}}`))
	}))
	t.Cleanup(srv.Close)
	store := session.NewMemoryStore()
	client := api.NewClient(srv.URL, 5*time.Second, store)

	screen := NewLogin(client, store)
	defer screen.Close()
	user, err := screen.Submit(context.Background(), "a@b.com", "x", false)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if got := session.Token(store); got != "T" {
		t.Fatalf("stored token got %q, want T", got)
	}
	stored, err := session.CurrentUser(store)
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if stored.Role != models.RoleUser {
		t.Fatalf("stored role got %q, want user", stored.Role)
	}
	if stored.FullName != "a" {
		t.Fatalf("stored full name got %q, want a", stored.FullName)
	}
	if user.FullName != "a" {
		t.Fatalf("returned user %+v", user)
	}
}

func TestLogin_badCredentialsSurfaceBackendMessage(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.backend.SeedUser("a@b.com", "right", "authenticated", "")

	screen := NewLogin(e.client, e.store)
	defer screen.Close()
	_, err := screen.Submit(context.Background(), "a@b.com", "wrong", false)
	if err == nil || err.Error() != "Invalid email or password" {
		t.Fatalf("got %v, want backend message", err)
	}
	if session.Token(e.store) != "" {
		t.Fatalf("session written on failed login")
	}
}

func TestRegister_validationRequiresFullName(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	screen := NewRegister(e.client, e.store)
	defer screen.Close()

	_, err := screen.Submit(context.Background(), "a@b.com", "pw", " ")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if verr.Fields["full_name"] == "" {
		t.Fatalf("fields %v, want full_name error", verr.Fields)
	}
	if e.hits.Load() != 0 {
		t.Fatalf("network was contacted during validation failure")
	}
}

func TestRegister_createsAccountAndSession(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	screen := NewRegister(e.client, e.store)
	defer screen.Close()

	user, err := screen.Submit(context.Background(), "new@b.com", "pw", "New Person")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if user.Role != models.RoleUser {
		t.Fatalf("role got %q, want authenticated mapped to user", user.Role)
	}
	if session.Token(e.store) == "" {
		t.Fatalf("no token stored")
	}

	// The new account can sign in.
	e.loginAs(t, "new@b.com", "pw")
}

func TestLogout_clearsTheSession(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.backend.SeedUser("a@b.com", "pw", "authenticated", "")
	e.loginAs(t, "a@b.com", "pw")

	if err := Logout(context.Background(), e.client, e.store); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if session.Token(e.store) != "" {
		t.Fatalf("token survived logout")
	}
	if Identity(e.store) != nil {
		t.Fatalf("identity survived logout")
	}
}

func TestLogout_clearsEvenWhenBackendFails(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	session.Save(store, "T", models.User{ID: "1", Email: "a@b.com"})
	client := api.NewClient("http://127.0.0.1:1", time.Second, store)

	if err := Logout(context.Background(), client, store); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if session.Token(store) != "" {
		t.Fatalf("token survived failed logout request")
	}
}

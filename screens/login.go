// Package screens holds the controllers behind each screen of the client:
// field validation, submission through the api endpoints, and session
// persistence. Rendering belongs to the caller.
package screens

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"realtydesk/api"
	"realtydesk/models"
	"realtydesk/session"
)

// Login authenticates against POST /api/login and persists the resulting
// session.
type Login struct {
	store    session.Store
	endpoint *api.Endpoint[models.AuthResponse]
}

func NewLogin(client *api.Client, store session.Store) *Login {
	return &Login{
		store:    store,
		endpoint: api.NewEndpoint[models.AuthResponse](client, http.MethodPost, "/api/login", nil),
	}
}

// Submit validates the form, posts the credentials and, on success, stores
// the token and the normalized user record. The returned error is either a
// *ValidationError (nothing was sent) or the backend's message.
func (s *Login) Submit(ctx context.Context, username, password string, rememberMe bool) (*models.User, error) {
	errs := FieldErrors{}
	requireField(errs, "username", username, "Username is required")
	if password == "" {
		errs["password"] = "Password is required"
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	out := s.endpoint.ExecuteWith(ctx, api.Override{Body: models.LoginRequest{
		Username:   strings.TrimSpace(username),
		Password:   password,
		RememberMe: rememberMe,
	}})
	if out.Err != "" {
		return nil, errors.New(out.Err)
	}
	if out.Data == nil || out.Data.User == nil {
		return nil, errors.New("Request failed")
	}

	user := models.NewSessionUser(*out.Data.User)
	if err := session.Save(s.store, out.Data.AccessToken, user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Close releases the screen's endpoint.
func (s *Login) Close() {
	s.endpoint.Close()
}

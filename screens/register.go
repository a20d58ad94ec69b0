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

// Register creates an account via POST /api/register and persists the
// resulting session. Registration responses may omit the access token; the
// user record is stored either way.
type Register struct {
	store    session.Store
	endpoint *api.Endpoint[models.AuthResponse]
}

func NewRegister(client *api.Client, store session.Store) *Register {
	return &Register{
		store:    store,
		endpoint: api.NewEndpoint[models.AuthResponse](client, http.MethodPost, "/api/register", nil),
	}
}

func (s *Register) Submit(ctx context.Context, username, password, fullName string) (*models.User, error) {
	errs := FieldErrors{}
	requireField(errs, "username", username, "Username is required")
	requireField(errs, "full_name", fullName, "Full name is required")
	if password == "" {
		errs["password"] = "Password is required"
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	out := s.endpoint.ExecuteWith(ctx, api.Override{Body: models.RegisterRequest{
		Username: strings.TrimSpace(username),
		Password: password,
		FullName: strings.TrimSpace(fullName),
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

func (s *Register) Close() {
	s.endpoint.Close()
}

package screens

import (
	"context"
	"log"
	"net/http"

	"realtydesk/api"
	"realtydesk/models"
	"realtydesk/session"
)

// Logout tells the backend the session is over and clears the local store.
// The store is cleared even when the request fails; a stale server-side
// session is harmless, a stale local one is not.
func Logout(ctx context.Context, client *api.Client, store session.Store) error {
	ep := api.NewEndpoint[models.MessageResponse](client, http.MethodPost, "/logout", nil)
	if out := ep.Execute(ctx); out.Err != "" {
		log.Printf("logout request failed: %s", out.Err)
	}
	return store.Clear()
}

// Identity returns the signed-in user for the navigation shell, or nil when
// no session exists.
func Identity(store session.Store) *models.User {
	user, err := session.CurrentUser(store)
	if err != nil {
		return nil
	}
	return user
}

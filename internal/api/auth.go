package api

import (
	"context"
	"net/http"
)

// AuthAPI talks to the external authentication collaborator. The session
// provider validates credentials locally; this client exists for the profile
// lookup only.
type AuthAPI struct {
	client *Client
}

func NewAuthAPI(client *Client) *AuthAPI {
	return &AuthAPI{client: client}
}

type Profile struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	UserType string `json:"userType"`
}

func (a *AuthAPI) Profile(ctx context.Context, credential string) (*Profile, error) {
	var resp Profile
	if err := a.client.doJSON(ctx, http.MethodGet, "/api/users/profile", credential, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

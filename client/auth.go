package client

import (
	"context"
	"net/http"

	"github.com/goliatone/go-errors"
	session "github.com/samichen99/hap-session"
)

// AuthAPI talks to the authentication endpoint. It satisfies
// session.Authenticator, so it plugs straight into the session service.
type AuthAPI struct {
	client *Client
}

var _ session.Authenticator = (*AuthAPI)(nil)

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse mirrors the authentication endpoint's success body.
type LoginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token. A 2xx response without a
// token is a login failure, not a success with an empty session.
func (a *AuthAPI) Login(ctx context.Context, identifier, password string) (string, error) {
	req, err := a.client.newJSONRequest(ctx, http.MethodPost, "/auth/login", loginPayload{
		Email:    identifier,
		Password: password,
	})
	if err != nil {
		return "", err
	}

	var resp LoginResponse
	if err := a.client.doUnsignaled(req, &resp); err != nil {
		return "", err
	}

	if resp.Token == "" {
		return "", errors.New("authentication endpoint returned no credential", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized)
	}
	return resp.Token, nil
}

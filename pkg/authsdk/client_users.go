package authsdk

import (
	"context"
	"net/http"
)

// Register creates a new user account.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	resp, err := c.postJSON(ctx, "/v1/users", req)
	if err != nil {
		return nil, err
	}

	return decodeEnvelope[User](resp, http.StatusCreated)
}

// Me returns the user the access token was issued to.
func (c *SDKClient) Me(ctx context.Context, accessToken string) (*User, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/users/me", nil, map[string]string{
		"Authorization": "Bearer " + accessToken,
	})
	if err != nil {
		return nil, err
	}

	return decodeEnvelope[User](resp, http.StatusOK)
}

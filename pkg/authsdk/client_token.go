package authsdk

import (
	"context"
	"net/http"
)

// Login exchanges an email and password for a token pair. Logging in again
// invalidates the previously issued refresh token.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	resp, err := c.postJSON(ctx, "/v1/auth/token", LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	return decodeEnvelope[TokenPair](resp, http.StatusOK)
}

// ClientToken requests an access token for a machine client. No refresh
// token is issued; clients re-authenticate when the token expires.
func (c *SDKClient) ClientToken(ctx context.Context, clientID, clientSecret string) (*ClientToken, error) {
	resp, err := c.postJSON(ctx, "/v1/auth/token/client", ClientTokenRequest{
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
	if err != nil {
		return nil, err
	}

	return decodeEnvelope[ClientToken](resp, http.StatusOK)
}

// Refresh redeems a refresh token for a new pair. The submitted token is
// consumed and must not be used again.
func (c *SDKClient) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	resp, err := c.postJSON(ctx, "/v1/auth/token/refresh", RefreshTokenRequest{
		RefreshToken: refreshToken,
	})
	if err != nil {
		return nil, err
	}

	return decodeEnvelope[TokenPair](resp, http.StatusOK)
}

// Revoke deletes the refresh record for the given token.
func (c *SDKClient) Revoke(ctx context.Context, refreshToken string) error {
	resp, err := c.postJSON(ctx, "/v1/auth/token/revoke", RefreshTokenRequest{
		RefreshToken: refreshToken,
	})
	if err != nil {
		return err
	}

	_, err = decodeEnvelope[NoData](resp, http.StatusOK)
	return err
}

package authsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the jwtauth service. It covers the public
// endpoints and creates authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// RefreshLeeway is how long before expiry a Session refreshes its access
	// token. Default: 30 seconds.
	RefreshLeeway time.Duration
}

// NewSDKClient creates a new auth service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		RefreshLeeway: 30 * time.Second,
	}
}

// Authenticate logs in with email and password and returns a Session that
// refreshes itself.
func (c *SDKClient) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	pair, err := c.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	return newSession(c, pair), nil
}

// AuthenticateWithRefreshToken creates a Session from an existing refresh
// token. The token is rotated in the process.
func (c *SDKClient) AuthenticateWithRefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	pair, err := c.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	return newSession(c, pair), nil
}

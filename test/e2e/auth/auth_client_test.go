package auth_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/aussiebroadwan/jwtauth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestClientToken verifies a configured machine client receives an access
// token bounded by its allowed lifetime and no refresh token.
func TestClientToken(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	before := time.Now()
	token, err := client.ClientToken(t.Context(), clientID, clientSecret)
	require.NoError(t, err)
	require.NotEmpty(t, token.AccessToken)
	require.WithinDuration(t, before.Add(5*time.Minute), token.AccessTokenExpiresAt, time.Minute)
}

// TestClientTokenFailures verifies unknown clients and wrong secrets get the
// same not-found answer.
func TestClientTokenFailures(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	_, err := client.ClientToken(t.Context(), "svc-unknown", clientSecret)
	assertStatus(t, err, http.StatusNotFound, "unknown client")

	_, err = client.ClientToken(t.Context(), clientID, "wrong-secret-value")
	assertStatus(t, err, http.StatusNotFound, "wrong secret")
}

// TestClientTokenCannotReadProfile verifies client tokens are refused by the
// user-only profile endpoint.
func TestClientTokenCannotReadProfile(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	token, err := client.ClientToken(t.Context(), clientID, clientSecret)
	require.NoError(t, err)

	_, err = client.Me(t.Context(), token.AccessToken)
	assertStatus(t, err, http.StatusForbidden, "client token on user endpoint")
}

package auth_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/jwtauth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestRegisterLoginMe covers the basic user flow: create an account, log in
// and read the profile back with the access token.
func TestRegisterLoginMe(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	user := registerUser(t, client, "alice@example.com", "Alice")

	pair, err := client.Login(t.Context(), "alice@example.com", userPassword)
	require.NoError(t, err)
	assertTokenPair(t, pair)

	me, err := client.Me(t.Context(), pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, me.ID)
	require.Equal(t, "alice@example.com", me.Email)
	require.Equal(t, "Alice", me.UserName)
}

// TestLoginEmailIsCaseInsensitive verifies addresses are matched regardless of case.
func TestLoginEmailIsCaseInsensitive(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	registerUser(t, client, "Bob@Example.com", "Bob")

	pair, err := client.Login(t.Context(), "bob@example.com", userPassword)
	require.NoError(t, err)
	assertTokenPair(t, pair)
}

// TestLoginFailures verifies that a wrong password and an unknown account
// produce the same answer.
func TestLoginFailures(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	registerUser(t, client, "carol@example.com", "Carol")

	_, wrongPassword := client.Login(t.Context(), "carol@example.com", "not-the-password")
	assertStatus(t, wrongPassword, http.StatusBadRequest, "wrong password")

	_, unknownUser := client.Login(t.Context(), "nobody@example.com", userPassword)
	assertStatus(t, unknownUser, http.StatusBadRequest, "unknown user")

	require.Equal(t, wrongPassword.Error(), unknownUser.Error(),
		"Failures must not reveal whether the account exists")
}

// TestRegisterDuplicateEmail verifies an address can only be registered once.
func TestRegisterDuplicateEmail(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	registerUser(t, client, "dave@example.com", "Dave")

	_, err := client.Register(t.Context(), authsdk.RegisterRequest{
		Email:    "DAVE@example.com",
		UserName: "Dave Again",
		Password: userPassword,
	})
	assertStatus(t, err, http.StatusBadRequest, "duplicate registration")
}

// TestMeRequiresBearer verifies the profile endpoint rejects missing and forged tokens.
func TestMeRequiresBearer(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	_, err := client.Me(t.Context(), "")
	assertStatus(t, err, http.StatusUnauthorized, "missing token")

	_, err = client.Me(t.Context(), "not.a.jwt")
	assertStatus(t, err, http.StatusUnauthorized, "forged token")
}

/*
Package authsdk provides a client SDK for the jwtauth service.

# Overview

The service issues short-lived JWT access tokens and opaque refresh tokens to
users, and access tokens only to trusted machine clients. Every API response
is wrapped in an Envelope:

	{"data": {...}, "status_code": 200, "is_successful": true, "error": null}

Failures come back from the SDK as *APIError carrying the status code and the
envelope message.

# SDKClient vs Session

  - SDKClient: one method per endpoint
  - Session: a logged-in user whose access token is refreshed automatically

Typical use:

	client := authsdk.NewSDKClient("https://auth.example.com")

	// Machine client
	tok, err := client.ClientToken(ctx, "svc-reports", secret)

	// User session
	session, err := client.Authenticate(ctx, "a@b.com", "secret123")
	me, err := session.Me(ctx)
	err = session.Revoke(ctx)

# Refresh Token Rotation

Every login and every refresh replaces the user's refresh token. Only the
most recently issued value can be redeemed; older values fail with a 404:

	pair, _ := client.Login(ctx, email, password)
	next, _ := client.Refresh(ctx, pair.RefreshToken)
	_, err := client.Refresh(ctx, pair.RefreshToken)
	authsdk.IsNotFound(err) // true

A Session tracks the latest value for you. Sharing a refresh token between
two Sessions makes one of them fail on its next refresh.
*/
package authsdk

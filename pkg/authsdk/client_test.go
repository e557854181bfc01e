package authsdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope[T any](w http.ResponseWriter, status int, data *T, errMsg string) {
	env := Envelope[T]{Data: data, StatusCode: status, IsSuccessful: errMsg == ""}
	if errMsg != "" {
		env.Error = &ErrorDetail{Message: errMsg, IsUserVisible: true}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(15 * time.Minute).UTC().Truncate(time.Second)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/auth/token", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret123" {
			writeEnvelope[TokenPair](w, http.StatusBadRequest, nil, "invalid credentials")
			return
		}
		writeEnvelope(w, http.StatusOK, &TokenPair{
			AccessToken:          "access",
			AccessTokenExpiresAt: exp,
			RefreshToken:         "refresh",
		}, "")
	}))
	t.Cleanup(srv.Close)

	client := NewSDKClient(srv.URL + "/")

	pair, err := client.Login(context.Background(), "a@b.com", "secret123")
	require.NoError(t, err)
	require.Equal(t, "access", pair.AccessToken)
	require.Equal(t, "refresh", pair.RefreshToken)
	require.True(t, exp.Equal(pair.AccessTokenExpiresAt))

	_, err = client.Login(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)
	require.True(t, IsStatus(err, http.StatusBadRequest))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "invalid credentials", apiErr.Message)
	require.True(t, apiErr.IsUserVisible)
}

func TestRefreshAndRevokeNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope[NoData](w, http.StatusNotFound, nil, "refresh token not found")
	}))
	t.Cleanup(srv.Close)

	client := NewSDKClient(srv.URL)

	_, err := client.Refresh(context.Background(), "stale")
	require.True(t, IsNotFound(err))

	err = client.Revoke(context.Background(), "stale")
	require.True(t, IsNotFound(err))
}

func TestNonEnvelopeError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	_, err := NewSDKClient(srv.URL).ClientToken(context.Background(), "id", "secret")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Equal(t, "upstream down", apiErr.Message)
}

func TestSessionRefreshesExpiredToken(t *testing.T) {
	t.Parallel()

	var refreshes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/auth/token":
			// Already inside the refresh leeway.
			writeEnvelope(w, http.StatusOK, &TokenPair{
				AccessToken:          "access-1",
				AccessTokenExpiresAt: time.Now().Add(time.Second),
				RefreshToken:         "refresh-1",
			}, "")
		case "/v1/auth/token/refresh":
			var req RefreshTokenRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			assert.Equal(t, "refresh-1", req.RefreshToken)
			refreshes.Add(1)
			writeEnvelope(w, http.StatusOK, &TokenPair{
				AccessToken:          "access-2",
				AccessTokenExpiresAt: time.Now().Add(time.Hour),
				RefreshToken:         "refresh-2",
			}, "")
		case "/v1/users/me":
			assert.Equal(t, "Bearer access-2", r.Header.Get("Authorization"))
			writeEnvelope(w, http.StatusOK, &User{ID: "u1", Email: "a@b.com"}, "")
		case "/v1/auth/token/revoke":
			writeEnvelope[NoData](w, http.StatusOK, nil, "")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	client := NewSDKClient(srv.URL)
	ctx := context.Background()

	session, err := client.Authenticate(ctx, "a@b.com", "secret123")
	require.NoError(t, err)

	me, err := session.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "u1", me.ID)
	require.Equal(t, int32(1), refreshes.Load())
	require.Equal(t, "refresh-2", session.RefreshToken())

	// Token is fresh now, no second refresh.
	_, err = session.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, int32(1), refreshes.Load())

	require.NoError(t, session.Revoke(ctx))
	require.Empty(t, session.RefreshToken())
	require.ErrorIs(t, session.Revoke(ctx), ErrNoRefreshToken)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/readyz" {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(HealthResponse{Status: "degraded"})
			return
		}
		_ = json.NewEncoder(w).Encode(HealthResponse{Status: "ok", Version: "test"})
	}))
	t.Cleanup(srv.Close)

	client := NewSDKClient(srv.URL)

	live, err := client.GetLiveness(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	_, err = client.GetReadiness(context.Background())
	require.True(t, IsStatus(err, http.StatusServiceUnavailable))
}

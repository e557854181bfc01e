package service_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/jwtauth/internal/auth/domain"
	"github.com/aussiebroadwan/jwtauth/internal/auth/events"
	"github.com/aussiebroadwan/jwtauth/internal/auth/service"
	"github.com/aussiebroadwan/jwtauth/internal/auth/store"
	"github.com/aussiebroadwan/jwtauth/pkg/cryptox"
	"github.com/aussiebroadwan/jwtauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func login(email, password string) *domain.Login {
	return &domain.Login{Email: email, Password: password}
}

func TestCreateToken(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		h := newHarness(t)
		u := h.seedUser(t, "u1", "a@b.com")
		now := h.clock.Now()

		resp, err := h.auth.CreateToken(ctx, login("a@b.com", testPassword))
		require.NoError(t, err)
		require.NoError(t, resp.Err())
		require.True(t, resp.IsSuccessful)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Nil(t, resp.Error)

		pair := *resp.Data
		require.True(t, pair.AccessTokenExpiresAt.After(now))
		require.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))

		claims, err := h.verifier.Verify(pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, u.ID, claims.Subject)
		require.Equal(t, u.Email, claims.Email)
		require.Equal(t, u.UserName, claims.Name)
		require.Equal(t, []string{domain.RoleUser}, claims.Roles)
		require.Equal(t, jwtx.TokenTypeUser, claims.TokenType)
		require.True(t, pair.AccessTokenExpiresAt.Equal(claims.ExpiresAt.Time))

		rec, ok := h.record(t, u.ID)
		require.True(t, ok)
		require.Equal(t, cryptox.FingerprintToken(pair.RefreshToken), rec.CodeHash)
		require.True(t, pair.RefreshTokenExpiresAt.Equal(rec.ExpiresAt))

		require.Equal(t, []events.Type{events.TokenIssued}, h.events.Types())
		require.EqualValues(t, 1, h.counter(t, service.FlowLogin, service.OutcomeSuccess))
	})

	t.Run("email lookup is case insensitive", func(t *testing.T) {
		h := newHarness(t)
		h.seedUser(t, "u1", "a@b.com")

		resp, err := h.auth.CreateToken(ctx, login("  A@B.com ", testPassword))
		require.NoError(t, err)
		require.True(t, resp.IsSuccessful)
	})

	t.Run("unknown email and wrong password look the same", func(t *testing.T) {
		h := newHarness(t)
		h.seedUser(t, "u1", "a@b.com")

		cases := map[string]*domain.Login{
			"unknown email":  login("nobody@b.com", testPassword),
			"wrong password": login("a@b.com", "secret124"),
			"empty password": login("a@b.com", ""),
		}
		for name, l := range cases {
			t.Run(name, func(t *testing.T) {
				resp, err := h.auth.CreateToken(ctx, l)
				require.NoError(t, err)
				require.False(t, resp.IsSuccessful)
				require.Nil(t, resp.Data)
				require.ErrorIs(t, resp.Err(), domain.ErrAuthentication)
				require.Equal(t, http.StatusBadRequest, resp.StatusCode)
				require.Equal(t, domain.MsgInvalidCredentials, resp.Error.Message)
				require.True(t, resp.Error.IsUserVisible)
			})
		}

		_, ok := h.record(t, "u1")
		require.False(t, ok)
		require.Empty(t, h.events.Types())
		require.EqualValues(t, 3, h.counter(t, service.FlowLogin, service.OutcomeFailure))
	})

	t.Run("missing payload", func(t *testing.T) {
		h := newHarness(t)

		resp, err := h.auth.CreateToken(ctx, nil)
		require.NoError(t, err)
		require.ErrorIs(t, resp.Err(), domain.ErrValidation)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("second login rotates the refresh token", func(t *testing.T) {
		h := newHarness(t)
		h.seedUser(t, "u1", "a@b.com")

		first, err := h.auth.CreateToken(ctx, login("a@b.com", testPassword))
		require.NoError(t, err)
		second, err := h.auth.CreateToken(ctx, login("a@b.com", testPassword))
		require.NoError(t, err)
		require.NotEqual(t, first.Data.RefreshToken, second.Data.RefreshToken)

		old, err := h.auth.CreateTokenByRefreshToken(ctx, first.Data.RefreshToken)
		require.NoError(t, err)
		require.ErrorIs(t, old.Err(), domain.ErrNotFound)

		latest, err := h.auth.CreateTokenByRefreshToken(ctx, second.Data.RefreshToken)
		require.NoError(t, err)
		require.True(t, latest.IsSuccessful)
	})

	t.Run("store failure is returned as an error", func(t *testing.T) {
		h := newHarness(t)
		h.seedUser(t, "u1", "a@b.com")
		h.auth.Store = faultyStore{Store: h.store, refreshErr: errors.New("disk on fire")}

		_, err := h.auth.CreateToken(ctx, login("a@b.com", testPassword))
		require.Error(t, err)
		require.EqualValues(t, 1, h.counter(t, service.FlowLogin, service.OutcomeError))

		_, ok := h.record(t, "u1")
		require.False(t, ok)
	})

	t.Run("losing a first-login insert race replaces the winner", func(t *testing.T) {
		h := newHarness(t)
		h.seedUser(t, "u1", "a@b.com")
		h.auth.Store = faultyStore{Store: h.store, createErr: store.ErrAlreadyExists}

		resp, err := h.auth.CreateToken(ctx, login("a@b.com", testPassword))
		require.NoError(t, err)
		require.True(t, resp.IsSuccessful)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		rec, ok := h.record(t, "u1")
		require.True(t, ok)
		require.Equal(t, cryptox.FingerprintToken(resp.Data.RefreshToken), rec.CodeHash)
		require.EqualValues(t, 1, h.counter(t, service.FlowLogin, service.OutcomeSuccess))
	})

	t.Run("duplicate records are a consistency failure", func(t *testing.T) {
		h := newHarness(t)
		h.seedUser(t, "u1", "a@b.com")
		h.auth.Store = faultyStore{Store: h.store, refreshErr: store.ErrMultipleRows}

		resp, err := h.auth.CreateToken(ctx, login("a@b.com", testPassword))
		require.NoError(t, err)
		require.ErrorIs(t, resp.Err(), domain.ErrConsistency)
		require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		require.False(t, resp.Error.IsUserVisible)
	})
}

func TestCreateTokenByRefreshToken(t *testing.T) {
	ctx := context.Background()

	t.Run("never issued code", func(t *testing.T) {
		h := newHarness(t)
		code, err := cryptox.NewRefreshToken()
		require.NoError(t, err)

		resp, err := h.auth.CreateTokenByRefreshToken(ctx, code)
		require.NoError(t, err)
		require.Nil(t, resp.Data)
		require.ErrorIs(t, resp.Err(), domain.ErrNotFound)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.Equal(t, domain.MsgRefreshTokenNotFound, resp.Error.Message)
		require.True(t, resp.Error.IsUserVisible)
	})

	t.Run("empty code", func(t *testing.T) {
		h := newHarness(t)

		resp, err := h.auth.CreateTokenByRefreshToken(ctx, "")
		require.NoError(t, err)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("expired record is not found", func(t *testing.T) {
		h := newHarness(t)
		h.seedUser(t, "u1", "a@b.com")

		issued, err := h.auth.CreateToken(ctx, login("a@b.com", testPassword))
		require.NoError(t, err)

		h.clock.Advance(h.tokens.RefreshTTL + time.Second)

		resp, err := h.auth.CreateTokenByRefreshToken(ctx, issued.Data.RefreshToken)
		require.NoError(t, err)
		require.ErrorIs(t, resp.Err(), domain.ErrNotFound)
		require.Equal(t, domain.MsgRefreshTokenNotFound, resp.Error.Message)

		// left for housekeeping
		_, ok := h.record(t, "u1")
		require.True(t, ok)
	})

	t.Run("user gone", func(t *testing.T) {
		h := newHarness(t)
		h.seedUser(t, "u1", "a@b.com")

		issued, err := h.auth.CreateToken(ctx, login("a@b.com", testPassword))
		require.NoError(t, err)

		h.auth.Store = faultyStore{Store: h.store, usersErr: store.ErrNotFound}
		resp, err := h.auth.CreateTokenByRefreshToken(ctx, issued.Data.RefreshToken)
		require.NoError(t, err)
		require.ErrorIs(t, resp.Err(), domain.ErrNotFound)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.Equal(t, domain.MsgUserNotFound, resp.Error.Message)

		rec, ok := h.record(t, "u1")
		require.True(t, ok)
		require.Equal(t, cryptox.FingerprintToken(issued.Data.RefreshToken), rec.CodeHash)
	})

	t.Run("duplicate records are a consistency failure", func(t *testing.T) {
		h := newHarness(t)
		h.auth.Store = faultyStore{Store: h.store, refreshErr: store.ErrMultipleRows}

		resp, err := h.auth.CreateTokenByRefreshToken(ctx, "anything")
		require.NoError(t, err)
		require.ErrorIs(t, resp.Err(), domain.ErrConsistency)
		require.Equal(t, domain.MsgMultipleRecords, resp.Error.Message)
		require.False(t, resp.Error.IsUserVisible)
	})

	t.Run("keeps user claims", func(t *testing.T) {
		h := newHarness(t)
		u := h.seedUser(t, "u1", "a@b.com")

		issued, err := h.auth.CreateToken(ctx, login("a@b.com", testPassword))
		require.NoError(t, err)

		resp, err := h.auth.CreateTokenByRefreshToken(ctx, issued.Data.RefreshToken)
		require.NoError(t, err)
		require.True(t, resp.IsSuccessful)

		claims, err := h.verifier.Verify(resp.Data.AccessToken)
		require.NoError(t, err)
		require.Equal(t, u.ID, claims.Subject)
		require.Equal(t, u.Email, claims.Email)
		require.Equal(t, jwtx.TokenTypeUser, claims.TokenType)
		require.Equal(t, []events.Type{events.TokenIssued, events.TokenRefreshed}, h.events.Types())
	})
}

func TestRevokeRefreshToken(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown code", func(t *testing.T) {
		h := newHarness(t)

		resp, err := h.auth.RevokeRefreshToken(ctx, "not-a-real-token")
		require.NoError(t, err)
		require.ErrorIs(t, resp.Err(), domain.ErrNotFound)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("revoked code cannot be redeemed", func(t *testing.T) {
		h := newHarness(t)
		h.seedUser(t, "u1", "a@b.com")

		issued, err := h.auth.CreateToken(ctx, login("a@b.com", testPassword))
		require.NoError(t, err)

		revoked, err := h.auth.RevokeRefreshToken(ctx, issued.Data.RefreshToken)
		require.NoError(t, err)
		require.True(t, revoked.IsSuccessful)
		require.Equal(t, http.StatusOK, revoked.StatusCode)
		require.Nil(t, revoked.Data)

		resp, err := h.auth.CreateTokenByRefreshToken(ctx, issued.Data.RefreshToken)
		require.NoError(t, err)
		require.ErrorIs(t, resp.Err(), domain.ErrNotFound)

		again, err := h.auth.RevokeRefreshToken(ctx, issued.Data.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, http.StatusNotFound, again.StatusCode)
	})
}

func TestCreateTokenByClient(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		h := newHarness(t)
		now := h.clock.Now().Truncate(time.Second)

		resp, err := h.auth.CreateTokenByClient(ctx, &domain.ClientLogin{ClientID: "svc-reports", ClientSecret: "reports-secret-value"})
		require.NoError(t, err)
		require.True(t, resp.IsSuccessful)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, now.Add(5*time.Minute), resp.Data.AccessTokenExpiresAt)

		claims, err := h.verifier.Verify(resp.Data.AccessToken)
		require.NoError(t, err)
		require.Equal(t, "svc-reports", claims.Subject)
		require.Equal(t, "svc-reports", claims.ClientID)
		require.Equal(t, jwtx.TokenTypeClient, claims.TokenType)
		require.Empty(t, claims.Email)
		require.Equal(t, []events.Type{events.ClientTokenIssued}, h.events.Types())
	})

	t.Run("each client gets its own lifetime", func(t *testing.T) {
		h := newHarness(t)
		now := h.clock.Now().Truncate(time.Second)

		resp, err := h.auth.CreateTokenByClient(ctx, &domain.ClientLogin{ClientID: "svc-billing", ClientSecret: "billing-secret-value"})
		require.NoError(t, err)
		require.Equal(t, now.Add(30*time.Minute), resp.Data.AccessTokenExpiresAt)
	})

	t.Run("bad credentials", func(t *testing.T) {
		h := newHarness(t)

		cases := []domain.ClientLogin{
			{ClientID: "svc-reports", ClientSecret: "reports-secret-valuf"},
			{ClientID: "svc-reports", ClientSecret: "reports-secret-value "},
			{ClientID: "svc-reports", ClientSecret: ""},
			{ClientID: "svc-unknown", ClientSecret: "reports-secret-value"},
			{ClientID: "svc-reports", ClientSecret: "billing-secret-value"},
		}
		for i, c := range cases {
			t.Run(fmt.Sprint(i), func(t *testing.T) {
				resp, err := h.auth.CreateTokenByClient(ctx, &c)
				require.NoError(t, err)
				require.Nil(t, resp.Data)
				require.ErrorIs(t, resp.Err(), domain.ErrAuthentication)
				require.Equal(t, http.StatusNotFound, resp.StatusCode)
				require.Equal(t, domain.MsgClientNotFound, resp.Error.Message)
			})
		}
	})

	t.Run("missing payload", func(t *testing.T) {
		h := newHarness(t)

		resp, err := h.auth.CreateTokenByClient(ctx, nil)
		require.NoError(t, err)
		require.ErrorIs(t, resp.Err(), domain.ErrValidation)
	})
}

// TestRefreshLifecycle walks one user through login, re-login, redemption and
// revocation, checking the stored record after every step.
func TestRefreshLifecycle(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.seedUser(t, "u1", "a@b.com")

	// login: one record {u1, C1, E1}
	r1, err := h.auth.CreateToken(ctx, login("a@b.com", testPassword))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, r1.StatusCode)
	c1 := r1.Data.RefreshToken
	rec, ok := h.record(t, "u1")
	require.True(t, ok)
	require.Equal(t, cryptox.FingerprintToken(c1), rec.CodeHash)

	// second login replaces it with C2
	h.clock.Advance(time.Minute)
	r2, err := h.auth.CreateToken(ctx, login("a@b.com", testPassword))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, r2.StatusCode)
	c2 := r2.Data.RefreshToken
	require.NotEqual(t, c1, c2)
	rec, ok = h.record(t, "u1")
	require.True(t, ok)
	require.Equal(t, cryptox.FingerprintToken(c2), rec.CodeHash)
	require.True(t, r2.Data.RefreshTokenExpiresAt.Equal(rec.ExpiresAt))

	// C1 is gone
	b1, err := h.auth.CreateTokenByRefreshToken(ctx, c1)
	require.NoError(t, err)
	require.ErrorIs(t, b1.Err(), domain.ErrNotFound)
	require.Equal(t, http.StatusNotFound, b1.StatusCode)

	// C2 redeems and rotates to C3
	h.clock.Advance(time.Minute)
	b2, err := h.auth.CreateTokenByRefreshToken(ctx, c2)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, b2.StatusCode)
	c3 := b2.Data.RefreshToken
	require.NotEqual(t, c2, c3)
	rec, ok = h.record(t, "u1")
	require.True(t, ok)
	require.Equal(t, cryptox.FingerprintToken(c3), rec.CodeHash)

	// revoke C3
	rv, err := h.auth.RevokeRefreshToken(ctx, c3)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rv.StatusCode)
	_, ok = h.record(t, "u1")
	require.False(t, ok)

	// C3 no longer redeems
	b3, err := h.auth.CreateTokenByRefreshToken(ctx, c3)
	require.NoError(t, err)
	require.ErrorIs(t, b3.Err(), domain.ErrNotFound)
	require.Equal(t, http.StatusNotFound, b3.StatusCode)

	require.Equal(t, []events.Type{
		events.TokenIssued,
		events.TokenIssued,
		events.TokenRefreshed,
		events.TokenRevoked,
	}, h.events.Types())
}

func TestPublishFailureDoesNotFailFlow(t *testing.T) {
	h := newHarness(t)
	h.seedUser(t, "u1", "a@b.com")
	h.events.err = errors.New("broker down")

	resp, err := h.auth.CreateToken(context.Background(), login("a@b.com", testPassword))
	require.NoError(t, err)
	require.True(t, resp.IsSuccessful)

	_, ok := h.record(t, "u1")
	require.True(t, ok)
}

func TestConcurrentLogins(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	const n = 4
	for i := range n {
		h.seedUser(t, fmt.Sprintf("u%d", i), fmt.Sprintf("u%d@example.com", i))
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := h.auth.CreateToken(ctx, login(fmt.Sprintf("u%d@example.com", i), testPassword))
			if err == nil {
				err = resp.Err()
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	for i := range n {
		_, ok := h.record(t, fmt.Sprintf("u%d", i))
		require.True(t, ok)
	}
}

func TestConcurrentLoginsForOneUser(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.seedUser(t, "u1", "a@b.com")

	const n = 4
	var wg sync.WaitGroup
	codes := make(chan string, n)
	errs := make(chan error, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := h.auth.CreateToken(ctx, login("a@b.com", testPassword))
			if err == nil {
				err = resp.Err()
			}
			if err != nil {
				errs <- err
				return
			}
			codes <- cryptox.FingerprintToken(resp.Data.RefreshToken)
		}()
	}
	wg.Wait()
	close(errs)
	close(codes)

	for err := range errs {
		require.NoError(t, err)
	}

	rec, ok := h.record(t, "u1")
	require.True(t, ok)

	var issued []string
	for c := range codes {
		issued = append(issued, c)
	}
	require.Len(t, issued, n)
	require.Contains(t, issued, rec.CodeHash)
}

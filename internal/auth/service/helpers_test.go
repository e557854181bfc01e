package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/jwtauth/internal/auth/domain"
	"github.com/aussiebroadwan/jwtauth/internal/auth/events"
	"github.com/aussiebroadwan/jwtauth/internal/auth/service"
	"github.com/aussiebroadwan/jwtauth/internal/auth/store"
	"github.com/aussiebroadwan/jwtauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/jwtauth/pkg/cryptox"
	"github.com/aussiebroadwan/jwtauth/pkg/jwtx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "jwtauth-test"
	testSecret   = "test-signing-secret-0123456789abcdef"
	testPassword = "secret123"
)

var testAudience = []string{"jwtauth-api"}

func TestMain(m *testing.M) {
	pepperPath := filepath.Join(os.TempDir(), "jwtauth-service-test-pepper")
	cryptox.SetPepperPath(pepperPath)
	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

// clock is a settable time source shared by the token service.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// recorder captures published events.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) Types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type harness struct {
	store    *sqlite.Store
	auth     *service.AuthService
	users    *service.UserService
	tokens   *service.TokenService
	verifier *jwtx.HS256Verifier
	events   *recorder
	registry *prometheus.Registry
	clock    *clock
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	key, err := jwtx.NewSymmetricKey(testSecret)
	require.NoError(t, err)
	signer, err := jwtx.NewSignerHS256(key)
	require.NoError(t, err)

	clients, err := service.NewClientRegistry([]domain.Client{
		{ID: "svc-reports", Secret: "reports-secret-value", AllowedLifetimeMinutes: 5},
		{ID: "svc-billing", Secret: "billing-secret-value", AllowedLifetimeMinutes: 30},
	})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	metrics := service.NewMetrics(reg)
	clk := &clock{t: time.Now().UTC()}

	tokens := &service.TokenService{
		Signer:     signer,
		Issuer:     testIssuer,
		Audience:   testAudience,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
		Now:        clk.Now,
	}
	users := &service.UserService{Store: s, Metrics: metrics}
	rec := &recorder{}

	return &harness{
		store: s,
		auth: &service.AuthService{
			Store:   s,
			Users:   users,
			Tokens:  tokens,
			Clients: clients,
			Events:  rec,
			Metrics: metrics,
		},
		users:    users,
		tokens:   tokens,
		verifier: jwtx.NewVerifierHS256(key, jwtx.VerifyOptions{Issuer: testIssuer, Audience: testAudience}),
		events:   rec,
		registry: reg,
		clock:    clk,
	}
}

// seedUser inserts a user with a known id and testPassword.
func (h *harness) seedUser(t *testing.T, id, email string) domain.User {
	t.Helper()

	hash, err := cryptox.HashPassword(testPassword)
	require.NoError(t, err)

	now := time.Now().UTC()
	u := domain.User{
		ID:           id,
		Email:        email,
		UserName:     "User " + id,
		PasswordHash: hash,
		Roles:        []string{domain.RoleUser},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, h.store.Users().CreateUser(context.Background(), u))
	return u
}

// record returns the refresh record owned by userID, if any.
func (h *harness) record(t *testing.T, userID string) (domain.RefreshToken, bool) {
	t.Helper()
	rt, err := h.store.RefreshTokens().GetRefreshTokenByUserID(context.Background(), userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.RefreshToken{}, false
	}
	require.NoError(t, err)
	return rt, true
}

// counter reads auth_flow_total for a flow/outcome pair.
func (h *harness) counter(t *testing.T, flow, outcome string) float64 {
	t.Helper()

	families, err := h.registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "auth_flow_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["flow"] == flow && labels["outcome"] == outcome {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

// faultyStore wraps a real store and makes repository calls inside
// transactions fail.
type faultyStore struct {
	store.Store
	refreshErr error
	usersErr   error
	createErr  error
}

func (f faultyStore) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := f.Store.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return faultyTx{baseTx: tx, refreshErr: f.refreshErr, usersErr: f.usersErr, createErr: f.createErr}, nil
}

func (f faultyStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := f.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// baseTx is embedded through an alias so the promoted Tx method is not
// shadowed by a field of the same name.
type baseTx = store.Tx

type faultyTx struct {
	baseTx
	refreshErr error
	usersErr   error
	createErr  error
}

func (t faultyTx) RefreshTokens() store.RefreshTokens {
	if t.refreshErr == nil && t.createErr == nil {
		return t.baseTx.RefreshTokens()
	}
	return faultyRefreshTokens{RefreshTokens: t.baseTx.RefreshTokens(), err: t.refreshErr, createErr: t.createErr}
}

func (t faultyTx) Users() store.Users {
	if t.usersErr == nil {
		return t.baseTx.Users()
	}
	return faultyUsers{Users: t.baseTx.Users(), err: t.usersErr}
}

type faultyRefreshTokens struct {
	store.RefreshTokens
	err       error
	createErr error
}

func (r faultyRefreshTokens) GetRefreshTokenByCode(ctx context.Context, codeHash string) (domain.RefreshToken, error) {
	if r.err == nil {
		return r.RefreshTokens.GetRefreshTokenByCode(ctx, codeHash)
	}
	return domain.RefreshToken{}, r.err
}

func (r faultyRefreshTokens) GetRefreshTokenByUserID(ctx context.Context, userID string) (domain.RefreshToken, error) {
	if r.err == nil {
		return r.RefreshTokens.GetRefreshTokenByUserID(ctx, userID)
	}
	return domain.RefreshToken{}, r.err
}

// CreateRefreshToken behaves like an insert that lost a race with another
// transaction for the same user.
func (r faultyRefreshTokens) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	if r.createErr == nil {
		return r.RefreshTokens.CreateRefreshToken(ctx, t)
	}
	return r.createErr
}

type faultyUsers struct {
	store.Users
	err error
}

func (u faultyUsers) GetUserByID(context.Context, string) (domain.User, error) {
	return domain.User{}, u.err
}

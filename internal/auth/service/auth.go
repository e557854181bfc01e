package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aussiebroadwan/jwtauth/internal/auth/domain"
	"github.com/aussiebroadwan/jwtauth/internal/auth/events"
	"github.com/aussiebroadwan/jwtauth/internal/auth/store"
	"github.com/aussiebroadwan/jwtauth/pkg/cryptox"
	"github.com/aussiebroadwan/jwtauth/pkg/slogx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/aussiebroadwan/jwtauth/internal/auth/service")

// AuthService runs the four token flows. Expected failures (bad credentials,
// unknown refresh token, broken store invariants) come back as a failed
// Response. A returned error means something outside the flow broke, such as
// the database being unreachable.
//
// Each user flow owns exactly one store.Tx: reads and the single mutation go
// through it and it is committed once at the end. Any early return rolls it
// back.
type AuthService struct {
	Store   store.Store
	Users   *UserService
	Tokens  *TokenService
	Clients *ClientRegistry
	Events  events.Publisher
	Metrics *Metrics
}

// CreateToken is the password login flow. Logging in always replaces the
// user's refresh token, so an older one stops working.
func (s *AuthService) CreateToken(ctx context.Context, login *domain.Login) (resp domain.Response[domain.TokenPair], err error) {
	ctx, span := tracer.Start(ctx, "auth.CreateToken")
	defer s.record(span, FlowLogin, time.Now(), &resp, &err)

	if login == nil {
		return domain.Fail[domain.TokenPair](domain.ErrValidation, domain.MsgPayloadRequired, http.StatusBadRequest, true), nil
	}

	invalid := domain.Fail[domain.TokenPair](domain.ErrAuthentication, domain.MsgInvalidCredentials, http.StatusBadRequest, true)

	// The password check is slow on purpose, so it runs before the
	// transaction is opened rather than while holding it.
	u, err := s.Store.Users().GetUserByEmail(ctx, domain.NormalizeEmail(login.Email))
	if errors.Is(err, store.ErrNotFound) {
		s.Users.RejectPassword(login.Password)
		slogx.FromContext(ctx).Info("login failed: unknown email")
		return invalid, nil
	}
	if err != nil {
		return domain.Response[domain.TokenPair]{}, fmt.Errorf("get user by email: %w", err)
	}
	if !s.Users.VerifyPassword(u, login.Password) {
		slogx.FromContext(ctx).Info("login failed: password mismatch", "user_id", u.ID)
		return invalid, nil
	}
	span.SetAttributes(attribute.String("user.id", u.ID))

	pair, err := s.Tokens.CreateUserToken(u)
	if err != nil {
		return domain.Response[domain.TokenPair]{}, err
	}
	record := domain.RefreshToken{
		UserID:    u.ID,
		CodeHash:  cryptox.FingerprintToken(pair.RefreshToken),
		ExpiresAt: pair.RefreshTokenExpiresAt,
	}

	err = s.saveLoginToken(ctx, record)
	if errors.Is(err, store.ErrMultipleRows) {
		return consistencyFailure[domain.TokenPair](ctx), nil
	}
	if err != nil {
		return domain.Response[domain.TokenPair]{}, err
	}

	s.publish(ctx, events.New(events.TokenIssued, u.ID, time.Now()).WithExpiry(pair.RefreshTokenExpiresAt))
	return domain.Success(pair, http.StatusOK), nil
}

// saveLoginToken stores the user's new refresh record. An insert that loses
// to a concurrent first login for the same user is retried as an upsert in a
// new transaction, so the last commit wins.
func (s *AuthService) saveLoginToken(ctx context.Context, record domain.RefreshToken) error {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.RefreshTokens().GetRefreshTokenByUserID(ctx, record.UserID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			return tx.RefreshTokens().CreateRefreshToken(ctx, record)
		case errors.Is(err, store.ErrMultipleRows):
			return err
		case err != nil:
			return fmt.Errorf("get refresh token by user: %w", err)
		}
		return tx.RefreshTokens().UpdateRefreshToken(ctx, record)
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		slogx.FromContext(ctx).Debug("concurrent login inserted first, replacing its record", "user_id", record.UserID)
		err = s.Store.WithTx(ctx, func(tx store.Tx) error {
			return tx.RefreshTokens().UpdateRefreshToken(ctx, record)
		})
	}
	if err != nil && !errors.Is(err, store.ErrMultipleRows) {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return err
}

// CreateTokenByRefreshToken redeems a refresh token for a new pair. The
// record is locked while it is replaced, so a token works once even when
// redeemed concurrently.
func (s *AuthService) CreateTokenByRefreshToken(ctx context.Context, refreshToken string) (resp domain.Response[domain.TokenPair], err error) {
	ctx, span := tracer.Start(ctx, "auth.CreateTokenByRefreshToken")
	defer s.record(span, FlowRefresh, time.Now(), &resp, &err)

	tx, err := s.Store.Tx(ctx)
	if err != nil {
		return domain.Response[domain.TokenPair]{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	record, fail, err := findRefreshToken[domain.TokenPair](ctx, tx, refreshToken)
	if fail != nil || err != nil {
		return derefOr(fail), err
	}

	// Expired records are indistinguishable from unknown ones to the caller;
	// housekeeping deletes them later.
	if record.Expired(s.Tokens.now()) {
		slogx.FromContext(ctx).Info("refresh rejected: token expired", "user_id", record.UserID)
		return domain.Fail[domain.TokenPair](domain.ErrNotFound, domain.MsgRefreshTokenNotFound, http.StatusNotFound, true), nil
	}

	u, err := tx.Users().GetUserByID(ctx, record.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Fail[domain.TokenPair](domain.ErrNotFound, domain.MsgUserNotFound, http.StatusNotFound, true), nil
	}
	if err != nil {
		return domain.Response[domain.TokenPair]{}, fmt.Errorf("get user by id: %w", err)
	}
	span.SetAttributes(attribute.String("user.id", u.ID))

	pair, err := s.Tokens.CreateUserToken(u)
	if err != nil {
		return domain.Response[domain.TokenPair]{}, err
	}

	record.CodeHash = cryptox.FingerprintToken(pair.RefreshToken)
	record.ExpiresAt = pair.RefreshTokenExpiresAt
	if err := tx.RefreshTokens().UpdateRefreshToken(ctx, record); err != nil {
		return domain.Response[domain.TokenPair]{}, fmt.Errorf("update refresh token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Response[domain.TokenPair]{}, fmt.Errorf("commit: %w", err)
	}

	s.publish(ctx, events.New(events.TokenRefreshed, u.ID, time.Now()).WithExpiry(pair.RefreshTokenExpiresAt))
	return domain.Success(pair, http.StatusOK), nil
}

// RevokeRefreshToken deletes the record behind refreshToken. Access tokens
// already issued stay valid until they expire.
func (s *AuthService) RevokeRefreshToken(ctx context.Context, refreshToken string) (resp domain.Response[domain.NoData], err error) {
	ctx, span := tracer.Start(ctx, "auth.RevokeRefreshToken")
	defer s.record(span, FlowRevoke, time.Now(), &resp, &err)

	tx, err := s.Store.Tx(ctx)
	if err != nil {
		return domain.Response[domain.NoData]{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	record, fail, err := findRefreshToken[domain.NoData](ctx, tx, refreshToken)
	if fail != nil || err != nil {
		return derefOr(fail), err
	}
	span.SetAttributes(attribute.String("user.id", record.UserID))

	err = tx.RefreshTokens().DeleteRefreshToken(ctx, record.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Fail[domain.NoData](domain.ErrNotFound, domain.MsgRefreshTokenNotFound, http.StatusNotFound, true), nil
	}
	if err != nil {
		return domain.Response[domain.NoData]{}, fmt.Errorf("delete refresh token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Response[domain.NoData]{}, fmt.Errorf("commit: %w", err)
	}

	s.publish(ctx, events.New(events.TokenRevoked, record.UserID, time.Now()))
	return domain.SuccessNoData(http.StatusOK), nil
}

// CreateTokenByClient exchanges a client id and secret for an access token.
// It is stateless: nothing is read from or written to the store.
func (s *AuthService) CreateTokenByClient(ctx context.Context, login *domain.ClientLogin) (resp domain.Response[domain.ClientToken], err error) {
	ctx, span := tracer.Start(ctx, "auth.CreateTokenByClient")
	defer s.record(span, FlowClient, time.Now(), &resp, &err)

	if login == nil {
		return domain.Fail[domain.ClientToken](domain.ErrValidation, domain.MsgPayloadRequired, http.StatusBadRequest, true), nil
	}

	client, ok := s.Clients.Find(login.ClientID, login.ClientSecret)
	if !ok {
		slogx.FromContext(ctx).Info("client login failed", "client_id", login.ClientID)
		return domain.Fail[domain.ClientToken](domain.ErrAuthentication, domain.MsgClientNotFound, http.StatusNotFound, true), nil
	}
	span.SetAttributes(attribute.String("client.id", client.ID))

	token, err := s.Tokens.CreateClientToken(client)
	if err != nil {
		return domain.Response[domain.ClientToken]{}, err
	}

	s.publish(ctx, events.New(events.ClientTokenIssued, client.ID, time.Now()).WithExpiry(token.AccessTokenExpiresAt))
	return domain.Success(token, http.StatusOK), nil
}

// findRefreshToken looks up the record for an opaque refresh token inside tx.
// Exactly one of the results is set: the record, a failed response, or an
// unexpected error.
func findRefreshToken[T any](ctx context.Context, tx store.Tx, refreshToken string) (domain.RefreshToken, *domain.Response[T], error) {
	notFound := domain.Fail[T](domain.ErrNotFound, domain.MsgRefreshTokenNotFound, http.StatusNotFound, true)
	if refreshToken == "" {
		return domain.RefreshToken{}, &notFound, nil
	}

	record, err := tx.RefreshTokens().GetRefreshTokenByCode(ctx, cryptox.FingerprintToken(refreshToken))
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.RefreshToken{}, &notFound, nil
	case errors.Is(err, store.ErrMultipleRows):
		fail := consistencyFailure[T](ctx)
		return domain.RefreshToken{}, &fail, nil
	case err != nil:
		return domain.RefreshToken{}, nil, fmt.Errorf("get refresh token by code: %w", err)
	}
	return record, nil, nil
}

func consistencyFailure[T any](ctx context.Context) domain.Response[T] {
	slogx.FromContext(ctx).Error("refresh token store returned more than one record")
	return domain.Fail[T](domain.ErrConsistency, domain.MsgMultipleRecords, http.StatusInternalServerError, false)
}

func derefOr[T any](r *domain.Response[T]) domain.Response[T] {
	if r == nil {
		return domain.Response[T]{}
	}
	return *r
}

// record finishes the span and counts the flow outcome.
func (s *AuthService) record(span trace.Span, flow string, start time.Time, resp interface{ Err() error }, err *error) {
	defer span.End()

	outcome := OutcomeSuccess
	switch {
	case *err != nil:
		outcome = OutcomeError
		span.RecordError(*err)
		span.SetStatus(codes.Error, (*err).Error())
	case resp.Err() != nil:
		outcome = OutcomeFailure
		span.SetAttributes(attribute.String("auth.failure", resp.Err().Error()))
	}
	span.SetAttributes(attribute.String("auth.outcome", outcome))
	s.Metrics.observe(flow, outcome, start)
}

// publish is best effort. The flow has already committed, so a broker outage
// is logged and otherwise ignored.
func (s *AuthService) publish(ctx context.Context, e events.Event) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, e); err != nil {
		slogx.FromContext(ctx).Warn("failed to publish token event",
			"event_type", string(e.Type),
			"error", err,
		)
	}
}

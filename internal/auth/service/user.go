package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/aussiebroadwan/jwtauth/internal/auth/domain"
	"github.com/aussiebroadwan/jwtauth/internal/auth/store"
	"github.com/aussiebroadwan/jwtauth/pkg/cryptox"
	"github.com/aussiebroadwan/jwtauth/pkg/httpx"
	"github.com/aussiebroadwan/jwtauth/pkg/idx"
	"github.com/aussiebroadwan/jwtauth/pkg/slogx"
)

type UserService struct {
	Store   store.Store
	Metrics *Metrics
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, userID)
}

// VerifyPassword is the credential check used by the login flow.
func (s *UserService) VerifyPassword(u domain.User, password string) bool {
	return cryptox.VerifyPassword(password, u.PasswordHash) == nil
}

// unknownUserHash is verified against when the login email has no account,
// so that branch costs the same hashing work as a wrong password.
var unknownUserHash = sync.OnceValue(func() string {
	h, err := cryptox.HashPassword("unknown-user")
	if err != nil {
		return ""
	}
	return h
})

// RejectPassword does the same hashing work as VerifyPassword for a login
// that has no account.
func (s *UserService) RejectPassword(password string) {
	_ = cryptox.VerifyPassword(password, unknownUserHash())
}

// CreateUser registers a new account with the default role. Validation
// problems and a taken email come back as a failed Response; only store
// outages are returned as errors.
func (s *UserService) CreateUser(ctx context.Context, reg domain.Registration) (domain.Response[domain.User], error) {
	start := time.Now()
	l := slogx.FromContext(ctx)

	reg.Email = domain.NormalizeEmail(reg.Email)
	if err := httpx.Validate(reg); err != nil {
		s.Metrics.observe(FlowRegister, OutcomeFailure, start)
		return domain.Fail[domain.User](domain.ErrValidation, err.Error(), http.StatusBadRequest, true), nil
	}

	hash, err := cryptox.HashPassword(reg.Password)
	if err != nil {
		s.Metrics.observe(FlowRegister, OutcomeError, start)
		return domain.Response[domain.User]{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	u := domain.User{
		ID:           idx.New().String(),
		Email:        reg.Email,
		UserName:     reg.UserName,
		PasswordHash: hash,
		Roles:        []string{domain.RoleUser},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The users table also enforces unique emails.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Users().GetUserByEmail(ctx, u.Email)
		switch {
		case err == nil:
			return store.ErrAlreadyExists
		case !errors.Is(err, store.ErrNotFound):
			return err
		}
		return tx.Users().CreateUser(ctx, u)
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			s.Metrics.observe(FlowRegister, OutcomeFailure, start)
			return domain.Fail[domain.User](domain.ErrValidation, domain.MsgEmailTaken, http.StatusBadRequest, true), nil
		}
		s.Metrics.observe(FlowRegister, OutcomeError, start)
		return domain.Response[domain.User]{}, fmt.Errorf("create user: %w", err)
	}

	s.Metrics.observe(FlowRegister, OutcomeSuccess, start)
	l.Info("user registered", "user_id", u.ID)
	return domain.Success(u, http.StatusCreated), nil
}

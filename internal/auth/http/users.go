package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/jwtauth/internal/auth/domain"
	"github.com/aussiebroadwan/jwtauth/internal/auth/service"
	"github.com/aussiebroadwan/jwtauth/internal/auth/store"
	"github.com/aussiebroadwan/jwtauth/pkg/authsdk"
	"github.com/aussiebroadwan/jwtauth/pkg/httpx"
)

// UsersHandler serves registration and the current-user endpoint.
type UsersHandler struct {
	UserService *service.UserService
}

// HandleRegister godoc
//
//	@Summary		Register User
//	@Description	Creates a user account with the default "user" role. Emails are compared case-insensitively.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest					true	"New account"
//	@Success		201		{object}	authsdk.Envelope[authsdk.User]			"Created user"
//	@Failure		400		{object}	authsdk.Envelope[authsdk.NoData]		"Invalid payload or email already registered"
//	@Failure		429		{object}	authsdk.Envelope[authsdk.NoData]		"Rate limited"
//	@Router			/v1/users [post].
func (h *UsersHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	resp, err := h.UserService.CreateUser(r.Context(), domain.Registration{
		Email:    req.Email,
		UserName: req.UserName,
		Password: req.Password,
	})
	writeResult(w, r, resp, err, toUser)
}

// HandleMe godoc
//
//	@Summary		Current User
//	@Description	Returns the user the bearer access token was issued to. Client tokens are rejected.
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.Envelope[authsdk.User]		"User"
//	@Failure		401	{object}	authsdk.Envelope[authsdk.NoData]	"Missing, invalid or expired token"
//	@Failure		403	{object}	authsdk.Envelope[authsdk.NoData]	"Not a user token"
//	@Failure		404	{object}	authsdk.Envelope[authsdk.NoData]	"User no longer exists"
//	@Router			/v1/users/me [get].
func (h *UsersHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID := httpx.SubjectFromContext(r.Context())

	u, err := h.UserService.GetUserByID(r.Context(), userID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		resp := domain.Fail[domain.User](domain.ErrNotFound, domain.MsgUserNotFound, http.StatusNotFound, true)
		writeResult(w, r, resp, nil, toUser)
	case err != nil:
		writeResult(w, r, domain.Response[domain.User]{}, err, toUser)
	default:
		writeResult(w, r, domain.Success(u, http.StatusOK), nil, toUser)
	}
}

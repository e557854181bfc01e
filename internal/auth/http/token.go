package http

import (
	"net/http"

	"github.com/aussiebroadwan/jwtauth/internal/auth/domain"
	"github.com/aussiebroadwan/jwtauth/internal/auth/service"
	"github.com/aussiebroadwan/jwtauth/pkg/authsdk"
)

// TokenHandler serves the token issuance, refresh and revocation endpoints.
type TokenHandler struct {
	AuthService *service.AuthService
}

// HandleLogin godoc
//
//	@Summary		Password Login
//	@Description	Exchanges an email and password for an access token and a refresh token.
//	@Description	Logging in again replaces the user's refresh token, so the previous one stops working.
//	@Description	Unknown email and wrong password return the same message.
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest							true	"Credentials"
//	@Success		200		{object}	authsdk.Envelope[authsdk.TokenPair]				"Token pair"
//	@Failure		400		{object}	authsdk.Envelope[authsdk.NoData]				"Invalid payload or invalid credentials"
//	@Failure		429		{object}	authsdk.Envelope[authsdk.NoData]				"Rate limited"
//	@Header			200		{string}	Cache-Control									"no-store"
//	@Router			/v1/auth/token [post].
func (h *TokenHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	resp, err := h.AuthService.CreateToken(r.Context(), &domain.Login{
		Email:    req.Email,
		Password: req.Password,
	})
	writeResult(w, r, resp, err, toTokenPair)
}

// HandleClient godoc
//
//	@Summary		Client Credentials
//	@Description	Exchanges a configured client id and secret for an access token. No refresh token is issued.
//	@Description	The token lifetime is the client's configured lifetime.
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ClientTokenRequest						true	"Client credentials"
//	@Success		200		{object}	authsdk.Envelope[authsdk.ClientToken]			"Access token"
//	@Failure		400		{object}	authsdk.Envelope[authsdk.NoData]				"Invalid payload"
//	@Failure		404		{object}	authsdk.Envelope[authsdk.NoData]				"Unknown client id or wrong secret"
//	@Failure		429		{object}	authsdk.Envelope[authsdk.NoData]				"Rate limited"
//	@Router			/v1/auth/token/client [post].
func (h *TokenHandler) HandleClient(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ClientTokenRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	resp, err := h.AuthService.CreateTokenByClient(r.Context(), &domain.ClientLogin{
		ClientID:     req.ClientID,
		ClientSecret: req.ClientSecret,
	})
	writeResult(w, r, resp, err, toClientToken)
}

// HandleRefresh godoc
//
//	@Summary		Refresh Token Redemption
//	@Description	Redeems a refresh token for a new token pair. The submitted refresh token is consumed.
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RefreshTokenRequest						true	"Refresh token"
//	@Success		200		{object}	authsdk.Envelope[authsdk.TokenPair]				"New token pair"
//	@Failure		400		{object}	authsdk.Envelope[authsdk.NoData]				"Invalid payload"
//	@Failure		404		{object}	authsdk.Envelope[authsdk.NoData]				"Unknown, rotated, revoked or expired refresh token"
//	@Router			/v1/auth/token/refresh [post].
func (h *TokenHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RefreshTokenRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	resp, err := h.AuthService.CreateTokenByRefreshToken(r.Context(), req.RefreshToken)
	writeResult(w, r, resp, err, toTokenPair)
}

// HandleRevoke godoc
//
//	@Summary		Refresh Token Revocation
//	@Description	Deletes the refresh record for the submitted token. Issued access tokens stay valid until they expire.
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RefreshTokenRequest						true	"Refresh token"
//	@Success		200		{object}	authsdk.Envelope[authsdk.NoData]				"Revoked"
//	@Failure		400		{object}	authsdk.Envelope[authsdk.NoData]				"Invalid payload"
//	@Failure		404		{object}	authsdk.Envelope[authsdk.NoData]				"Unknown refresh token"
//	@Router			/v1/auth/token/revoke [post].
func (h *TokenHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RefreshTokenRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	resp, err := h.AuthService.RevokeRefreshToken(r.Context(), req.RefreshToken)
	writeResult[domain.NoData, authsdk.NoData](w, r, resp, err, nil)
}

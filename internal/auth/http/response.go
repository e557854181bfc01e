package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/aussiebroadwan/jwtauth/internal/auth/domain"
	"github.com/aussiebroadwan/jwtauth/pkg/authsdk"
	"github.com/aussiebroadwan/jwtauth/pkg/httpx"
	"github.com/aussiebroadwan/jwtauth/pkg/slogx"
)

// writeResult maps a service result onto the wire envelope. A non-nil err is
// an outage, not a caller mistake: it is logged and reported as a 500 without
// detail.
func writeResult[T, D any](
	w http.ResponseWriter,
	r *http.Request,
	resp domain.Response[T],
	err error,
	mapData func(T) D,
) {
	log := slogx.FromContext(r.Context())

	if err != nil {
		log.Error("request failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, authsdk.Envelope[D]{
			StatusCode: http.StatusInternalServerError,
			Error:      &authsdk.ErrorDetail{Message: domain.MsgInternal},
		})
		return
	}

	env := authsdk.Envelope[D]{
		StatusCode:   resp.StatusCode,
		IsSuccessful: resp.IsSuccessful,
	}
	if resp.Data != nil && mapData != nil {
		d := mapData(*resp.Data)
		env.Data = &d
	}
	if resp.Error != nil {
		env.Error = &authsdk.ErrorDetail{
			Message:       resp.Error.Message,
			IsUserVisible: resp.Error.IsUserVisible,
		}
		if !resp.Error.IsUserVisible {
			log.Error("request failed", "status", resp.StatusCode, "err", resp.Error.Message)
		}
	}

	httpx.WriteJSON(w, resp.StatusCode, env)
}

// decodeRequest reads the JSON body into v. On failure it writes the
// validation envelope and returns false.
func decodeRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	err := httpx.DecodeJSON(r, v)
	if err == nil {
		return true
	}

	msg := err.Error()
	if errors.Is(err, io.EOF) {
		msg = domain.MsgPayloadRequired
	}
	resp := domain.Fail[domain.NoData](domain.ErrValidation, msg, http.StatusBadRequest, true)
	writeResult[domain.NoData, authsdk.NoData](w, r, resp, nil, nil)
	return false
}

// ============================================================================
// domain -> wire mapping
// ============================================================================

func toTokenPair(p domain.TokenPair) authsdk.TokenPair {
	return authsdk.TokenPair{
		AccessToken:           p.AccessToken,
		AccessTokenExpiresAt:  p.AccessTokenExpiresAt,
		RefreshToken:          p.RefreshToken,
		RefreshTokenExpiresAt: p.RefreshTokenExpiresAt,
	}
}

func toClientToken(t domain.ClientToken) authsdk.ClientToken {
	return authsdk.ClientToken{
		AccessToken:          t.AccessToken,
		AccessTokenExpiresAt: t.AccessTokenExpiresAt,
	}
}

func toUser(u domain.User) authsdk.User {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return authsdk.User{
		ID:        u.ID,
		Email:     u.Email,
		UserName:  u.UserName,
		Roles:     roles,
		CreatedAt: u.CreatedAt,
	}
}

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/ccxpauth/internal/common"
	"github.com/dmitrijs2005/ccxpauth/internal/server/auth"
	"github.com/dmitrijs2005/ccxpauth/internal/server/services"
)

// statusClientClosedRequest is the nginx convention for a client that went
// away before the response.
const statusClientClosedRequest = 499

type signInRequest struct {
	StudentID string `json:"studentId"`
	Password  string `json:"password"`
}

type refreshRequest struct {
	StudentID         string `json:"studentId"`
	EncryptedPassword string `json:"encryptedPassword"`
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !decode(w, r, &req) {
		return
	}
	if req.StudentID == "" || req.Password == "" {
		writeResponse(w, invalidRequest())
		return
	}
	writeResponse(w, s.auth.SignIn(r.Context(), req.StudentID, req.Password))
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decode(w, r, &req) {
		return
	}
	if req.StudentID == "" || req.EncryptedPassword == "" {
		writeResponse(w, invalidRequest())
		return
	}
	writeResponse(w, s.auth.RefreshSession(r.Context(), req.StudentID, req.EncryptedPassword))
}

// whoAmI returns the profile claims of a bearer token minted by SignIn.
func (s *Server) whoAmI(w http.ResponseWriter, r *http.Request) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		writeError(w, http.StatusUnauthorized, services.ErrorBody{Kind: common.KindInvalidToken, Message: "missing bearer token"})
		return
	}
	claims, err := auth.ParseToken(token, s.tokenSecret)
	if err != nil {
		writeError(w, http.StatusUnauthorized, services.ErrorBody{Kind: common.Kind(err), Message: common.Message(err)})
		return
	}
	writeJSON(w, http.StatusOK, claims.Profile())
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, services.ErrorBody{Kind: common.KindInvalidRequest, Message: "request too large"})
			return false
		}
		writeError(w, http.StatusBadRequest, services.ErrorBody{Kind: common.KindInvalidRequest, Message: "invalid JSON"})
		return false
	}
	return true
}

func invalidRequest() services.Response {
	return services.Response{Error: &services.ErrorBody{
		Kind:    common.KindInvalidRequest,
		Message: common.Message(common.ErrInvalidRequest),
	}}
}

// statusFor maps an error kind onto an HTTP status. The body always carries
// the kind and message.
func statusFor(kind string) int {
	switch kind {
	case common.KindInvalidRequest, common.KindDecryption:
		return http.StatusBadRequest
	case common.KindInvalidCredentials:
		return http.StatusUnauthorized
	case common.KindRateLimited:
		return http.StatusTooManyRequests
	case common.KindUnknown, common.KindCaptchaMismatch:
		return http.StatusBadGateway
	case common.KindUpstreamTimeout:
		return http.StatusGatewayTimeout
	case common.KindCanceled:
		return statusClientClosedRequest
	}
	return http.StatusInternalServerError
}

func writeResponse(w http.ResponseWriter, resp services.Response) {
	if resp.Error != nil {
		writeJSON(w, statusFor(resp.Error.Kind), resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeError(w http.ResponseWriter, status int, body services.ErrorBody) {
	writeJSON(w, status, services.Response{Error: &body})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

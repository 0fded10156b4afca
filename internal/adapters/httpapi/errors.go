package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/nullable"

	"github.com/vaultbank/vaultbank-web/internal/app/banking"
	"github.com/vaultbank/vaultbank-web/internal/gateway"
)

// Error codes owned by the web adapter. Validation codes come from banking.
const (
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeUpstream            = "UPSTREAM_ERROR"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeSession             = "SESSION_ERROR"
	CodeInternal            = "INTERNAL_ERROR"
	CodeBadRequest          = "BAD_REQUEST"
)

type errorBody struct {
	Code      string                            `json:"code"`
	Message   string                            `json:"message"`
	Details   nullable.Nullable[map[string]any] `json:"details,omitempty"`
	RequestID nullable.Nullable[string]         `json:"requestId,omitempty"`
}

type errorResponse struct {
	Error    errorBody `json:"error"`
	Redirect string    `json:"redirect,omitempty"`
}

func newErrorResponse(r *http.Request, code, message string, details map[string]any) errorResponse {
	var er errorResponse
	er.Error.Code = code
	er.Error.Message = message
	if details != nil {
		er.Error.Details = nullable.NewNullableWithValue(details)
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		er.Error.RequestID = nullable.NewNullableWithValue(rid)
	}
	return er
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]any) {
	writeJSON(w, status, newErrorResponse(r, code, message, details))
}

// writeFailure maps an application or gateway failure onto the response. When the
// failure recorded a navigation (401 teardown), the target is returned as "redirect".
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, rs *requestSession, err error) {
	status, code, message := http.StatusInternalServerError, CodeInternal, "Something went wrong. Please try again."
	var details map[string]any

	if ae := (*banking.Error)(nil); errors.As(err, &ae) {
		status, code, message, details = ae.Status, ae.Code, ae.Message, ae.Details
	} else if ge := (*gateway.Error)(nil); errors.As(err, &ge) {
		message = ge.Message
		switch {
		case ge.Kind == gateway.KindTransport:
			status, code = http.StatusBadGateway, CodeUpstreamUnavailable
		case ge.Unauthorized():
			status, code = http.StatusUnauthorized, CodeUnauthorized
		default:
			status, code = ge.Status, CodeUpstream
		}
	} else {
		s.logger.Printf("web: %s %s: %v", r.Method, r.URL.Path, err)
	}
	if status < 400 || status > 599 {
		status = http.StatusBadGateway
	}

	er := newErrorResponse(r, code, message, details)
	if rs != nil {
		if to, ok := rs.nav.Last(); ok {
			er.Redirect = to.Path()
		}
	}
	writeJSON(w, status, er)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/vaultbank/vaultbank-web/internal/app/banking"
	"github.com/vaultbank/vaultbank-web/internal/domain"
	"github.com/vaultbank/vaultbank-web/internal/gateway"
)

const maxFormBytes = 1 << 20

// formValues is a submitted form, from either a JSON object or a form-encoded body.
// A JSON null is kept as a present nil value.
type formValues map[string]any

func decodeForm(w http.ResponseWriter, r *http.Request) (formValues, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "application/json" {
		var v formValues
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			return nil, fmt.Errorf("invalid JSON body: %w", err)
		}
		if v == nil {
			v = formValues{}
		}
		return v, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form body: %w", err)
	}
	v := formValues{}
	for k, vals := range r.PostForm {
		if len(vals) > 0 {
			v[k] = vals[0]
		}
	}
	return v, nil
}

func (f formValues) str(key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// amount parses a numeric field. Anything unparsable is NaN, which validation rejects.
func (f formValues) amount(key string) float64 {
	switch v := f[key].(type) {
	case float64:
		return v
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil {
			return n
		}
	}
	return math.NaN()
}

func (f formValues) optional(key string) banking.Optional[string] {
	v, present := f[key]
	if !present {
		return banking.Unspecified[string]()
	}
	if v == nil {
		return banking.Null[string]()
	}
	return banking.Some(f.str(key))
}

type formHandler func(ctx context.Context, rs *requestSession, f formValues) (outcomeView, error)

// form wraps a form action submitted from page p. Actions of protected pages require
// a token; the bank API remains the authority on whether it is still valid.
func (s *Server) form(p domain.Page, h formHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rs, ok := requestSessionFromContext(r.Context())
		if !ok {
			writeError(w, r, http.StatusInternalServerError, CodeSession, "Could not establish a session.", nil)
			return
		}
		ctx := gateway.WithPage(r.Context(), p)

		intent, err := rs.guard.Enforce(ctx, p, false)
		if err != nil {
			s.writeFailure(w, r, rs, err)
			return
		}
		if intent.IsRedirect() {
			er := newErrorResponse(r, CodeUnauthorized, "Please log in to continue.", nil)
			er.Redirect = intent.Redirect.Path()
			writeJSON(w, http.StatusUnauthorized, er)
			return
		}

		f, err := decodeForm(w, r)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
			return
		}

		out, err := h(ctx, rs, f)
		if err != nil {
			s.writeFailure(w, r, rs, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func fromOutcome(o banking.Outcome) outcomeView {
	v := outcomeView{Message: o.Message}
	if o.Next != "" {
		v.Redirect = o.Next.Path()
	}
	return v
}

func (s *Server) handleLogin(ctx context.Context, rs *requestSession, f formValues) (outcomeView, error) {
	identifier := f.str("identifier")
	if identifier == "" {
		// The login form labels the field "email".
		identifier = f.str("email")
	}
	o, err := rs.bank.Login(ctx, identifier, f.str("password"))
	if err != nil {
		return outcomeView{}, err
	}
	return fromOutcome(o), nil
}

func (s *Server) handleRegister(ctx context.Context, rs *requestSession, f formValues) (outcomeView, error) {
	o, err := rs.bank.Register(ctx, banking.RegisterInput{
		FirstName:       f.str("firstName"),
		LastName:        f.str("lastName"),
		Email:           f.str("email"),
		ContactNumber:   f.str("contactNumber"),
		Username:        f.str("username"),
		Password:        f.str("password"),
		ConfirmPassword: f.str("confirmPassword"),
	})
	if err != nil {
		return outcomeView{}, err
	}
	return fromOutcome(o), nil
}

// handleLogout needs neither a form nor a guard: forgetting the token always succeeds.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	rs, ok := requestSessionFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusInternalServerError, CodeSession, "Could not establish a session.", nil)
		return
	}
	o, err := rs.bank.Logout(r.Context())
	if err != nil {
		s.writeFailure(w, r, rs, err)
		return
	}
	writeJSON(w, http.StatusOK, fromOutcome(o))
}

func (s *Server) handleUpdateProfile(ctx context.Context, rs *requestSession, f formValues) (outcomeView, error) {
	prof, o, err := rs.bank.UpdateProfile(ctx, banking.ProfilePatch{
		FirstName:     f.optional("firstName"),
		LastName:      f.optional("lastName"),
		Email:         f.optional("email"),
		ContactNumber: f.optional("contactNumber"),
	})
	if err != nil {
		return outcomeView{}, err
	}
	out := fromOutcome(o)
	pv := toProfileView(prof)
	out.Profile = &pv
	return out, nil
}

func (s *Server) handleChangePassword(ctx context.Context, rs *requestSession, f formValues) (outcomeView, error) {
	o, err := rs.bank.ChangePassword(ctx, banking.ChangePasswordInput{
		CurrentPassword:    f.str("currentPassword"),
		NewPassword:        f.str("newPassword"),
		ConfirmNewPassword: f.str("confirmNewPassword"),
	})
	if err != nil {
		return outcomeView{}, err
	}
	return fromOutcome(o), nil
}

func (s *Server) handleDeposit(ctx context.Context, rs *requestSession, f formValues) (outcomeView, error) {
	o, err := rs.bank.Deposit(ctx, f.amount("amount"))
	if err != nil {
		return outcomeView{}, err
	}
	return fromOutcome(o), nil
}

func (s *Server) handleWithdraw(ctx context.Context, rs *requestSession, f formValues) (outcomeView, error) {
	o, err := rs.bank.Withdraw(ctx, f.amount("amount"))
	if err != nil {
		return outcomeView{}, err
	}
	return fromOutcome(o), nil
}

func (s *Server) handleTransfer(ctx context.Context, rs *requestSession, f formValues) (outcomeView, error) {
	o, err := rs.bank.Transfer(ctx, f.str("toEmail"), f.amount("amount"))
	if err != nil {
		return outcomeView{}, err
	}
	return fromOutcome(o), nil
}

func (s *Server) handleSubmitTicket(ctx context.Context, rs *requestSession, f formValues) (outcomeView, error) {
	t, o, err := rs.bank.SubmitTicket(ctx, banking.TicketInput{
		Subject:  f.str("subject"),
		Category: f.str("category"),
		Message:  f.str("message"),
	})
	if err != nil {
		return outcomeView{}, err
	}
	out := fromOutcome(o)
	out.Ticket = toTicketView(t)
	return out, nil
}

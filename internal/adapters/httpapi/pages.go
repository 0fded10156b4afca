package httpapi

import (
	"context"
	"net/http"

	"github.com/vaultbank/vaultbank-web/internal/domain"
	"github.com/vaultbank/vaultbank-web/internal/gateway"
)

// handlePage serves one page. The guard runs first; a redirect intent is answered with
// 303 before any data is fetched. A 401 while loading data redirects the same way.
func (s *Server) handlePage(p domain.Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rs, ok := requestSessionFromContext(r.Context())
		if !ok {
			writeError(w, r, http.StatusInternalServerError, CodeSession, "Could not establish a session.", nil)
			return
		}
		ctx := gateway.WithPage(r.Context(), p)

		intent, err := rs.guard.Enforce(ctx, p, true)
		if err != nil {
			s.writeFailure(w, r, rs, err)
			return
		}
		if intent.IsRedirect() {
			http.Redirect(w, r, intent.Redirect.Path(), http.StatusSeeOther)
			return
		}

		view, err := s.loadView(ctx, rs, p)
		if err != nil {
			if to, navigated := rs.nav.Last(); navigated {
				http.Redirect(w, r, to.Path(), http.StatusSeeOther)
				return
			}
			s.writeFailure(w, r, rs, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func (s *Server) loadView(ctx context.Context, rs *requestSession, p domain.Page) (any, error) {
	switch p {
	case domain.PageDashboard:
		d, err := rs.bank.Dashboard(ctx)
		if err != nil {
			return nil, err
		}
		return toDashboardView(d), nil

	case domain.PageTransaction:
		rep, err := rs.bank.TransactionsReport(ctx)
		if err != nil {
			return nil, err
		}
		return toReportView(rep), nil

	case domain.PageTransac:
		d, err := rs.bank.Dashboard(ctx)
		if err != nil {
			return nil, err
		}
		forms := map[domain.TransactionForm][]accountOptionView{}
		for _, f := range []domain.TransactionForm{domain.FormWithdraw, domain.FormDeposit, domain.FormTransfer} {
			forms[f] = toAccountOptions(domain.AccountsFor(f, d.Balances))
		}
		return transactionFormsView{Page: p, Forms: forms}, nil

	case domain.PageSettings:
		prof, err := rs.bank.Me(ctx)
		if err != nil {
			return nil, err
		}
		return settingsView{Page: p, Profile: toProfileView(prof)}, nil

	case domain.PageSupport:
		return supportView{Page: p, Categories: supportCategories}, nil
	}
	return pageView{Page: p}, nil
}

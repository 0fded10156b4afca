package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/vaultbank/vaultbank-web/internal/app/banking"
	"github.com/vaultbank/vaultbank-web/internal/domain"
	"github.com/vaultbank/vaultbank-web/internal/gateway"
	clockport "github.com/vaultbank/vaultbank-web/internal/ports/out/clock"
	"github.com/vaultbank/vaultbank-web/internal/ports/out/credstore"
	"github.com/vaultbank/vaultbank-web/internal/ports/out/navigator"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type cliOptions struct {
	APIBaseURL string
	Store      credstore.Store
	HTTPClient *http.Client
	Logger     *log.Logger
	Clock      clockport.Clock
	Stdout     io.Writer
	Stderr     io.Writer
}

type cli struct {
	stdout io.Writer
	stderr io.Writer
	guard  *gateway.Guard
	bank   *banking.Service
}

// command is one CLI verb. page is the page the command stands for; the route guard
// runs against it before anything else.
type command struct {
	name  string
	page  domain.Page
	usage string
	run   func(ctx context.Context, c *cli, args []string) error
}

var commands = []command{
	{"login", domain.PageLogin, "login -id <email|username> [-password <pw>]", runLogin},
	{"signup", domain.PageSignup, "signup -first <name> -last <name> -email <email> -username <name> [-contact <n>] [-password <pw>]", runSignup},
	{"logout", "", "logout", runLogout},
	{"dashboard", domain.PageDashboard, "dashboard", runDashboard},
	{"transactions", domain.PageTransaction, "transactions", runTransactions},
	{"accounts", domain.PageTransac, "accounts [-form withdraw|deposit|transfer]", runAccounts},
	{"deposit", domain.PageTransac, "deposit <amount>", runMoney(func(s *banking.Service) func(context.Context, float64) (banking.Outcome, error) { return s.Deposit })},
	{"withdraw", domain.PageTransac, "withdraw <amount>", runMoney(func(s *banking.Service) func(context.Context, float64) (banking.Outcome, error) { return s.Withdraw })},
	{"transfer", domain.PageTransac, "transfer -to <email> <amount>", runTransfer},
	{"profile", domain.PageSettings, "profile", runProfile},
	{"update-profile", domain.PageSettings, "update-profile [-first <name>] [-last <name>] [-email <email>] [-contact <n>] [-clear-contact]", runUpdateProfile},
	{"change-password", domain.PageSettings, "change-password [-current <pw>] [-new <pw>]", runChangePassword},
	{"ticket", domain.PageSupport, "ticket -subject <s> [-category <c>] <message>", runTicket},
}

// commandFor maps a page onto the command a user should run to get there.
var commandFor = map[domain.Page]string{
	domain.PageLogin:          "login",
	domain.PageSignup:         "signup",
	domain.PageForgotPassword: "login",
	domain.PageDashboard:      "dashboard",
	domain.PageTransaction:    "transactions",
	domain.PageTransac:        "accounts",
	domain.PageLog:            "transactions",
	domain.PageSettings:       "profile",
	domain.PageSupport:        "ticket",
}

func newCLI(opts cliOptions) *cli {
	stderr := opts.Stderr
	nav := navigator.Func(func(_ context.Context, to domain.Page) error {
		_, err := fmt.Fprintf(stderr, "next: vaultbank %s\n", commandFor[to])
		return err
	})
	api := gateway.NewWithOptions(opts.APIBaseURL, opts.Store, nav, gateway.Options{
		HTTPClient: opts.HTTPClient,
		Logger:     opts.Logger,
	})
	return &cli{
		stdout: opts.Stdout,
		stderr: stderr,
		guard:  gateway.NewGuardWithLogger(opts.Store, nav, opts.Logger),
		bank:   banking.NewService(api, opts.Store, opts.Clock),
	}
}

func (c *cli) usage() {
	fmt.Fprintln(c.stderr, "usage: vaultbank <command> [flags]")
	fmt.Fprintln(c.stderr, "commands:")
	for _, cmd := range commands {
		fmt.Fprintf(c.stderr, "  %s\n", cmd.usage)
	}
}

func (c *cli) run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		c.usage()
		return exitUsage
	}
	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
			break
		}
	}
	if cmd == nil {
		fmt.Fprintf(c.stderr, "unknown command %q\n", args[0])
		c.usage()
		return exitUsage
	}

	if cmd.page != "" {
		ctx = gateway.WithPage(ctx, cmd.page)
		intent, err := c.guard.Enforce(ctx, cmd.page, true)
		if err != nil {
			fmt.Fprintln(c.stderr, "Error:", err)
			return exitError
		}
		switch intent.Redirect {
		case domain.PageDashboard:
			fmt.Fprintln(c.stdout, "You are already logged in.")
			return exitOK
		case domain.PageLogin:
			fmt.Fprintln(c.stderr, "Please log in first.")
			return exitError
		}
	}

	if err := cmd.run(ctx, c, args[1:]); err != nil {
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintf(c.stderr, "%v\nusage: vaultbank %s\n", err, cmd.usage)
			return exitUsage
		}
		fmt.Fprintln(c.stderr, "Error:", err)
		return exitError
	}
	return exitOK
}

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usageError{msg: err.Error()}
	}
	return nil
}

// secret returns the flag value, else the named environment variable.
func secret(v, env string) string {
	if v != "" {
		return v
	}
	return os.Getenv(env)
}

func runLogin(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("login")
	id := fs.String("id", "", "email or username")
	pw := fs.String("password", "", "password (or VAULTBANK_PASSWORD)")
	if err := parse(fs, args); err != nil {
		return err
	}
	out, err := c.bank.Login(ctx, *id, secret(*pw, "VAULTBANK_PASSWORD"))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, out.Message)
	return nil
}

func runSignup(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("signup")
	first := fs.String("first", "", "first name")
	last := fs.String("last", "", "last name")
	email := fs.String("email", "", "email")
	username := fs.String("username", "", "username")
	contact := fs.String("contact", "", "contact number")
	pw := fs.String("password", "", "password (or VAULTBANK_PASSWORD)")
	if err := parse(fs, args); err != nil {
		return err
	}
	password := secret(*pw, "VAULTBANK_PASSWORD")
	out, err := c.bank.Register(ctx, banking.RegisterInput{
		FirstName:       *first,
		LastName:        *last,
		Email:           *email,
		ContactNumber:   *contact,
		Username:        *username,
		Password:        password,
		ConfirmPassword: password,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, out.Message)
	return nil
}

func runLogout(ctx context.Context, c *cli, _ []string) error {
	out, err := c.bank.Logout(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, out.Message)
	return nil
}

func runDashboard(ctx context.Context, c *cli, _ []string) error {
	d, err := c.bank.Dashboard(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Welcome back, %s!\n\n", d.FirstName)
	fmt.Fprintf(c.stdout, "  Total balance       %s\n", formatPHP(d.Balances.Total))
	fmt.Fprintf(c.stdout, "  Current account     %s\n", formatPHP(d.Balances.Current))
	fmt.Fprintf(c.stdout, "  Savings account     %s\n", formatPHP(d.Balances.Savings))
	fmt.Fprintf(c.stdout, "  Investment account  %s\n\n", formatPHP(d.Balances.Investment))

	if len(d.RecentTransactions) == 0 {
		fmt.Fprintln(c.stdout, "No recent transactions.")
		return nil
	}
	fmt.Fprintln(c.stdout, "Recent transactions:")
	for _, t := range d.RecentTransactions {
		sign := "-"
		if t.IsIncome() {
			sign = "+"
		}
		fmt.Fprintf(c.stdout, "  %s  %-12s %s%s\n", t.CreatedAt.Format("Jan 2, 2006"), t.Describe(), sign, formatPHP(t.Amount))
	}
	return nil
}

func runTransactions(ctx context.Context, c *cli, _ []string) error {
	rep, err := c.bank.TransactionsReport(ctx)
	if err != nil {
		return err
	}
	if len(rep.Rows) == 0 {
		fmt.Fprintln(c.stdout, "No transactions found.")
	}
	for _, r := range rep.Rows {
		sign := "-"
		if r.IsIncome {
			sign = "+"
		}
		fmt.Fprintf(c.stdout, "  #%s  %s  %-10s %s%s\n", r.ShortID(), r.Date, r.Type, sign, formatPHP(r.Amount))
	}
	fmt.Fprintf(c.stdout, "\nIncome %s  Expenses %s  Net %s\n",
		formatPHP(rep.Summary.TotalIncome), formatPHP(rep.Summary.TotalExpenses), formatPHP(rep.Summary.NetBalance))
	return nil
}

func runAccounts(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("accounts")
	form := fs.String("form", string(domain.FormWithdraw), "withdraw|deposit|transfer")
	if err := parse(fs, args); err != nil {
		return err
	}
	f := domain.TransactionForm(*form)
	switch f {
	case domain.FormWithdraw, domain.FormDeposit, domain.FormTransfer:
	default:
		return usageError{msg: fmt.Sprintf("unknown form %q", *form)}
	}
	opts, err := c.bank.TransactionAccounts(ctx, f)
	if err != nil {
		return err
	}
	for _, o := range opts {
		if o.ShowBalance {
			fmt.Fprintf(c.stdout, "  %s  %s (%s)\n", o.Code, o.Name, formatPHP(o.Balance))
		} else {
			fmt.Fprintf(c.stdout, "  %s  %s\n", o.Code, o.Name)
		}
	}
	return nil
}

// parseAmount leaves range checks to the service so the CLI and web share one rule.
func parseAmount(args []string) (float64, error) {
	if len(args) != 1 {
		return 0, usageError{msg: "expected exactly one amount"}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
	if err != nil {
		return math.NaN(), nil
	}
	return v, nil
}

func runMoney(op func(*banking.Service) func(context.Context, float64) (banking.Outcome, error)) func(context.Context, *cli, []string) error {
	return func(ctx context.Context, c *cli, args []string) error {
		amount, err := parseAmount(args)
		if err != nil {
			return err
		}
		out, err := op(c.bank)(ctx, amount)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.stdout, out.Message)
		return nil
	}
}

func runTransfer(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("transfer")
	to := fs.String("to", "", "recipient email")
	if err := parse(fs, args); err != nil {
		return err
	}
	amount, err := parseAmount(fs.Args())
	if err != nil {
		return err
	}
	out, err := c.bank.Transfer(ctx, *to, amount)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, out.Message)
	return nil
}

func runProfile(ctx context.Context, c *cli, _ []string) error {
	p, err := c.bank.Me(ctx)
	if err != nil {
		return err
	}
	printProfile(c.stdout, p)
	return nil
}

func printProfile(w io.Writer, p domain.Profile) {
	fmt.Fprintf(w, "  Name      %s %s\n", p.FirstName, p.LastName)
	fmt.Fprintf(w, "  Email     %s\n", p.Email)
	if p.Username != "" {
		fmt.Fprintf(w, "  Username  %s\n", p.Username)
	}
	if p.ContactNumber != "" {
		fmt.Fprintf(w, "  Contact   %s\n", p.ContactNumber)
	}
}

func runUpdateProfile(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("update-profile")
	fs.String("first", "", "first name")
	fs.String("last", "", "last name")
	fs.String("email", "", "email")
	fs.String("contact", "", "contact number")
	clearContact := fs.Bool("clear-contact", false, "remove the contact number")
	if err := parse(fs, args); err != nil {
		return err
	}

	// Only flags given on the command line are sent.
	set := map[string]string{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = f.Value.String() })
	opt := func(name string) banking.Optional[string] {
		if v, ok := set[name]; ok {
			return banking.Some(v)
		}
		return banking.Unspecified[string]()
	}
	patch := banking.ProfilePatch{
		FirstName:     opt("first"),
		LastName:      opt("last"),
		Email:         opt("email"),
		ContactNumber: opt("contact"),
	}
	if *clearContact {
		patch.ContactNumber = banking.Null[string]()
	}

	p, out, err := c.bank.UpdateProfile(ctx, patch)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, out.Message)
	printProfile(c.stdout, p)
	return nil
}

func runChangePassword(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("change-password")
	cur := fs.String("current", "", "current password (or VAULTBANK_PASSWORD)")
	next := fs.String("new", "", "new password (or VAULTBANK_NEW_PASSWORD)")
	if err := parse(fs, args); err != nil {
		return err
	}
	newPassword := secret(*next, "VAULTBANK_NEW_PASSWORD")
	out, err := c.bank.ChangePassword(ctx, banking.ChangePasswordInput{
		CurrentPassword:    secret(*cur, "VAULTBANK_PASSWORD"),
		NewPassword:        newPassword,
		ConfirmNewPassword: newPassword,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, out.Message)
	return nil
}

func runTicket(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("ticket")
	subject := fs.String("subject", "", "subject")
	category := fs.String("category", "other", "category")
	if err := parse(fs, args); err != nil {
		return err
	}
	t, out, err := c.bank.SubmitTicket(ctx, banking.TicketInput{
		Subject:  *subject,
		Category: *category,
		Message:  strings.Join(fs.Args(), " "),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, out.Message)
	fmt.Fprintf(c.stdout, "Reference: %s\n", t.Reference)
	return nil
}

// formatPHP renders an amount as "₱1,234.50".
func formatPHP(v float64) string {
	neg := v < 0
	s := strconv.FormatFloat(math.Abs(v), 'f', 2, 64)
	intPart, frac, _ := strings.Cut(s, ".")

	var groups []string
	for len(intPart) > 3 {
		groups = append(groups, intPart[len(intPart)-3:])
		intPart = intPart[:len(intPart)-3]
	}
	groups = append(groups, intPart)
	for i, j := 0, len(groups)-1; i < j; i, j = i+1, j-1 {
		groups[i], groups[j] = groups[j], groups[i]
	}

	out := "₱" + strings.Join(groups, ",") + "." + frac
	if neg {
		return "-" + out
	}
	return out
}

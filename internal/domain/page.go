package domain

// Page identifies one screen of the banking front-end.
type Page string

const (
	PageLogin          Page = "login"
	PageSignup         Page = "signup"
	PageForgotPassword Page = "forgot-password"

	PageDashboard   Page = "dashboard"
	PageTransaction Page = "transaction"
	PageTransac     Page = "transac"
	PageLog         Page = "log"
	PageSettings    Page = "settings"
	PageSupport     Page = "support"
)

// PageKind classifies a page for the route guard.
type PageKind int

const (
	// PageKindNeutral pages are reachable with or without a session.
	PageKindNeutral PageKind = iota
	// PageKindPublicAuth pages are the login/signup flows; signed-in users are bounced to the dashboard.
	PageKindPublicAuth
	// PageKindProtected pages require a session.
	PageKindProtected
)

func (k PageKind) String() string {
	switch k {
	case PageKindPublicAuth:
		return "public-auth"
	case PageKindProtected:
		return "protected"
	default:
		return "neutral"
	}
}

var pageKinds = map[Page]PageKind{
	PageLogin:          PageKindPublicAuth,
	PageSignup:         PageKindPublicAuth,
	PageForgotPassword: PageKindPublicAuth,

	PageDashboard:   PageKindProtected,
	PageTransaction: PageKindProtected,
	PageTransac:     PageKindProtected,
	PageLog:         PageKindProtected,
	PageSettings:    PageKindProtected,
	PageSupport:     PageKindProtected,
}

// Kind returns the page's classification. Unknown pages are neutral.
func (p Page) Kind() PageKind {
	return pageKinds[p]
}

// Path is the web route serving the page.
func (p Page) Path() string {
	return "/" + string(p)
}

// Pages lists every known page in a stable order.
func Pages() []Page {
	return []Page{
		PageLogin, PageSignup, PageForgotPassword,
		PageDashboard, PageTransaction, PageTransac, PageLog, PageSettings, PageSupport,
	}
}

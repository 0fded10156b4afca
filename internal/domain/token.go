package domain

// TokenKey is the fixed key the bearer token is persisted under.
const TokenKey = "vaultBankAuthToken"

// Token is the opaque bearer credential issued by the bank API on login.
// It is never parsed or validated client-side; the server is the authority.
type Token string

func (t Token) IsZero() bool { return t == "" }

// SessionTokenKey namespaces TokenKey for a server-side session.
func SessionTokenKey(sid SessionID) string {
	return TokenKey + ":" + string(sid)
}

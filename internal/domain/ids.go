package domain

// SessionID identifies one browser session of the web front-end.
// It is opaque; the web adapter mints it as a UUID.
type SessionID string

// TicketRef is the reference handed back when a support ticket is accepted.
type TicketRef string

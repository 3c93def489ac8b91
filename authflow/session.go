package authflow

// SessionValues are the fields of a browser session the login flow reads and
// writes.
type SessionValues struct {
	State        string
	CodeVerifier string
	AccessToken  string
	UserLoggedIn bool
}

// Session is the per-request view of the caller's session. The server owns
// storage and cookies; the flow only sees named fields.
type Session interface {
	Values() SessionValues
	Save(values SessionValues) error
	// Renew drops the current session id. The next Save issues a new one, so
	// an id known before login is worthless after it.
	Renew() error
	// Destroy removes the session and expires its cookie. It cannot be undone.
	Destroy() error
}

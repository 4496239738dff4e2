// Package models holds the client-side data types shared by services and
// the CLI.
package models

// State is a Session Manager lifecycle state.
type State string

const (
	StateIdle            State = "idle"
	StateRestoring       State = "restoring"
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
)

// Session is a point-in-time copy of the session. User is nil while the
// profile has not been fetched yet, even when State is authenticated.
type Session struct {
	Token string
	User  *Profile
	State State
}

// IsAuthenticated reports whether the session holds a usable token.
func (s Session) IsAuthenticated() bool {
	return s.State == StateAuthenticated && s.Token != ""
}

// Package services contains the application services of the farmkeeper
// client: the Session Manager, which owns the in-memory session and the
// credential lifecycle, and the Account service for registration, password
// reset and profile details.
//
// Screens depend on the SessionReader and SessionController capabilities
// rather than on *SessionManager, so a screen that only displays the user
// cannot log anybody out.
package services

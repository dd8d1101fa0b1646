package matrix

import (
	"errors"
	"net/http"

	"maunium.net/go/mautrix"
)

var (
	// ErrInvalidHomeserver is returned when the homeserver URL cannot be used.
	ErrInvalidHomeserver = errors.New("invalid homeserver URL")

	// ErrNotLoggedIn is returned when an authenticated call is made without
	// an access token.
	ErrNotLoggedIn = errors.New("no access token: run `traveller login` first")

	// ErrInvalidUserID is returned when a user id has no server part.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrNoCredentials is returned when a login answer lacks a token or user id.
	ErrNoCredentials = errors.New("login returned no credentials")
)

// IsTemporary reports whether the same request may succeed later: rate
// limiting and server-side failures.
func IsTemporary(err error) bool {
	if errors.Is(err, mautrix.MLimitExceeded) {
		return true
	}
	var httpErr mautrix.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Response == nil {
		return false
	}
	code := httpErr.Response.StatusCode
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

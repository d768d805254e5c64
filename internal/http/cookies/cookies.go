// Package cookies sets and clears the session cookies issued on login.
package cookies

import (
	"net/http"
	"time"
)

// Cookie names.
const (
	AccessToken = "access_token"
	LoggedIn    = "logged_in"
)

// Options holds the attributes shared by both cookies.
type Options struct {
	TTL    time.Duration
	Secure bool
}

// Set writes the HttpOnly access token cookie and the script-readable
// logged_in marker, both expiring after TTL.
func Set(w http.ResponseWriter, token string, opts Options, now time.Time) {
	expires := now.Add(opts.TTL)
	maxAge := int(opts.TTL / time.Second)

	http.SetCookie(w, &http.Cookie{
		Name:     AccessToken,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     LoggedIn,
		Value:    "true",
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: false,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires both cookies.
func Clear(w http.ResponseWriter, opts Options) {
	for _, name := range []string{AccessToken, LoggedIn} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: name == AccessToken,
			Secure:   opts.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// Token returns the access token cookie value, or "" when absent.
func Token(r *http.Request) string {
	c, err := r.Cookie(AccessToken)
	if err != nil {
		return ""
	}
	return c.Value
}

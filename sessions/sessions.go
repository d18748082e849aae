// Package sessions implements some helpers for getting started with
// indieauth.
//
// This is basically a wrapper for gorilla/sessions, some handlers for
// sign-in, callback and sign-out, and a couple of handlers for protecting
// routes. It assumes you only need to authenticate a single user.
package sessions

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"

	"github.com/indieweb-go/indieauth"
)

// Sessions provides some handlers for authenticating a single user with
// indieauth. State round-trips through the client's encrypted state token, so
// nothing needs to be remembered between the sign-in redirect and the
// callback beyond the cookie itself.
type Sessions struct {
	me     string
	store  sessions.Store
	client *indieauth.Client

	// Handler to use when Shield fails
	DefaultSignedOut http.Handler
	// Path to redirect to on sign-in/out
	Root string
}

// New creates a new Sessions for the user identified by me, discovering
// their endpoints up front. The secret is used both to encrypt state tokens
// and to authenticate the session cookie.
//
// New takes ownership of client: its me is set (and canonicalized by
// discovery), its Secret is replaced with secret, and its endpoints are
// filled in. Don't share the client with anything else afterwards.
func New(me, secret string, client *indieauth.Client) (*Sessions, error) {
	if me == "" {
		return nil, errors.New("me must be non-empty")
	}
	if secret == "" {
		return nil, errors.New("secret must be non-empty")
	}

	if err := client.SetMe(me); err != nil {
		return nil, err
	}
	client.Secret = secret

	if _, err := client.DiscoverEndpoints(); err != nil {
		return nil, err
	}

	return &Sessions{
		me:               client.Me(),
		store:            sessions.NewCookieStore([]byte(secret)),
		client:           client,
		DefaultSignedOut: http.NotFoundHandler(),
		Root:             "/",
	}, nil
}

func (s *Sessions) get(r *http.Request) string {
	session, _ := s.store.Get(r, "session")

	if v, ok := session.Values["me"].(string); ok {
		return v
	}

	return ""
}

func (s *Sessions) set(w http.ResponseWriter, r *http.Request, me string) {
	session, _ := s.store.Get(r, "session")
	session.Values["me"] = me
	session.Save(r, w)
}

// Choose allows you to switch between two handlers depending on whether the
// expected user is signed in or not.
func (s *Sessions) Choose(signedIn, signedOut http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if addr := s.get(r); addr == s.me {
			signedIn.ServeHTTP(w, r)
		} else {
			signedOut.ServeHTTP(w, r)
		}
	}
}

// Shield will let the request continue if the expected user is signed in,
// otherwise they will be shown the DefaultSignedOut handler.
func (s *Sessions) Shield(signedIn http.Handler) http.HandlerFunc {
	return s.Choose(signedIn, s.DefaultSignedOut)
}

// SignIn should be assigned to a route like /sign-in, it redirects users to
// their authorization endpoint with a freshly derived state token.
func (s *Sessions) SignIn() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.client.State = ""

		redirectURL, err := s.client.AuthCodeURL("id")
		if err != nil {
			http.Error(w, "could not start auth", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, redirectURL, http.StatusFound)
	}
}

// Callback should be assigned to the redirectURI you configured for
// indieauth.
func (s *Sessions) Callback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.client.CheckState(r.FormValue("state")) {
			http.Error(w, "state is bad", http.StatusBadRequest)
			return
		}

		me, err := s.client.VerifyCode(r.FormValue("code"))
		if err != nil || strings.TrimRight(me, "/") != strings.TrimRight(s.me, "/") {
			http.Error(w, "nope", http.StatusForbidden)
			return
		}

		s.client.State = ""
		s.set(w, r, s.me)
		http.Redirect(w, r, s.Root, http.StatusFound)
	}
}

// SignOut will remove the session cookie for the user.
func (s *Sessions) SignOut() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.set(w, r, "")
		http.Redirect(w, r, s.Root, http.StatusFound)
	}
}

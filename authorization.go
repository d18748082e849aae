package indieauth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"net/url"
	"strings"
)

// AuthCodeURL builds the URL to redirect the user to for authentication
// (responseType "id", the default) or authorization (responseType "code").
//
// When State is empty and Secret, me and clientID are all configured a fresh
// state token is derived first. A missing prerequisite silently skips the
// derivation, leaving State empty: callers without a Secret are expected to
// supply their own state.
//
// When responseType is "code" and a CodeVerifier is configured the S256
// challenge for it is appended as code_challenge.
func (c *Client) AuthCodeURL(responseType string, scopes ...string) (string, error) {
	if responseType == "" {
		responseType = "id"
	}

	if c.State == "" && c.Secret != "" && c.me != "" && c.clientID != "" {
		state, err := GenerateState(c.me, c.clientID, c.Secret)
		if err != nil {
			return "", err
		}
		c.State = state
	}

	if c.me == "" {
		return "", &ConfigurationError{Field: "me"}
	}
	if c.State == "" {
		return "", &ConfigurationError{Field: "state"}
	}
	if responseType == "code" && len(scopes) == 0 {
		return "", &ProtocolError{Message: "At least one scope is required when requesting a code"}
	}

	if c.authEndpoint == "" {
		if _, err := c.DiscoverEndpoints(); err != nil {
			return "", err
		}
	}

	form := url.Values{
		"me":            {c.me},
		"client_id":     {c.clientID},
		"redirect_uri":  {c.redirectURI},
		"response_type": {responseType},
		"state":         {c.State},
	}

	if len(scopes) > 0 {
		form.Set("scope", strings.Join(scopes, " "))
	}

	if responseType == "code" && c.CodeVerifier != "" {
		form.Set("code_challenge_method", "S256")
		form.Set("code_challenge", s256(c.CodeVerifier))
	}

	endpoint, err := url.Parse(c.authEndpoint)
	if err != nil {
		return "", err
	}

	queryURL := &url.URL{RawQuery: form.Encode()}

	return endpoint.ResolveReference(queryURL).String(), nil
}

// s256 derives the PKCE challenge for a verifier.
func s256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64URL(sum[:])
}

func base64URL(data []byte) string {
	s := base64.URLEncoding.EncodeToString(data)
	return strings.TrimRight(s, "=")
}

// RandomVerifier returns a fresh string suitable for use as a PKCE code
// verifier or as a caller-supplied state.
func RandomVerifier() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64URL(b), nil
}

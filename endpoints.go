package indieauth

import (
	"io"
	"net/http"
	"net/url"
	"strings"
)

// defaultMaxRedirects bounds the redirect chain followed during discovery, so
// a hostile profile URL cannot keep the client chasing Location headers.
const defaultMaxRedirects = 10

// Endpoints holds the endpoints discovered for a user, along with any extra
// relations that were asked for. A requested relation the page does not
// advertise maps to nil.
type Endpoints struct {
	Authorization *url.URL
	Token         *url.URL
	Rels          map[string]*url.URL
}

// CanonicalizeURL parses s and re-serializes it in normalized absolute form:
// an empty path becomes "/" and default ports are dropped, so
// "https://example.com" and "https://example.com:443" both canonicalize to
// "https://example.com/".
func CanonicalizeURL(s string) (string, error) {
	if err := validateURL(s); err != nil {
		return "", err
	}

	u, _ := url.Parse(s)

	if u.Path == "" {
		u.Path = "/"
	}

	switch u.Scheme {
	case "http":
		u.Host = strings.TrimSuffix(u.Host, ":80")
	case "https":
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}

	return u.String(), nil
}

type fetched struct {
	finalURL *url.URL
	body     []byte
	header   http.Header
}

// resolveWithRedirects issues a GET for target, following redirects itself. A
// permanent redirect (301, 308) means the canonical identity has moved, so
// the target of the redirect becomes the final URL. A temporary redirect
// (302, 307) only moves the content: it is fetched from the new location but
// the URL being redirected away from stays canonical.
func (c *Client) resolveWithRedirects(target *url.URL) (*fetched, error) {
	client := c.noRedirectClient()

	maxHops := c.MaxRedirects
	if maxHops <= 0 {
		maxHops = defaultMaxRedirects
	}

	canonical := target
	current := target

	for hops := 0; ; hops++ {
		if hops > maxHops {
			return nil, &NetworkError{URL: canonical.String(), Message: "Too many redirects"}
		}

		resp, err := client.Get(current.String())
		if err != nil {
			return nil, &NetworkError{URL: canonical.String(), Err: err}
		}

		switch resp.StatusCode {
		case http.StatusMovedPermanently, http.StatusPermanentRedirect,
			http.StatusFound, http.StatusTemporaryRedirect:
			location, err := current.Parse(resp.Header.Get("Location"))
			resp.Body.Close()
			if err != nil {
				return nil, &NetworkError{URL: canonical.String(), StatusCode: resp.StatusCode, Err: err}
			}

			c.log().Debug("following redirect",
				"status", resp.StatusCode, "from", current.String(), "to", location.String())

			if resp.StatusCode == http.StatusMovedPermanently ||
				resp.StatusCode == http.StatusPermanentRedirect {
				canonical = location
			}
			current = location

		default:
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				resp.Body.Close()
				return nil, &NetworkError{URL: canonical.String(), StatusCode: resp.StatusCode}
			}

			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, &NetworkError{URL: canonical.String(), Err: err}
			}

			return &fetched{finalURL: canonical, body: body, header: resp.Header}, nil
		}
	}
}

// DiscoverEndpoints fetches the user's profile URL and extracts their
// authorization and token endpoints, plus any extra relations asked for. Only
// the first value per relation is kept. The client's me is updated to the
// final canonical URL of the profile, so a permanently moved profile changes
// the identity that later exchanges are checked against.
func (c *Client) DiscoverEndpoints(extraRels ...string) (*Endpoints, error) {
	if c.me == "" {
		return nil, &ConfigurationError{Field: "me"}
	}

	canonical, err := CanonicalizeURL(c.me)
	if err != nil {
		return nil, err
	}
	meURL, _ := url.Parse(canonical)

	page, err := c.resolveWithRedirects(meURL)
	if err != nil {
		return nil, err
	}

	rels := parseRels(page.finalURL, page.body, page.header)

	first := func(rel string) *url.URL {
		values := rels[strings.ToLower(rel)]
		if len(values) == 0 {
			return nil
		}
		u, err := url.Parse(values[0])
		if err != nil {
			return nil
		}
		return u
	}

	endpoints := &Endpoints{
		Authorization: first("authorization_endpoint"),
		Token:         first("token_endpoint"),
		Rels:          make(map[string]*url.URL),
	}
	for _, rel := range extraRels {
		endpoints.Rels[strings.ToLower(rel)] = first(rel)
	}

	final, err := CanonicalizeURL(page.finalURL.String())
	if err != nil {
		return nil, err
	}
	if err := c.SetMe(final); err != nil {
		return nil, err
	}

	if endpoints.Authorization == nil {
		return nil, &ProtocolError{Message: "No authorization endpoint found"}
	}
	if err := c.SetAuthEndpoint(endpoints.Authorization.String()); err != nil {
		return nil, err
	}

	if endpoints.Token != nil {
		if err := c.SetTokenEndpoint(endpoints.Token.String()); err != nil {
			return nil, err
		}
	}

	c.log().Debug("discovered endpoints",
		"me", c.me,
		"authorization_endpoint", c.authEndpoint,
		"token_endpoint", c.tokenEndpoint)

	return endpoints, nil
}

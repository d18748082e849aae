package indieauth

import (
	"log/slog"
	"net/http"
	"net/url"
)

// Client holds the configuration for performing the IndieAuth flows on behalf
// of a single user. The URL fields are validated on every assignment, so a
// Client never holds a value that is not an absolute http or https URL.
//
// A Client is not safe for overlapping calls: DiscoverEndpoints and VerifyCode
// write back to the configuration they were invoked on, so callers issuing
// concurrent calls against one instance must serialize them.
type Client struct {
	me            string
	clientID      string
	redirectURI   string
	authEndpoint  string
	tokenEndpoint string

	// Secret is opaque key material used to encrypt state tokens. It is only
	// needed when state is generated or validated by this client.
	Secret string

	// CodeVerifier, when set, is used to derive a PKCE challenge for
	// authorization requests and is sent along when redeeming the code.
	CodeVerifier string

	// State is the anti-forgery token round-tripped through the authorization
	// redirect. Leave it empty to have AuthCodeURL derive one from Secret.
	State string

	// HTTPClient is used for all requests. Redirects are followed by the
	// library itself, so any CheckRedirect policy it carries is ignored
	// during discovery.
	HTTPClient *http.Client

	// MaxRedirects caps the redirect chain followed during discovery. Zero
	// means the default of 10.
	MaxRedirects int

	// Logger receives debug traces of redirect hops and discovered
	// endpoints. Nil means slog.Default.
	Logger *slog.Logger
}

// New creates a Client for the app identified by clientID that receives
// authorization responses at redirectURI.
func New(clientID, redirectURI string) (*Client, error) {
	c := &Client{}

	if err := c.SetClientID(clientID); err != nil {
		return nil, err
	}
	if err := c.SetRedirectURI(redirectURI); err != nil {
		return nil, err
	}

	return c, nil
}

// validateURL accepts only strings that parse as absolute http or https URLs.
func validateURL(candidate string) error {
	u, err := url.Parse(candidate)
	if err != nil || u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return &ValidationError{Message: "Invalid URL"}
	}

	return nil
}

// Me returns the user's profile URL, if set.
func (c *Client) Me() string { return c.me }

// SetMe sets the user's profile URL. The previous value is kept if me is not
// an absolute http or https URL.
func (c *Client) SetMe(me string) error {
	if err := validateURL(me); err != nil {
		return err
	}
	c.me = me
	return nil
}

// ClientID returns the URL identifying this app.
func (c *Client) ClientID() string { return c.clientID }

// SetClientID sets the URL identifying this app.
func (c *Client) SetClientID(clientID string) error {
	if err := validateURL(clientID); err != nil {
		return err
	}
	c.clientID = clientID
	return nil
}

// RedirectURI returns the URL the authorization endpoint sends the user back
// to.
func (c *Client) RedirectURI() string { return c.redirectURI }

// SetRedirectURI sets the URL the authorization endpoint sends the user back
// to.
func (c *Client) SetRedirectURI(redirectURI string) error {
	if err := validateURL(redirectURI); err != nil {
		return err
	}
	c.redirectURI = redirectURI
	return nil
}

// AuthEndpoint returns the user's authorization endpoint, if known.
func (c *Client) AuthEndpoint() string { return c.authEndpoint }

// SetAuthEndpoint sets the user's authorization endpoint.
func (c *Client) SetAuthEndpoint(endpoint string) error {
	if err := validateURL(endpoint); err != nil {
		return err
	}
	c.authEndpoint = endpoint
	return nil
}

// TokenEndpoint returns the user's token endpoint, if known.
func (c *Client) TokenEndpoint() string { return c.tokenEndpoint }

// SetTokenEndpoint sets the user's token endpoint.
func (c *Client) SetTokenEndpoint(endpoint string) error {
	if err := validateURL(endpoint); err != nil {
		return err
	}
	c.tokenEndpoint = endpoint
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// noRedirectClient derives a client that returns redirect responses instead
// of following them, so discovery can apply the permanent/temporary
// distinction itself.
func (c *Client) noRedirectClient() *http.Client {
	base := c.httpClient()

	return &http.Client{
		Transport: base.Transport,
		Jar:       base.Jar,
		Timeout:   base.Timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (c *Client) log() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

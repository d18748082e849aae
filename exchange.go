package indieauth

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

type endpointResponse struct {
	Me               string
	AccessToken      string
	TokenType        string
	Scope            string
	Error            string
	ErrorDescription string
}

// decodeResponse parses an endpoint response body, dispatching on the
// declared Content-Type. Anything that does not declare JSON is parsed as
// form-encoded.
func decodeResponse(contentType string, body []byte) (*endpointResponse, error) {
	mediatype, _, _ := mime.ParseMediaType(contentType)

	if mediatype == "application/json" {
		var data struct {
			Me               string `json:"me"`
			AccessToken      string `json:"access_token"`
			TokenType        string `json:"token_type"`
			Scope            string `json:"scope"`
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, &ProtocolError{Message: "Could not parse response: " + err.Error()}
		}

		return &endpointResponse{
			Me:               data.Me,
			AccessToken:      data.AccessToken,
			TokenType:        data.TokenType,
			Scope:            data.Scope,
			Error:            data.Error,
			ErrorDescription: data.ErrorDescription,
		}, nil
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, &ProtocolError{Message: "Could not parse response: " + err.Error()}
	}

	return &endpointResponse{
		Me:               values.Get("me"),
		AccessToken:      values.Get("access_token"),
		TokenType:        values.Get("token_type"),
		Scope:            values.Get("scope"),
		Error:            values.Get("error"),
		ErrorDescription: values.Get("error_description"),
	}, nil
}

// postForm sends a form-encoded POST to endpoint and decodes the reply. An
// error field in the body is reported over the bare status code, since it
// carries the more specific message.
func (c *Client) postForm(endpoint string, form url.Values) (*endpointResponse, error) {
	req, err := http.NewRequest("POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=UTF-8")
	req.Header.Set("Accept", "application/json, application/x-www-form-urlencoded")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, &NetworkError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: endpoint, Err: err}
	}

	decoded, decodeErr := decodeResponse(resp.Header.Get("Content-Type"), body)

	if decoded != nil {
		if decoded.ErrorDescription != "" {
			return nil, &ProtocolError{Message: decoded.ErrorDescription, StatusCode: resp.StatusCode}
		}
		if decoded.Error != "" {
			return nil, &ProtocolError{Message: decoded.Error, StatusCode: resp.StatusCode}
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProtocolError{Message: "Endpoint returned an error response", StatusCode: resp.StatusCode}
	}

	if decodeErr != nil {
		return nil, decodeErr
	}

	return decoded, nil
}

// VerifyCode checks an authorization code with the authorization endpoint and
// returns the profile URL it was issued for. The returned me must equal the
// configured me, ignoring trailing slashes; when no me was configured yet it
// is adopted from the response.
func (c *Client) VerifyCode(code string) (string, error) {
	if c.authEndpoint == "" {
		return "", &ConfigurationError{Field: "authEndpoint"}
	}

	resp, err := c.postForm(c.authEndpoint, url.Values{
		"code":         {code},
		"client_id":    {c.clientID},
		"redirect_uri": {c.redirectURI},
	})
	if err != nil {
		return "", err
	}

	if resp.Me == "" {
		return "", &ProtocolError{Message: "The response did not include a me value"}
	}

	if c.me != "" && strings.TrimRight(resp.Me, "/") != strings.TrimRight(c.me, "/") {
		return "", &ProtocolError{Message: "The me values did not match"}
	}

	if c.me == "" {
		if err := c.SetMe(resp.Me); err != nil {
			return "", err
		}
	}

	return resp.Me, nil
}

// RedeemToken exchanges an authorization code for an access token at the
// token endpoint. The me in the response must share the configured me's
// hostname; paths and schemes may legitimately differ, so this is not a
// full-string comparison.
func (c *Client) RedeemToken(code string) (*Token, error) {
	if c.tokenEndpoint == "" {
		return nil, &ConfigurationError{Field: "tokenEndpoint"}
	}
	if c.me == "" {
		return nil, &ConfigurationError{Field: "me"}
	}

	form := url.Values{
		"grant_type":   {"authorization_code"},
		"me":           {c.me},
		"code":         {code},
		"client_id":    {c.clientID},
		"redirect_uri": {c.redirectURI},
	}
	if c.CodeVerifier != "" {
		form.Set("code_verifier", c.CodeVerifier)
	}

	resp, err := c.postForm(c.tokenEndpoint, form)
	if err != nil {
		return nil, err
	}

	if resp.Me == "" || resp.Scope == "" || resp.AccessToken == "" {
		return nil, &ProtocolError{Message: "The response is missing one of me, scope or access_token"}
	}

	responseMe, err := url.Parse(resp.Me)
	if err != nil {
		return nil, &ProtocolError{Message: "The response me is not a valid URL"}
	}
	configuredMe, _ := url.Parse(c.me)

	if responseMe.Hostname() != configuredMe.Hostname() {
		return nil, &ProtocolError{Message: "The me values do not share the same hostname"}
	}

	return &Token{
		AccessToken: resp.AccessToken,
		TokenType:   resp.TokenType,
		Scopes:      strings.Fields(resp.Scope),
		Me:          resp.Me,
	}, nil
}

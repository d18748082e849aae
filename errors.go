package indieauth

import "fmt"

// ValidationError means a value given for one of the client's URL fields is
// not an absolute http or https URL.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ConfigurationError means a field that the failed operation needs was left
// empty. The caller must fix their inputs; retrying will not help.
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s must be set", e.Field)
}

// ProtocolError means a response from an auth-flow endpoint violated what the
// protocol requires: a missing field, a mismatched identity, or an invalid or
// expired state token. StatusCode is set when the error came out of an HTTP
// response.
type ProtocolError struct {
	Message    string
	StatusCode int
}

func (e *ProtocolError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	}

	return e.Message
}

// NetworkError means the transport failed or a redirect chain could not be
// followed. URL names the canonical URL of the request that failed.
type NetworkError struct {
	URL        string
	StatusCode int
	Message    string
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request to %s failed with status %d", e.URL, e.StatusCode)
	}

	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	return fmt.Sprintf("request to %s failed: %s", e.URL, msg)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

package indieauth

// Token is the result of redeeming an authorization code at the token
// endpoint.
type Token struct {
	AccessToken string
	TokenType   string
	Scopes      []string
	Me          string
}

// HasScope returns true if the token was granted the scope.
func (t Token) HasScope(scope string) bool {
	for _, candidate := range t.Scopes {
		if candidate == scope {
			return true
		}
	}

	return false
}

package indieauth

import (
	"net/http"
	"net/url"
	"testing"

	"hawx.me/code/assert"
)

func TestParseRels(t *testing.T) {
	base, _ := url.Parse("https://me.example.com/")

	header := http.Header{}
	header.Add("Link", `</auth>; rel="authorization_endpoint"`)

	body := []byte(`
<html>
<head>
<link rel="authorization_endpoint" href="/other-auth" />
<link rel="token_endpoint micropub" href="/multi" />
<link rel="WEBMENTION" href="https://hooks.example.com/mention" />
</head>
</html>
`)

	rels := parseRels(base, body, header)

	// the header link comes first, then the one from the document
	assert.Equal(t, 2, len(rels["authorization_endpoint"]))
	assert.Equal(t, "https://me.example.com/auth", rels["authorization_endpoint"][0])
	assert.Equal(t, "https://me.example.com/other-auth", rels["authorization_endpoint"][1])

	// a space separated rel attribute advertises each name
	assert.Equal(t, "https://me.example.com/multi", rels["token_endpoint"][0])
	assert.Equal(t, "https://me.example.com/multi", rels["micropub"][0])

	// names are case-normalized
	assert.Equal(t, "https://hooks.example.com/mention", rels["webmention"][0])
}

func TestParseRelsWithoutBody(t *testing.T) {
	base, _ := url.Parse("https://me.example.com/")

	header := http.Header{}
	header.Add("Link", `<https://auth.example.com/>; rel="authorization_endpoint"`)

	rels := parseRels(base, nil, header)

	assert.Equal(t, "https://auth.example.com/", rels["authorization_endpoint"][0])
}

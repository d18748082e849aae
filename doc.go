/*
Package indieauth implements the client half of the IndieAuth flows.

A user hands you their profile URL, you discover the endpoints their site
advertises, send them off to authenticate, and finally swap the code they come
back with for their verified profile URL, or for an access token.

Start by creating a Client for your app and telling it who is signing in.

    client, _ := indieauth.New(
      "https://webapp.example.com/",
      "https://webapp.example.com/callback")
    client.Secret = "some long random secret"
    client.SetMe(r.FormValue("me"))

Discovery fetches the profile URL, follows any redirects, and pulls the
authorization_endpoint and token_endpoint relations out of the final
response. It also settles the canonical form of the profile URL: a permanent
redirect moves the identity, a temporary one does not.

    endpoints, err := client.DiscoverEndpoints()

With a Secret set AuthCodeURL derives an encrypted state token for you, bound
to the me and client_id it was generated for and valid for ten minutes.
Otherwise set State yourself before calling it.

    redirectURL, err := client.AuthCodeURL("id")
    http.Redirect(w, r, redirectURL, http.StatusFound)

When the user lands back on your callback, check the state and verify the
code. Verification requires the me the endpoint reports to match the me you
asked to authenticate.

    if !client.CheckState(r.FormValue("state")) {
      http.Error(w, "state does not match", http.StatusBadRequest)
      return
    }

    me, err := client.VerifyCode(r.FormValue("code"))

For authorization instead of authentication, request a code with some scopes,
optionally with a PKCE verifier, then redeem it for a token.

    client.CodeVerifier, _ = indieauth.RandomVerifier()
    redirectURL, err := client.AuthCodeURL("code", "create", "update")

    // ...on the callback:
    token, err := client.RedeemToken(r.FormValue("code"))

The sessions subpackage wraps all of this in cookie-backed handlers for apps
that just want sign-in, callback and sign-out routes.

Further Reading

Spec: https://indieauth.spec.indieweb.org/
*/
package indieauth

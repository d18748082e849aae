package indieauth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"time"

	"golang.org/x/crypto/hkdf"
)

// stateLifetime is how long a generated state token stays valid.
const stateLifetime = 10 * time.Minute

var timeNow = time.Now

// StateToken is the decrypted form of the anti-forgery state parameter. It
// only exists transiently: the encrypted string is its one durable encoding,
// round-tripped through the authorization endpoint by the remote party.
type StateToken struct {
	Date     time.Time
	Me       string
	ClientID string
}

// statePayload uses pointer and json.Number fields so that a token missing a
// field, or carrying one of the wrong type, is told apart from a valid one.
type statePayload struct {
	Date     *json.Number `json:"date"`
	Me       *string      `json:"me"`
	ClientID *string      `json:"clientId"`
}

// stateKey stretches the configured secret into a 32-byte AES-256 key.
func stateKey(secret string) ([]byte, error) {
	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("indieauth state"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, err
	}
	return key, nil
}

func stateCipher(secret string) (cipher.AEAD, error) {
	key, err := stateKey(secret)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	return cipher.NewGCM(block)
}

// GenerateState encrypts the current time, me and clientID under secret,
// producing the value to send as the state parameter. The output is opaque
// and differs between calls for the same inputs.
func GenerateState(me, clientID, secret string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"date":     timeNow().UnixMilli(),
		"me":       me,
		"clientId": clientID,
	})
	if err != nil {
		return "", err
	}

	gcm, err := stateCipher(secret)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(gcm.Seal(nonce, nonce, payload, nil)), nil
}

// ValidateState decrypts token with secret and checks that it is fresh and
// was generated for clientID. When expectedMe is non-empty the token must
// also have been generated for that profile URL. A token encrypted under a
// different secret fails exactly like a corrupted one.
func ValidateState(token, clientID, secret, expectedMe string) (*StateToken, error) {
	invalid := &ProtocolError{Message: "Invalid state"}

	ciphertext, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, invalid
	}

	gcm, err := stateCipher(secret)
	if err != nil {
		return nil, invalid
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, invalid
	}

	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, invalid
	}

	var payload statePayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return nil, invalid
	}
	if payload.Date == nil || payload.Me == nil || payload.ClientID == nil {
		return nil, invalid
	}

	millis, err := payload.Date.Int64()
	if err != nil {
		return nil, invalid
	}

	state := &StateToken{
		Date:     time.UnixMilli(millis),
		Me:       *payload.Me,
		ClientID: *payload.ClientID,
	}

	if timeNow().Sub(state.Date) > stateLifetime {
		return nil, &ProtocolError{Message: "State has expired"}
	}
	if expectedMe != "" && state.Me != expectedMe {
		return nil, &ProtocolError{Message: "State me does not match"}
	}
	if state.ClientID != clientID {
		return nil, &ProtocolError{Message: "State clientId does not match"}
	}

	return state, nil
}

// CheckState reports whether token is a valid state for this client's
// configuration. It funnels through ValidateState, so an invalid, expired or
// mismatched token all collapse to false.
func (c *Client) CheckState(token string) bool {
	_, err := ValidateState(token, c.clientID, c.Secret, c.me)
	return err == nil
}

// Package signature authenticates inbound webhook requests against a shared
// secret. Two signing schemes are in the wild among the game-server addons,
// so the verifier tries each in order and accepts if any matches.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
)

// Scheme computes and checks one signature format over a request body.
type Scheme interface {
	// Name identifies the scheme in logs.
	Name() string
	// Sign computes the signature header value for a body.
	Sign(secret string, body []byte) string
}

// DigestScheme is base64(SHA-256(body || secret)), used by the legacy addon.
type DigestScheme struct{}

func (DigestScheme) Name() string { return "digest-concat" }

func (DigestScheme) Sign(secret string, body []byte) string {
	h := sha256.New()
	h.Write(body)
	h.Write([]byte(secret))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// HMACScheme is hex(HMAC-SHA256(secret, body)), used by current addons.
type HMACScheme struct{}

func (HMACScheme) Name() string { return "hmac-sha256" }

func (HMACScheme) Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verifier checks request signatures against an ordered list of schemes.
type Verifier struct {
	secret  string
	schemes []Scheme
}

// NewVerifier creates a verifier with the default scheme list. An empty
// secret puts the verifier in permissive mode: every request is accepted.
// Permissive mode is unsafe outside local testing.
func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret:  secret,
		schemes: []Scheme{DigestScheme{}, HMACScheme{}},
	}
}

// Permissive reports whether the verifier accepts unsigned requests.
func (v *Verifier) Permissive() bool {
	return v.secret == ""
}

// Verify checks the signature header against the raw request body. A missing
// header with a configured secret is a rejection, not an error; malformed
// headers likewise fail closed.
func (v *Verifier) Verify(body []byte, header string) bool {
	if v.secret == "" {
		return true
	}
	if header == "" {
		return false
	}
	for _, s := range v.schemes {
		expected := s.Sign(v.secret, body)
		if subtle.ConstantTimeCompare([]byte(expected), []byte(header)) == 1 {
			return true
		}
	}
	return false
}

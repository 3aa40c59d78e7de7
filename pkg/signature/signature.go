// Package signature implements HMAC-SHA256 signing and verification for
// webhook payloads.
package signature

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Header carries the hex-encoded payload signature on webhook requests.
const Header = "X-Webhook-Signature"

// EventHeader carries the event name on outbound webhook requests.
const EventHeader = "X-Webhook-Event"

const secretBytes = 32

// Sign returns the hex-encoded HMAC-SHA256 of payload under secret.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)

	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether provided is a valid signature of payload under
// secret. Comparison is constant-time.
func Verify(secret string, payload []byte, provided string) bool {
	expected := Sign(secret, payload)

	return hmac.Equal([]byte(expected), []byte(provided))
}

// NewSecret generates a random hex-encoded shared secret.
func NewSecret() (string, error) {
	buf := make([]byte, secretBytes)

	_, err := rand.Read(buf)
	if err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

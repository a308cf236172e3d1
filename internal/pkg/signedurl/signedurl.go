// Package signedurl signs and verifies time-limited upload URLs.
//
// The signing key is derived per expiry, HMAC-SHA256(secret, expires), and
// the signature is the hex HMAC-SHA256 of "path?expires=..&filename=.." under
// that key.
package signedurl

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"time"
)

// Query builds the form-encoded query that is signed. url.Values sorts by
// key, so expires always precedes filename.
func Query(expires int64, filename string) url.Values {
	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("filename", filename)
	return q
}

func Sign(path string, expires int64, secret, filename string) string {
	keyMAC := hmac.New(sha256.New, []byte(secret))
	keyMAC.Write([]byte(strconv.FormatInt(expires, 10)))
	signingKey := keyMAC.Sum(nil)

	mac := hmac.New(sha256.New, signingKey)
	mac.Write([]byte(path + "?" + Query(expires, filename).Encode()))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature is valid for the inputs and has not expired.
func Verify(signature, path string, expires int64, secret, filename string) bool {
	return VerifyAt(time.Now(), signature, path, expires, secret, filename)
}

// VerifyAt is Verify against an explicit clock. A URL is still valid in the
// second it expires.
func VerifyAt(now time.Time, signature, path string, expires int64, secret, filename string) bool {
	if now.Unix() > expires {
		return false
	}
	expected := Sign(path, expires, secret, filename)
	return hmac.Equal([]byte(expected), []byte(signature))
}

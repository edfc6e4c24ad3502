package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/findrightpeople/worker/internal/config"
)

// Rejection reasons surfaced verbatim in the 401 body.
const (
	ReasonInvalidTimestamp = "invalid timestamp"
	ReasonInvalidSignature = "invalid signature"
)

// VerifySignature checks a signed webhook request. The signature is the
// hex-lowercase HMAC-SHA256 of "{timestamp}." + body keyed by the shared
// secret. Timestamps outside the skew window are rejected so a captured
// request cannot be replayed indefinitely.
//
// Returns ("", true) on success or a rejection reason otherwise. Pure
// function, no side effects.
func VerifySignature(timestamp string, signature string, body []byte, secret string) (string, bool) {
	return verifyAt(timestamp, signature, body, secret, time.Now().Unix())
}

func verifyAt(timestamp string, signature string, body []byte, secret string, now int64) (string, bool) {
	if timestamp == "" {
		return ReasonInvalidTimestamp, false
	}
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ReasonInvalidTimestamp, false
	}
	skew := now - ts
	if skew < 0 {
		skew = -skew
	}
	if skew > config.SignatureSkewSeconds {
		return ReasonInvalidTimestamp, false
	}
	if signature == "" {
		return ReasonInvalidSignature, false
	}

	expected := ComputeSignature(timestamp, body, secret)
	if !hmac.Equal([]byte(strings.ToLower(signature)), []byte(expected)) {
		return ReasonInvalidSignature, false
	}
	return "", true
}

// ComputeSignature produces the hex-lowercase signature for a timestamp and
// raw body. Exported so callers (and tests) can sign outbound requests.
func ComputeSignature(timestamp string, body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/divebase/divebase/webhook/payload"
)

const (
	// SecretPrefix is the human-readable prefix carried by signing secrets.
	// It is display sugar only and is stripped before use as key material.
	SecretPrefix = "whsec_"

	// SignatureVersion is the scheme identifier embedded in the header
	SignatureVersion = "v1"

	// DefaultTolerance is the accepted clock-skew window during verification
	DefaultTolerance = 300 * time.Second
)

/* Sign computes the delivery signature header value for an event payload:
 *
 *   t=<unix seconds>,v1=<hex HMAC-SHA256>
 *
 * The MAC is computed over "<timestamp>.<canonical payload>" keyed by the
 * secret with any recognized prefix stripped. Deterministic: identical
 * (payload, secret, timestamp) always produce an identical signature.
 */
func Sign(raw json.RawMessage, secret string, ts time.Time) (string, error) {
	canonical, err := payload.Canonical(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalizing payload: %w", err)
	}

	timestamp := ts.Unix()
	digest := compute(canonical, secret, timestamp)

	return fmt.Sprintf("t=%d,%s=%s", timestamp, SignatureVersion, digest), nil
}

/* Verify checks a signature produced by Sign. It never returns an error:
 * malformed headers, digest mismatches and timestamps outside the tolerance
 * window (in either direction) all report false.
 *
 * A tolerance of zero falls back to DefaultTolerance.
 */
func Verify(raw json.RawMessage, sig, secret string, tolerance time.Duration) bool {
	if sig == "" {
		return false
	}
	if tolerance == 0 {
		tolerance = DefaultTolerance
	}

	var timestampField, digestField string
	for _, part := range strings.Split(sig, ",") {
		switch {
		case strings.HasPrefix(part, "t="):
			timestampField = strings.TrimPrefix(part, "t=")
		case strings.HasPrefix(part, SignatureVersion+"="):
			digestField = strings.TrimPrefix(part, SignatureVersion+"=")
		}
	}
	if timestampField == "" || digestField == "" {
		return false
	}

	timestamp, err := strconv.ParseInt(timestampField, 10, 64)
	if err != nil {
		return false
	}

	canonical, err := payload.Canonical(raw)
	if err != nil {
		return false
	}

	// Constant-time comparison: the secret is tenant-controlled, so timing
	// side-channels are a real risk
	expected := compute(canonical, secret, timestamp)
	if !hmac.Equal([]byte(expected), []byte(digestField)) {
		return false
	}

	skew := time.Since(time.Unix(timestamp, 0))
	if skew < 0 {
		skew = -skew
	}
	return skew <= tolerance
}

// compute returns the hex HMAC-SHA256 of "<timestamp>.<canonical>" keyed by
// the secret with the display prefix stripped
func compute(canonical []byte, secret string, timestamp int64) string {
	key := strings.TrimPrefix(secret, SecretPrefix)

	mac := hmac.New(sha256.New, []byte(key))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(canonical)

	return hex.EncodeToString(mac.Sum(nil))
}

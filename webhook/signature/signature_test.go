package signature

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign(t *testing.T) {
	payload := json.RawMessage(`{"booking_id":"bk_123","amount":250}`)
	secret := "whsec_test-secret"

	t.Run("success - expected format", func(t *testing.T) {
		ts := time.Unix(1700000000, 0)

		sig, err := Sign(payload, secret, ts)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(sig, "t=1700000000,v1="))
		// hex HMAC-SHA256 digest is 64 characters
		assert.Len(t, strings.TrimPrefix(sig, "t=1700000000,v1="), 64)
	})

	t.Run("deterministic - same inputs, same signature", func(t *testing.T) {
		ts := time.Unix(1700000000, 0)

		sig1, err := Sign(payload, secret, ts)
		require.NoError(t, err)
		sig2, err := Sign(payload, secret, ts)
		require.NoError(t, err)
		assert.Equal(t, sig1, sig2)
	})

	t.Run("differs when any input differs", func(t *testing.T) {
		ts := time.Unix(1700000000, 0)

		base, err := Sign(payload, secret, ts)
		require.NoError(t, err)

		otherPayload, err := Sign(json.RawMessage(`{"booking_id":"bk_456","amount":250}`), secret, ts)
		require.NoError(t, err)
		assert.NotEqual(t, base, otherPayload)

		otherSecret, err := Sign(payload, "whsec_other-secret", ts)
		require.NoError(t, err)
		assert.NotEqual(t, base, otherSecret)

		otherTime, err := Sign(payload, secret, ts.Add(time.Second))
		require.NoError(t, err)
		assert.NotEqual(t, base, otherTime)
	})

	t.Run("key order does not matter", func(t *testing.T) {
		ts := time.Unix(1700000000, 0)

		sig1, err := Sign(json.RawMessage(`{"a":1,"b":2}`), secret, ts)
		require.NoError(t, err)
		sig2, err := Sign(json.RawMessage(`{"b":2,"a":1}`), secret, ts)
		require.NoError(t, err)
		assert.Equal(t, sig1, sig2)
	})

	t.Run("secret prefix is stripped before keying", func(t *testing.T) {
		ts := time.Unix(1700000000, 0)

		withPrefix, err := Sign(payload, "whsec_shared-key", ts)
		require.NoError(t, err)
		withoutPrefix, err := Sign(payload, "shared-key", ts)
		require.NoError(t, err)
		assert.Equal(t, withPrefix, withoutPrefix)
	})

	t.Run("error - invalid payload", func(t *testing.T) {
		_, err := Sign(json.RawMessage(`{not json`), secret, time.Now())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "canonicalizing payload")
	})
}

func TestVerify(t *testing.T) {
	payload := json.RawMessage(`{"booking_id":"bk_123","diver":{"name":"Ada","certs":["OW","AOW"]}}`)
	secret := "whsec_test-secret"

	t.Run("round trip", func(t *testing.T) {
		sig, err := Sign(payload, secret, time.Now())
		require.NoError(t, err)
		assert.True(t, Verify(payload, sig, secret, DefaultTolerance))
	})

	t.Run("round trip - reordered payload keys", func(t *testing.T) {
		sig, err := Sign(payload, secret, time.Now())
		require.NoError(t, err)

		reordered := json.RawMessage(`{"diver":{"certs":["OW","AOW"],"name":"Ada"},"booking_id":"bk_123"}`)
		assert.True(t, Verify(reordered, sig, secret, DefaultTolerance))
	})

	t.Run("tamper detection", func(t *testing.T) {
		sig, err := Sign(payload, secret, time.Now())
		require.NoError(t, err)

		tampered := json.RawMessage(`{"booking_id":"bk_999","diver":{"name":"Ada","certs":["OW","AOW"]}}`)
		assert.False(t, Verify(tampered, sig, secret, DefaultTolerance))
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		sig, err := Sign(payload, secret, time.Now())
		require.NoError(t, err)
		assert.False(t, Verify(payload, sig, "whsec_wrong", DefaultTolerance))
	})

	t.Run("empty signature fails", func(t *testing.T) {
		assert.False(t, Verify(payload, "", secret, DefaultTolerance))
	})

	t.Run("missing timestamp field fails", func(t *testing.T) {
		assert.False(t, Verify(payload, "v1=abcdef", secret, DefaultTolerance))
	})

	t.Run("missing digest field fails", func(t *testing.T) {
		assert.False(t, Verify(payload, "t=1700000000", secret, DefaultTolerance))
	})

	t.Run("garbage signature fails", func(t *testing.T) {
		assert.False(t, Verify(payload, "not-a-signature", secret, DefaultTolerance))
	})

	t.Run("non-numeric timestamp fails", func(t *testing.T) {
		assert.False(t, Verify(payload, "t=yesterday,v1=abcdef", secret, DefaultTolerance))
	})

	t.Run("stale signature outside tolerance fails", func(t *testing.T) {
		sig, err := Sign(payload, secret, time.Now().Add(-10*time.Minute))
		require.NoError(t, err)
		assert.False(t, Verify(payload, sig, secret, 300*time.Second))
	})

	t.Run("future signature outside tolerance fails", func(t *testing.T) {
		sig, err := Sign(payload, secret, time.Now().Add(10*time.Minute))
		require.NoError(t, err)
		assert.False(t, Verify(payload, sig, secret, 300*time.Second))
	})

	t.Run("signature within tolerance passes", func(t *testing.T) {
		sig, err := Sign(payload, secret, time.Now().Add(-2*time.Minute))
		require.NoError(t, err)
		assert.True(t, Verify(payload, sig, secret, 300*time.Second))
	})

	t.Run("zero tolerance falls back to default", func(t *testing.T) {
		sig, err := Sign(payload, secret, time.Now().Add(-2*time.Minute))
		require.NoError(t, err)
		assert.True(t, Verify(payload, sig, secret, 0))
	})

	t.Run("digest from another timestamp fails", func(t *testing.T) {
		sig, err := Sign(payload, secret, time.Now())
		require.NoError(t, err)

		// Splice the valid digest onto a different timestamp
		digest := sig[strings.Index(sig, "v1="):]
		spliced := fmt.Sprintf("t=%d,%s", time.Now().Unix()-30, digest)
		assert.False(t, Verify(payload, spliced, secret, DefaultTolerance))
	})
}

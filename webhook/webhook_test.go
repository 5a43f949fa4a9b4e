package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscribesTo(t *testing.T) {
	t.Run("exact match", func(t *testing.T) {
		w := Webhook{Events: []string{"booking.created", "payment.received"}}

		assert.True(t, w.SubscribesTo("booking.created"))
		assert.True(t, w.SubscribesTo("payment.received"))
		assert.False(t, w.SubscribesTo("booking.cancelled"))
	})

	t.Run("prefix wildcard", func(t *testing.T) {
		w := Webhook{Events: []string{"booking.*"}}

		assert.True(t, w.SubscribesTo("booking.created"))
		assert.True(t, w.SubscribesTo("booking.cancelled"))
		assert.True(t, w.SubscribesTo("booking.payment.captured"))
		assert.False(t, w.SubscribesTo("booking"))
		assert.False(t, w.SubscribesTo("bookings.created"))
		assert.False(t, w.SubscribesTo("payment.received"))
	})

	t.Run("wildcard is a literal segment, not a pattern", func(t *testing.T) {
		w := Webhook{Events: []string{"booking.*"}}

		assert.True(t, w.SubscribesTo("booking.*"))
	})

	t.Run("empty subscription list matches nothing", func(t *testing.T) {
		w := Webhook{}

		assert.False(t, w.SubscribesTo("booking.created"))
	})
}

func TestStatus(t *testing.T) {
	t.Run("string representation", func(t *testing.T) {
		assert.Equal(t, "pending", Pending.String())
		assert.Equal(t, "success", Success.String())
		assert.Equal(t, "failed", Failed.String())
		assert.Equal(t, "unknown", Status(0).String())
	})

	t.Run("round trip from string", func(t *testing.T) {
		for _, s := range []Status{Pending, Success, Failed} {
			assert.Equal(t, s, NewStatus(s.String()))
		}
	})

	t.Run("unknown strings default to pending", func(t *testing.T) {
		assert.Equal(t, Pending, NewStatus("bogus"))
	})

	t.Run("validate", func(t *testing.T) {
		assert.NoError(t, Pending.Validate())
		assert.NoError(t, Failed.Validate())
		assert.Error(t, Status(0).Validate())
		assert.Error(t, Status(99).Validate())
	})

	t.Run("terminal states", func(t *testing.T) {
		assert.False(t, Pending.IsFinal())
		assert.True(t, Success.IsFinal())
		assert.True(t, Failed.IsFinal())
	})
}

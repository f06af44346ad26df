//go:build unit

package dispatch_test

import (
	"testing"
	"time"

	"pasarlink/internal/domain/dispatch"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOffer(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ttl := 2 * time.Minute

	t.Run("new offer is pending with a deadline", func(t *testing.T) {
		o := dispatch.NewOffer(uuid.New(), uuid.New(), now, ttl)
		assert.Equal(t, dispatch.OfferPending, o.Status())
		assert.Equal(t, now.Add(ttl), o.ExpiresAt())
		assert.False(t, o.IsResolved())
	})

	t.Run("due exactly at the deadline, not before", func(t *testing.T) {
		o := dispatch.NewOffer(uuid.New(), uuid.New(), now, ttl)
		assert.False(t, o.IsDue(now))
		assert.False(t, o.IsDue(now.Add(ttl-time.Second)))
		assert.True(t, o.IsDue(now.Add(ttl)))
		assert.True(t, o.IsDue(now.Add(ttl+time.Hour)))
	})

	t.Run("resolved offers are never due", func(t *testing.T) {
		o := dispatch.ReconstructOffer(
			uuid.New(), uuid.New(), uuid.New(),
			dispatch.OfferAccepted, now, now.Add(ttl),
		)
		assert.False(t, o.IsDue(now.Add(time.Hour)))
		assert.True(t, o.IsResolved())
	})
}

func TestParseOfferStatus(t *testing.T) {
	for _, raw := range []string{"pending", "accepted", "expired", "cancelled"} {
		s, err := dispatch.ParseOfferStatus(raw)
		assert.NoError(t, err)
		assert.Equal(t, raw, s.String())
	}
	_, err := dispatch.ParseOfferStatus("declined")
	assert.ErrorIs(t, err, dispatch.ErrUnknownOfferStatus)
}

package chat

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kamandenj/linkup_social/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageState(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("non-private never expires", func(t *testing.T) {
		m := &models.Message{Private: false}
		assert.Equal(t, StateActive, MessageState(m, now))
		assert.Equal(t, StateActive, MessageState(m, now.Add(1000*time.Hour)))
	})

	t.Run("private before expiry is active", func(t *testing.T) {
		expires := now.Add(time.Minute)
		m := &models.Message{Private: true, ExpiresAt: &expires}
		assert.Equal(t, StateActive, MessageState(m, now))
	})

	t.Run("private at expiry instant is expired", func(t *testing.T) {
		expires := now
		m := &models.Message{Private: true, ExpiresAt: &expires}
		assert.Equal(t, StateExpired, MessageState(m, now))
	})

	t.Run("private after expiry is expired", func(t *testing.T) {
		expires := now.Add(-time.Second)
		m := &models.Message{Private: true, ExpiresAt: &expires}
		assert.Equal(t, StateExpired, MessageState(m, now))
	})
}

func TestExpiryFor(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("non-private gets no expiry", func(t *testing.T) {
		assert.Nil(t, ExpiryFor(false, 0, now))
		assert.Nil(t, ExpiryFor(false, 90, now))
	})

	t.Run("private defaults to 24 hours", func(t *testing.T) {
		expires := ExpiryFor(true, 0, now)
		require.NotNil(t, expires)
		assert.Equal(t, now.Add(24*time.Hour), *expires)
	})

	t.Run("private with custom TTL in minutes", func(t *testing.T) {
		expires := ExpiryFor(true, 15, now)
		require.NotNil(t, expires)
		assert.Equal(t, now.Add(15*time.Minute), *expires)
	})
}

func TestVisible(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	idA, idB, idC := uuid.New(), uuid.New(), uuid.New()
	msgs := []models.Message{
		{ID: idA, Content: "first"},
		{ID: idB, Content: "gone", Private: true, ExpiresAt: &past},
		{ID: idC, Content: "still here", Private: true, ExpiresAt: &future},
	}

	visible := Visible(msgs, now)
	require.Len(t, visible, 2)
	assert.Equal(t, idA, visible[0].ID)
	assert.Equal(t, idC, visible[1].ID)
}

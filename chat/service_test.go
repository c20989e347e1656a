package chat

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kamandenj/linkup_social/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	svc   *Service
	store *memStore
	now   time.Time
	alice uuid.UUID
	bob   uuid.UUID
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		store: newMemStore(),
		now:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.alice = f.store.addUser("alice")
	f.bob = f.store.addUser("bob")
	f.svc = NewService(f.store)
	f.svc.now = func() time.Time { return f.now }
	f.svc.detect = func([]byte) (string, error) { return "image/png", nil }
	return f
}

func (f *serviceFixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *serviceFixture) startChat(t *testing.T) {
	t.Helper()
	_, err := f.svc.Start(context.Background(), f.alice, f.bob)
	require.NoError(t, err)
}

func TestStartChat(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	t.Run("creates the chat for a new pair", func(t *testing.T) {
		created, err := f.svc.Start(ctx, f.alice, f.bob)
		require.NoError(t, err)
		assert.Len(t, created.Participants, 2)
	})

	t.Run("second start conflicts, either argument order", func(t *testing.T) {
		_, err := f.svc.Start(ctx, f.alice, f.bob)
		assert.True(t, apperrors.Is(err, apperrors.CodeAlreadyExists))

		_, err = f.svc.Start(ctx, f.bob, f.alice)
		assert.True(t, apperrors.Is(err, apperrors.CodeAlreadyExists))
	})

	t.Run("pair lookup is symmetric", func(t *testing.T) {
		ab, err := f.store.FindByPair(ctx, f.alice, f.bob)
		require.NoError(t, err)
		ba, err := f.store.FindByPair(ctx, f.bob, f.alice)
		require.NoError(t, err)
		assert.Equal(t, ab.ID, ba.ID)
	})

	t.Run("rejects a degenerate pair", func(t *testing.T) {
		_, err := f.svc.Start(ctx, f.alice, f.alice)
		assert.True(t, apperrors.Is(err, apperrors.CodeInvalidArgument))
	})
}

func TestSendMessage(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.startChat(t)

	t.Run("requires content or file", func(t *testing.T) {
		_, err := f.svc.Send(ctx, f.alice, f.bob, f.alice, "   ", nil, false, 0)
		assert.True(t, apperrors.Is(err, apperrors.CodeInvalidArgument))
	})

	t.Run("non-private message never expires", func(t *testing.T) {
		msg, err := f.svc.Send(ctx, f.alice, f.bob, f.alice, "hello", nil, false, 0)
		require.NoError(t, err)
		assert.Nil(t, msg.ExpiresAt)
	})

	t.Run("private message defaults to a 24 hour window", func(t *testing.T) {
		msg, err := f.svc.Send(ctx, f.alice, f.bob, f.alice, "secret", nil, true, 0)
		require.NoError(t, err)
		require.NotNil(t, msg.ExpiresAt)
		assert.Equal(t, f.now.Add(24*time.Hour), *msg.ExpiresAt)
	})

	t.Run("private message honors a custom TTL in minutes", func(t *testing.T) {
		msg, err := f.svc.Send(ctx, f.alice, f.bob, f.alice, "secret", nil, true, 5)
		require.NoError(t, err)
		require.NotNil(t, msg.ExpiresAt)
		assert.Equal(t, f.now.Add(5*time.Minute), *msg.ExpiresAt)
	})

	t.Run("file attachments get a sniffed type", func(t *testing.T) {
		msg, err := f.svc.Send(ctx, f.alice, f.bob, f.alice, "", []byte{0x89, 0x50}, false, 0)
		require.NoError(t, err)
		assert.Equal(t, "image/png", msg.FileType)
	})

	t.Run("unknown attachment types are rejected", func(t *testing.T) {
		f.svc.detect = func([]byte) (string, error) {
			return "", apperrors.UnknownType("unable to determine the file type")
		}
		defer func() {
			f.svc.detect = func([]byte) (string, error) { return "image/png", nil }
		}()
		_, err := f.svc.Send(ctx, f.alice, f.bob, f.alice, "", []byte{0xde, 0xad}, false, 0)
		assert.True(t, apperrors.Is(err, apperrors.CodeUnknownType))
	})

	t.Run("sender must be a participant", func(t *testing.T) {
		stranger := f.store.addUser("mallory")
		_, err := f.svc.Send(ctx, f.alice, f.bob, stranger, "hi", nil, false, 0)
		assert.True(t, apperrors.Is(err, apperrors.CodePermissionDenied))
	})

	t.Run("sending into a missing chat fails", func(t *testing.T) {
		carol := f.store.addUser("carol")
		_, err := f.svc.Send(ctx, f.alice, carol, f.alice, "hi", nil, false, 0)
		assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	})
}

// An expired message disappears from every read path even though the
// sweeper has not run and the store still physically holds it.
func TestReadTimeFiltering(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.startChat(t)

	_, err := f.svc.Send(ctx, f.alice, f.bob, f.alice, "keep me", nil, false, 0)
	require.NoError(t, err)
	ephemeral, err := f.svc.Send(ctx, f.alice, f.bob, f.alice, "vanishing act", nil, true, 1)
	require.NoError(t, err)

	f.advance(61 * time.Second)

	chat, err := f.store.FindByPair(ctx, f.alice, f.bob)
	require.NoError(t, err)
	require.Equal(t, 2, f.store.messageCount(chat.ID), "sweeper has not run; both rows must still be stored")

	t.Run("load", func(t *testing.T) {
		_, msgs, err := f.svc.Load(ctx, f.alice, f.bob)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, "keep me", msgs[0].Content)
	})

	t.Run("list", func(t *testing.T) {
		msgs, err := f.svc.ListAll(ctx, f.bob, f.alice)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, "keep me", msgs[0].Content)
	})

	t.Run("most recent", func(t *testing.T) {
		msg, err := f.svc.MostRecent(ctx, f.alice, f.bob)
		require.NoError(t, err)
		assert.Equal(t, "keep me", msg.Content)
	})

	t.Run("search", func(t *testing.T) {
		results, err := f.svc.Search(ctx, f.alice, f.bob, "vanishing")
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("render", func(t *testing.T) {
		html, err := f.svc.RenderHTML(ctx, f.alice, f.bob, f.alice)
		require.NoError(t, err)
		assert.Contains(t, html, "keep me")
		assert.NotContains(t, html, "vanishing act")
	})

	t.Run("expired message reads as absent for delete and edit", func(t *testing.T) {
		err := f.svc.DeleteMessage(ctx, f.alice, f.bob, ephemeral.ID)
		assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

		content := "too late"
		_, err = f.svc.EditMessage(ctx, f.alice, f.bob, ephemeral.ID, &content, nil)
		assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	})
}

func TestDeleteMessage(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.startChat(t)

	msg, err := f.svc.Send(ctx, f.alice, f.bob, f.alice, "delete me", nil, false, 0)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteMessage(ctx, f.bob, f.alice, msg.ID))
	msgs, err := f.svc.ListAll(ctx, f.alice, f.bob)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	err = f.svc.DeleteMessage(ctx, f.alice, f.bob, uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestEditMessage(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.startChat(t)

	msg, err := f.svc.Send(ctx, f.alice, f.bob, f.alice, "first draft", nil, false, 0)
	require.NoError(t, err)

	t.Run("content replace", func(t *testing.T) {
		content := "  final copy  "
		edited, err := f.svc.EditMessage(ctx, f.alice, f.bob, msg.ID, &content, nil)
		require.NoError(t, err)
		assert.Equal(t, "final copy", edited.Content)
	})

	t.Run("file replace re-sniffs the type", func(t *testing.T) {
		f.svc.detect = func([]byte) (string, error) { return "image/gif", nil }
		edited, err := f.svc.EditMessage(ctx, f.alice, f.bob, msg.ID, nil, []byte{0x47, 0x49})
		require.NoError(t, err)
		assert.Equal(t, "image/gif", edited.FileType)
		assert.Equal(t, "final copy", edited.Content)
	})
}

func TestMarkSeen(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.startChat(t)

	_, err := f.svc.Send(ctx, f.alice, f.bob, f.alice, "one", nil, false, 0)
	require.NoError(t, err)
	_, err = f.svc.Send(ctx, f.alice, f.bob, f.alice, "two", nil, false, 0)
	require.NoError(t, err)
	_, err = f.svc.Send(ctx, f.alice, f.bob, f.bob, "mine", nil, false, 0)
	require.NoError(t, err)

	seen, err := f.svc.MarkSeen(ctx, f.alice, f.bob, f.bob)
	require.NoError(t, err)
	assert.Equal(t, 2, seen, "only the counterparty's messages are flagged")

	seen, err = f.svc.MarkSeen(ctx, f.alice, f.bob, f.bob)
	require.NoError(t, err)
	assert.Equal(t, 0, seen, "marking again is a no-op")
}

func TestClearAll(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.startChat(t)

	for _, text := range []string{"a", "b", "c"} {
		_, err := f.svc.Send(ctx, f.alice, f.bob, f.alice, text, nil, false, 0)
		require.NoError(t, err)
	}

	require.NoError(t, f.svc.ClearAll(ctx, f.alice, f.bob))

	chat, err := f.store.FindByPair(ctx, f.alice, f.bob)
	require.NoError(t, err)
	assert.Zero(t, f.store.messageCount(chat.ID))
	assert.True(t, f.store.chatExists(chat.ID), "clearing keeps the chat itself")
}

func TestScheduleWipe(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.startChat(t)

	at := f.now.Add(time.Hour)
	require.NoError(t, f.svc.ScheduleWipe(ctx, f.alice, f.bob, at))

	chat, err := f.store.FindByPair(ctx, f.alice, f.bob)
	require.NoError(t, err)
	require.NotNil(t, chat.WipeAt)
	assert.Equal(t, at, *chat.WipeAt)
}

func TestSearchService(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.startChat(t)

	_, err := f.svc.Send(ctx, f.alice, f.bob, f.alice, "photo attached", []byte{0x1, 0x2}, false, 0)
	require.NoError(t, err)

	t.Run("empty query is invalid", func(t *testing.T) {
		_, err := f.svc.Search(ctx, f.alice, f.bob, "  ")
		assert.True(t, apperrors.Is(err, apperrors.CodeInvalidArgument))
	})

	t.Run("results carry no file bytes", func(t *testing.T) {
		results, err := f.svc.Search(ctx, f.alice, f.bob, "photo")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Nil(t, results[0].File)
		assert.Equal(t, "image/png", results[0].FileType)
	})
}

// A chat whose last participant leaves is deleted outright; a chat with a
// remaining participant survives the other's departure.
func TestPruneUser(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.startChat(t)

	chat, err := f.store.FindByPair(ctx, f.alice, f.bob)
	require.NoError(t, err)

	require.NoError(t, f.svc.PruneUser(ctx, f.alice))
	assert.True(t, f.store.chatExists(chat.ID), "bob still holds the chat")

	require.NoError(t, f.svc.PruneUser(ctx, f.bob))
	assert.False(t, f.store.chatExists(chat.ID), "no participants left, chat goes too")
}

package chat

import (
	"testing"

	"github.com/kamandenj/linkup_social/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchMessages(t *testing.T) {
	msgs := []models.Message{
		{Content: "hello world"},
		{Content: "hello there friend"},
		{Content: "world"},
		{Content: "", File: []byte{0x1}, FileType: "image/png"},
	}

	t.Run("ranked by distinct matched terms, send order on ties", func(t *testing.T) {
		results := searchMessages(msgs, "hello world")
		require.Len(t, results, 3)
		assert.Equal(t, "hello world", results[0].Content)
		assert.Equal(t, "hello there friend", results[1].Content)
		assert.Equal(t, "world", results[2].Content)
	})

	t.Run("file-only messages never match", func(t *testing.T) {
		results := searchMessages(msgs, "hello")
		require.Len(t, results, 2)
		for _, m := range results {
			assert.Empty(t, m.File)
		}
	})

	t.Run("whole-word only, case-sensitive", func(t *testing.T) {
		assert.Empty(t, searchMessages(msgs, "wor"))
		assert.Empty(t, searchMessages(msgs, "Hello"))
		assert.Empty(t, searchMessages([]models.Message{{Content: "worlds apart"}}, "world"))
	})

	t.Run("occurrence count does not inflate rank", func(t *testing.T) {
		repeats := []models.Message{
			{Content: "echo echo echo"},
			{Content: "echo chamber"},
		}
		results := searchMessages(repeats, "echo chamber")
		require.Len(t, results, 2)
		// Two distinct terms beat one term repeated three times.
		assert.Equal(t, "echo chamber", results[0].Content)
	})

	t.Run("blank query matches nothing", func(t *testing.T) {
		assert.Empty(t, searchMessages(msgs, "   "))
	})
}

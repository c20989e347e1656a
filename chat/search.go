package chat

import (
	"sort"
	"strings"

	"github.com/kamandenj/linkup_social/models"
)

// searchMessages does exact whole-word matching: a message matches when any
// query token equals any token of its content. Results rank by how many
// distinct query tokens matched, send order breaking ties. File-only
// messages never match.
func searchMessages(msgs []models.Message, query string) []models.Message {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return nil
	}

	type scored struct {
		msg   models.Message
		count int
	}
	var matches []scored
	for _, m := range msgs {
		if m.Content == "" {
			continue
		}
		words := strings.Fields(m.Content)
		count := 0
		for _, term := range terms {
			for _, w := range words {
				if w == term {
					count++
					break
				}
			}
		}
		if count > 0 {
			matches = append(matches, scored{msg: m, count: count})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].count > matches[j].count
	})

	out := make([]models.Message, len(matches))
	for i, s := range matches {
		out[i] = s.msg
	}
	return out
}

package chat

import (
	"bytes"
	"context"
	"encoding/base64"
	"html/template"
	"strings"

	"github.com/google/uuid"
	"github.com/kamandenj/linkup_social/apperrors"
)

const transcriptTemplate = `<style>
  .chat-container { display: flex; flex-direction: column; padding: 10px; max-width: 500px; font-family: Arial, sans-serif; }
  .message { margin: 5px 0; padding: 10px; border-radius: 10px; max-width: 70%; }
  .message.left { background-color: #f1f1f1; align-self: flex-start; }
  .message.right { background-color: #007bff; color: white; align-self: flex-end; }
  .message-header { display: flex; justify-content: space-between; }
  .username { font-weight: bold; }
  .timestamp { font-size: 0.7em; color: #000; }
  .file { margin-top: 5px; border: 1px solid #ccc; border-radius: 5px; overflow: hidden; }
  .file img, .file video, .file audio { max-width: 100%; border-radius: 5px; }
</style>
<div class="chat-container">
{{- range .Messages }}
  <div class="message {{ .Alignment }}">
    <div class="message-header">
      <span class="username">{{ .Username }}</span>
      <span class="timestamp">{{ .SentAt }}</span>
    </div>
    <div class="message-content">{{ .Content }}</div>
    {{- if .FileSrc }}
    <div class="file">
      {{- if .IsImage }}
      <img src="{{ .FileSrc }}" alt="Image message"/>
      {{- else if .IsVideo }}
      <video controls><source src="{{ .FileSrc }}" type="{{ .FileType }}"></video>
      {{- else if .IsAudio }}
      <audio controls><source src="{{ .FileSrc }}" type="{{ .FileType }}"></audio>
      {{- end }}
    </div>
    {{- end }}
  </div>
{{- end }}
</div>
`

var transcriptTmpl = template.Must(template.New("transcript").Parse(transcriptTemplate))

type transcriptMessage struct {
	Username  string
	SentAt    string
	Content   string
	Alignment string
	FileType  string
	// FileSrc is a data: URI; html/template would reject the scheme in a
	// plain string attribute.
	FileSrc   template.URL
	IsImage   bool
	IsVideo   bool
	IsAudio   bool
}

// RenderHTML builds a transcript of the chat's visible messages, aligned
// from the viewer's perspective.
func (s *Service) RenderHTML(ctx context.Context, a, b, viewer uuid.UUID) (string, error) {
	chat, msgs, err := s.Load(ctx, a, b)
	if err != nil {
		return "", err
	}

	names := make(map[uuid.UUID]string, len(chat.Participants))
	for _, p := range chat.Participants {
		names[p.ID] = p.Username
	}

	entries := make([]transcriptMessage, 0, len(msgs))
	for _, m := range msgs {
		username, ok := names[m.SenderID]
		if !ok {
			username = "Unknown User"
		}
		entry := transcriptMessage{
			Username: username,
			SentAt:   m.CreatedAt.Format("3:04:05 PM"),
			Content:  m.Content,
		}
		if m.SenderID == viewer {
			entry.Alignment = "right"
		} else {
			entry.Alignment = "left"
		}
		if len(m.File) > 0 {
			entry.FileType = m.FileType
			entry.FileSrc = template.URL("data:" + m.FileType + ";base64," + base64.StdEncoding.EncodeToString(m.File))
			entry.IsImage = strings.HasPrefix(m.FileType, "image/")
			entry.IsVideo = strings.HasPrefix(m.FileType, "video/")
			entry.IsAudio = strings.HasPrefix(m.FileType, "audio/")
		}
		entries = append(entries, entry)
	}

	var buf bytes.Buffer
	data := struct{ Messages []transcriptMessage }{Messages: entries}
	if err := transcriptTmpl.Execute(&buf, data); err != nil {
		return "", apperrors.Internal("failed to render chat transcript", err)
	}
	return buf.String(), nil
}

// Package memory maintains the bounded two-tier conversation history per
// user: a recent message window plus a compressed summary of everything
// older.
package memory

import (
	"strings"
	"time"

	"github.com/ritmolabs/ritmo/internal/schema"
)

// Window is the number of recent messages kept verbatim; CompressAt is the
// buffer length that triggers compression. CompressAt > Window always.
const (
	Window     = 20
	CompressAt = 35
)

// Buffer is one user's conversation history. It is not internally locked;
// the Manager serializes all access.
type Buffer struct {
	messages   []schema.ChatMessage
	summary    string
	lastActive time.Time

	// gen increments on every mutation, so a compression computed from a
	// stale snapshot can detect the change and retry later.
	gen uint64
}

func (b *Buffer) add(role, content string, now time.Time) {
	b.messages = append(b.messages, schema.ChatMessage{Role: role, Content: content, At: now})
	b.lastActive = now
	b.gen++
}

// recent returns the last Window messages (or fewer).
func (b *Buffer) recent() []schema.ChatMessage {
	n := len(b.messages)
	if n > Window {
		n = Window
	}
	out := make([]schema.ChatMessage, n)
	copy(out, b.messages[len(b.messages)-n:])
	return out
}

// evictable returns the messages that compression would fold into the
// summary: everything except the last Window entries. Empty when the
// buffer has not reached the trigger size.
func (b *Buffer) evictable() []schema.ChatMessage {
	if len(b.messages) <= CompressAt {
		return nil
	}
	evict := make([]schema.ChatMessage, len(b.messages)-Window)
	copy(evict, b.messages[:len(b.messages)-Window])
	return evict
}

// applyCompression replaces the evicted prefix with the synopsis. The
// summary always covers exactly the evicted messages: an existing summary
// was part of the text summarized, so the new one subsumes it.
func (b *Buffer) applyCompression(summary string) {
	b.messages = append([]schema.ChatMessage(nil), b.messages[len(b.messages)-Window:]...)
	b.summary = summary
	b.gen++
}

func (b *Buffer) reset() {
	b.messages = nil
	b.summary = ""
	b.gen++
}

// renderForSummary formats the prior summary plus the evicted messages as
// the text handed to the summarizer.
func renderForSummary(prior string, evicted []schema.ChatMessage) string {
	var sb strings.Builder
	if prior != "" {
		sb.WriteString("Previous summary: ")
		sb.WriteString(prior)
		sb.WriteString("\n\n")
	}
	for _, m := range evicted {
		sb.WriteString(m.Role)
		sb.WriteString(": ")
		sb.WriteString(m.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}

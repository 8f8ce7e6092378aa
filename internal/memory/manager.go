package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ritmolabs/ritmo/internal/schema"
)

// Manager owns every user's conversation buffer. Buffers are created on
// first access and dropped by the idle-TTL sweep; the map never grows
// without bound in a long-running process.
type Manager struct {
	mu      sync.Mutex
	buffers map[string]*Buffer
	now     func() time.Time // injectable for tests
}

func NewManager() *Manager {
	return &Manager{
		buffers: make(map[string]*Buffer),
		now:     time.Now,
	}
}

// Add appends one message to the user's buffer.
func (m *Manager) Add(userID, role, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getLocked(userID).add(role, content, m.now())
}

// Recent returns the user's last Window messages for prompt inclusion.
func (m *Manager) Recent(userID string) []schema.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getLocked(userID).recent()
}

// ContextBlock returns the stored synopsis formatted for prompt injection,
// or "" when none exists.
func (m *Manager) ContextBlock(userID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.getLocked(userID)
	if b.summary == "" {
		return ""
	}
	return "Summary of the earlier conversation: " + b.summary
}

// Reset clears one user's buffer (explicit session reset).
func (m *Manager) Reset(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getLocked(userID).reset()
}

// MaybeCompress folds the old prefix of the buffer into a synopsis when the
// buffer exceeds the trigger size. The summarizer call runs outside the
// lock; if the buffer changed meanwhile the result is discarded and
// compression retries at the next trigger. A summarizer failure leaves the
// buffer untouched.
func (m *Manager) MaybeCompress(ctx context.Context, userID string, s schema.Summarizer) {
	m.mu.Lock()
	b := m.getLocked(userID)
	evicted := b.evictable()
	if len(evicted) == 0 {
		m.mu.Unlock()
		return
	}
	gen := b.gen
	text := renderForSummary(b.summary, evicted)
	m.mu.Unlock()

	summary, err := s.Summarize(ctx, text)
	if err != nil {
		slog.Warn("memory: summarization failed, compression deferred", "user", userID, "err", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if b.gen != gen {
		slog.Debug("memory: buffer changed during summarization, skipping", "user", userID)
		return
	}
	b.applyCompression(summary)
	slog.Info("memory: compressed buffer", "user", userID, "evicted", len(evicted), "kept", len(b.messages))
}

// EvictIdle drops buffers idle longer than ttl and returns how many were
// removed. The scheduler runs this as a periodic sweep.
func (m *Manager) EvictIdle(ttl time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-ttl)
	removed := 0
	for id, b := range m.buffers {
		if b.lastActive.Before(cutoff) {
			delete(m.buffers, id)
			removed++
		}
	}
	if removed > 0 {
		slog.Info("memory: evicted idle buffers", "count", removed)
	}
	return removed
}

// Len returns the number of live buffers.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buffers)
}

// BufferSize returns the message count of one user's buffer.
func (m *Manager) BufferSize(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.buffers[userID]; ok {
		return len(b.messages)
	}
	return 0
}

func (m *Manager) getLocked(userID string) *Buffer {
	b, ok := m.buffers[userID]
	if !ok {
		b = &Buffer{lastActive: m.now()}
		m.buffers[userID] = b
	}
	return b
}

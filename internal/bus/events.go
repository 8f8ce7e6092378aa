// Package bus defines the message types that flow between channels and the
// companion core.
package bus

import "time"

// InboundMessage is a message received from a chat channel.
type InboundMessage struct {
	Channel   string         // "telegram", "websignals", "cli"
	SenderID  string         // user identifier within the channel
	ChatID    string         // chat / DM identifier
	Content   string         // message text
	Timestamp time.Time      // when the message was received
	Metadata  map[string]any // channel-specific extra data (message_id, username, ...)
}

// SessionKey returns the key used to look up the user's conversation buffer.
// Format: "channel:chat_id".
func (m InboundMessage) SessionKey() string {
	return m.Channel + ":" + m.ChatID
}

// ContentPreview returns a short snippet of the message content for logging.
func (m InboundMessage) ContentPreview() string {
	preview := m.Content
	if len(preview) > 80 {
		preview = preview[:80] + "..."
	}
	return preview
}

// OutboundMessage is a response or proactive prompt to be sent through a channel.
type OutboundMessage struct {
	Channel  string         // destination channel name
	ChatID   string         // destination chat / DM identifier
	Content  string         // text to send
	ReplyTo  string         // original message ID to quote/reply to (optional)
	Metadata map[string]any // channel-specific hints (parse_mode, ...)
}

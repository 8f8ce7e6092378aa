package schema

import "time"

// ChatMessage is one entry in a user's conversation buffer.
// Role is "user" or "assistant".
type ChatMessage struct {
	Role    string
	Content string
	At      time.Time
}

// Exchange is one stored user/system turn pair from the history provider.
type Exchange struct {
	UserText   string
	SystemText string
	Timestamp  time.Time
}

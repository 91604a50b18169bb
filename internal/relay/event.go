package relay

import (
	"fmt"
	"time"
)

// Event is a key-lifecycle notification to relay to the chat channel.
type Event interface {
	// Message renders the single human-readable line sent to the sink.
	Message() string
}

// KeyRegistered announces a fresh verification key issued by a game server.
type KeyRegistered struct {
	SteamID  string
	Key      string
	Nickname string
	Server   string
	Action   string
}

func (e KeyRegistered) Message() string {
	msg := fmt.Sprintf("[GMod Key] %s | %s | %s", e.Nickname, e.SteamID, e.Key)
	if e.Action != "" {
		msg += " | " + e.Action
	}
	if e.Server != "" {
		msg = fmt.Sprintf("[%s] %s", e.Server, msg)
	}
	return msg
}

// KeyReset announces that a player's verification was reset.
type KeyReset struct {
	SteamID   string
	ResetBy   string
	Timestamp time.Time
}

func (e KeyReset) Message() string {
	return fmt.Sprintf("[Verify Reset] %s | by %s | %s",
		e.SteamID, e.ResetBy, e.Timestamp.UTC().Format(time.RFC3339))
}

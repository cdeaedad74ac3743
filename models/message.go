package models

import "time"

// Message is an incoming text message from a player.
type Message struct {
	UpdateID int   `json:"update_id"`
	ChatID   int64 `json:"chat_id"`
	UserID   int64 `json:"user_id"`
	// Command is the bot command without the slash or bot name, empty for plain text.
	Command string `json:"command,omitempty"`
	Text    string `json:"text"`
}

// Reply is a message the bot sends back.
type Reply struct {
	ChatID   int64  `json:"chat_id"`
	Text     string `json:"text"`
	Markdown bool   `json:"markdown,omitempty"`
	// Keyboard attaches the main reply keyboard.
	Keyboard bool `json:"keyboard,omitempty"`
}

const (
	GameStarted = "game_started"
	GameWon     = "game_won"
)

// Event describes a game lifecycle change published to the event stream.
type Event struct {
	Type      string    `json:"type"`
	UserID    int64     `json:"user_id"`
	Attempts  int       `json:"attempts,omitempty"`
	NewRecord bool      `json:"new_record,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

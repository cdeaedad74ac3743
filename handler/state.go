package handler

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// sendState tracks delivery of the replies to a single update.
type sendState struct {
	pending  []tgbotapi.Chattable
	retries  int
	rejected int
}

func newSendState(replies []tgbotapi.Chattable) *sendState {
	return &sendState{pending: replies}
}

func (ss *sendState) done() bool {
	return len(ss.pending) == 0
}

// delivered drops the first n pending replies.
func (ss *sendState) delivered(n int) {
	if n == 0 {
		return
	}
	ss.pending = ss.pending[n:]
	ss.retries = 0
}

// reject drops the reply Telegram refused so the rest can still go out.
func (ss *sendState) reject() {
	ss.pending = ss.pending[1:]
	ss.rejected++
}

func (ss *sendState) shouldRetry(allowedRetries int) bool {
	ss.retries++
	return ss.retries <= allowedRetries
}

package handler

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// laneBus routes updates to lanes by player so each player's updates are
// handled one at a time and in order.
type laneBus []chan tgbotapi.Update

func newLaneBus(lanes, bufferSize int) laneBus {
	bus := make(laneBus, lanes)
	for i := range bus {
		bus[i] = make(chan tgbotapi.Update, bufferSize)
	}
	return bus
}

func (lb laneBus) lane(update tgbotapi.Update) int {
	return int(uint64(senderID(update)) % uint64(len(lb)))
}

func (lb laneBus) Send(update tgbotapi.Update) {
	lb[lb.lane(update)] <- update
}

func (lb laneBus) Close() {
	for _, ch := range lb {
		close(ch)
	}
}

func senderID(update tgbotapi.Update) int64 {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID
	case update.EditedMessage != nil && update.EditedMessage.From != nil:
		return update.EditedMessage.From.ID
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		return update.CallbackQuery.From.ID
	}
	return 0
}

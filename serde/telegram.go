package serde

import (
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aryehlev/codemaster/models"
)

const (
	NewGameButton = "🎮 Новая игра"
	RecordButton  = "🏆 Рекорд"
)

// ErrUnsupported is returned for updates the bot does not react to, such as
// edited messages, stickers or channel posts.
var ErrUnsupported = errors.New("unsupported update")

// UpdateDecoder extracts the text message of a Telegram update.
type UpdateDecoder struct {
	// BotName is the bot's own username. Commands addressed to another bot
	// with /command@name are unsupported. Empty accepts any address.
	BotName string
}

func (d UpdateDecoder) Decode(update tgbotapi.Update) (models.Message, error) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil || msg.Text == "" {
		return models.Message{}, ErrUnsupported
	}
	if _, addressee, ok := strings.Cut(msg.CommandWithAt(), "@"); ok && d.BotName != "" &&
		!strings.EqualFold(addressee, d.BotName) {
		return models.Message{}, ErrUnsupported
	}

	return models.Message{
		UpdateID: update.UpdateID,
		ChatID:   msg.Chat.ID,
		UserID:   msg.From.ID,
		Command:  msg.Command(),
		Text:     strings.TrimSpace(msg.Text),
	}, nil
}

// ReplyEncoder turns replies into sendMessage requests.
type ReplyEncoder struct{}

func (ReplyEncoder) Encode(replies []models.Reply) ([]tgbotapi.Chattable, error) {
	out := make([]tgbotapi.Chattable, 0, len(replies))
	for _, reply := range replies {
		if reply.Text == "" {
			return nil, errors.New("empty reply text")
		}
		msg := tgbotapi.NewMessage(reply.ChatID, reply.Text)
		if reply.Markdown {
			msg.ParseMode = tgbotapi.ModeMarkdown
		}
		if reply.Keyboard {
			msg.ReplyMarkup = MainKeyboard()
		}
		out = append(out, msg)
	}
	return out, nil
}

func MainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(NewGameButton),
			tgbotapi.NewKeyboardButton(RecordButton),
		),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}

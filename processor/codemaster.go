package processor

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aryehlev/codemaster/game"
	"github.com/aryehlev/codemaster/models"
	"github.com/aryehlev/codemaster/records"
	"github.com/aryehlev/codemaster/serde"
	"github.com/aryehlev/codemaster/sessions"
)

const (
	introText = "🤖 *Код‑Мастер 4*\n\n" +
		"Я загадываю *секретный 4‑значный код*. Ваша цель — угадать все цифры и их позиции. " +
		"После каждой попытки я показываю шаблон (пример: `4*2*`). " +
		"Звёздочки `*` — ещё не раскрытые позиции.\n\n" +
		"Нажмите *«🎮 Новая игра»* или отправьте код из 4 цифр."
	helpText = "Команды:\n" +
		"/newgame — начать новую игру\n" +
		"/record — показать ваш рекорд"
	newGameText   = "🎲 Я загадал новый 4‑значный код. Удачи!"
	noRecordText  = "Вы ещё не установили рекорд. Сыграйте пару партий!"
	recordFormat  = "Ваш лучший результат — *%d* попыток."
	invalidFormat = "Введите ровно %d цифры, без пробелов и букв."
	patternFormat = "Результат: `%s`"
	wonFormat     = "🎉 Поздравляю! Код *%s* угадан за *%d* попыток."
	newRecordText = "\n🏆 Это новый рекорд!"
	playAgainText = "\nНажмите «🎮 Новая игра», чтобы сыграть снова."
)

// EventPublisher receives game lifecycle events.
type EventPublisher interface {
	Publish(models.Event) error
}

// Bot is the dialogue of the code guessing game. Process must not be called
// concurrently for the same player.
type Bot struct {
	Sessions   *sessions.Store
	Records    *records.Store
	Events     EventPublisher
	Rand       game.Rand
	CodeLength int
	Now        func() time.Time
}

func (b *Bot) Process(msg models.Message) ([]models.Reply, error) {
	switch msg.Command {
	case "start":
		return b.reply(msg, introText, true), nil
	case "help":
		return b.reply(msg, helpText, false), nil
	case "newgame":
		return b.newGame(msg), nil
	case "record":
		return b.showRecord(msg), nil
	case "":
	default:
		logrus.WithFields(logrus.Fields{"user": msg.UserID, "command": msg.Command}).Debug("Ignoring unknown command")
		return nil, nil
	}

	switch msg.Text {
	case serde.NewGameButton:
		return b.newGame(msg), nil
	case serde.RecordButton:
		return b.showRecord(msg), nil
	}

	return b.guess(msg), nil
}

func (b *Bot) reply(msg models.Message, text string, markdown bool) []models.Reply {
	return []models.Reply{{ChatID: msg.ChatID, Text: text, Markdown: markdown, Keyboard: true}}
}

func (b *Bot) codeLength() int {
	if b.CodeLength > 0 {
		return b.CodeLength
	}
	return game.CodeLength
}

func (b *Bot) start(userID int64) *game.Game {
	r := b.Rand
	if r == nil {
		r = game.DefaultRand
	}
	g := b.Sessions.Start(userID, game.GenerateSecret(r, b.codeLength()))
	gamesStarted.Inc()
	b.publish(models.Event{Type: models.GameStarted, UserID: userID})
	logrus.WithField("user", userID).Debug("Started game")
	return g
}

func (b *Bot) newGame(msg models.Message) []models.Reply {
	b.start(msg.UserID)
	return b.reply(msg, newGameText, false)
}

func (b *Bot) showRecord(msg models.Message) []models.Reply {
	best, ok := b.Records.Best(msg.UserID)
	if !ok {
		return b.reply(msg, noRecordText, true)
	}
	return b.reply(msg, fmt.Sprintf(recordFormat, best), true)
}

func (b *Bot) guess(msg models.Message) []models.Reply {
	length := b.codeLength()
	if !game.ValidGuess(msg.Text, length) {
		invalidGuesses.Inc()
		return b.reply(msg, fmt.Sprintf(invalidFormat, length), false)
	}

	g, ok := b.Sessions.Get(msg.UserID)
	if !ok {
		g = b.start(msg.UserID)
	}

	res := g.Guess(msg.Text)
	guessesMade.Inc()
	replies := []models.Reply{{ChatID: msg.ChatID, Text: fmt.Sprintf(patternFormat, res.Pattern), Markdown: true}}
	if !res.Solved {
		return replies
	}

	logCtx := logrus.WithFields(logrus.Fields{"user": msg.UserID, "attempts": res.Attempts})
	isNew, err := b.Records.Submit(msg.UserID, res.Attempts)
	if err != nil {
		logCtx.WithError(err).Error("Failed to save records")
	}
	b.Sessions.Finish(msg.UserID)
	gamesWon.Inc()
	if isNew {
		newRecords.Inc()
	}
	logCtx.WithField("record", isNew).Info("Game won")
	b.publish(models.Event{Type: models.GameWon, UserID: msg.UserID, Attempts: res.Attempts, NewRecord: isNew})

	text := fmt.Sprintf(wonFormat, g.Secret(), res.Attempts)
	if isNew {
		text += newRecordText
	}
	text += playAgainText

	return append(replies, models.Reply{ChatID: msg.ChatID, Text: text, Markdown: true, Keyboard: true})
}

func (b *Bot) publish(ev models.Event) {
	if b.Events == nil {
		return
	}
	if b.Now != nil {
		ev.Timestamp = b.Now()
	} else {
		ev.Timestamp = time.Now()
	}
	if err := b.Events.Publish(ev); err != nil {
		logrus.WithError(err).WithField("event", ev.Type).Warn("Failed to publish event")
	}
}

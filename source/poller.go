package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/aryehlev/codemaster/utils"
)

// ErrUnauthorized is returned when Telegram rejects the bot token.
var ErrUnauthorized = errors.New("bot token rejected by telegram")

// Client is the part of the Telegram API the poller needs.
// *tgbotapi.BotAPI satisfies it.
type Client interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

type Conf struct {
	// PollTimeout is the long-poll timeout passed to getUpdates.
	PollTimeout time.Duration
	// RestartDelay is how long to wait after a failed poll.
	RestartDelay time.Duration
}

type Poller struct {
	client Client
	conf   Conf
	offset int
}

func New(client Client, conf Conf) *Poller {
	return &Poller{client: client, conf: conf}
}

// Run long-polls Telegram and writes updates to out in the order they were
// received, until ctx is cancelled or the token is rejected. Any other
// failure is logged and polling resumes after RestartDelay. out is closed
// when Run returns.
func (p *Poller) Run(ctx context.Context, out chan<- tgbotapi.Update) error {
	defer close(out)
	defer logrus.Info("Update polling stopped")

	for ctx.Err() == nil {
		conf := tgbotapi.NewUpdate(p.offset)
		conf.Timeout = int(p.conf.PollTimeout.Seconds())

		updates, err := p.client.GetUpdates(conf)
		if err != nil {
			var apiErr *tgbotapi.Error
			if errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized {
				return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Message)
			}
			logrus.WithError(err).Warnf("Failed to get updates, retrying in %s", p.conf.RestartDelay)
			utils.Sleep(ctx, p.conf.RestartDelay)
			continue
		}

		for _, update := range updates {
			select {
			case out <- update:
			case <-ctx.Done():
				return nil
			}
			if update.UpdateID >= p.offset {
				p.offset = update.UpdateID + 1
			}
		}
	}

	return nil
}

// Offset is the id of the next update the poller asks for.
func (p *Poller) Offset() int {
	return p.offset
}

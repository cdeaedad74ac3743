package producer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/aryehlev/codemaster/utils"
)

// ErrBadReply means Telegram rejected the message itself, e.g. malformed
// markup or a user who blocked the bot. Retrying will not help.
var ErrBadReply = errors.New("bad reply error")

// ErrSenderUnavailable means the message may go through on a later attempt.
var ErrSenderUnavailable = errors.New("sender unavailable error")

// Sender is the part of the Telegram API the producer needs.
// *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Producer struct {
	sender  Sender
	limiter *rate.Limiter
}

// New creates a producer sending at most perSecond messages per second with
// the given burst. A non-positive rate disables limiting.
func New(sender Sender, perSecond float64, burst int) *Producer {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if burst < 1 {
		burst = 1
	}
	return &Producer{
		sender:  sender,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Send delivers messages in order and stops at the first failure. It returns
// how many messages were delivered so the caller can retry the rest.
func (p *Producer) Send(ctx context.Context, messages []tgbotapi.Chattable) (int, error) {
	for i, msg := range messages {
		if err := p.limiter.Wait(ctx); err != nil {
			return i, err
		}
		if _, err := p.sender.Send(msg); err != nil {
			return i, p.Error(ctx, err)
		}
	}
	return len(messages), nil
}

// Error classifies a send failure as ErrBadReply or ErrSenderUnavailable.
// When Telegram asks to back off, Error waits the requested time first.
func (p *Producer) Error(ctx context.Context, err error) error {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %v", ErrSenderUnavailable, err)
	}

	switch apiErr.Code {
	case http.StatusBadRequest, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrBadReply, apiErr.Message)
	case http.StatusTooManyRequests:
		wait := time.Duration(apiErr.RetryAfter) * time.Second
		logrus.WithField("retryAfter", wait).Warn("Telegram flood control, backing off")
		utils.Sleep(ctx, wait)
	}

	return fmt.Errorf("%w: %s", ErrSenderUnavailable, apiErr.Message)
}

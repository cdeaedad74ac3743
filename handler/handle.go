package handler

import (
	"context"
	"errors"
	"time"

	"github.com/alitto/pond"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/aryehlev/codemaster/processor"
	"github.com/aryehlev/codemaster/producer"
	"github.com/aryehlev/codemaster/serde"
	"github.com/aryehlev/codemaster/utils"
)

// Sink delivers encoded replies. *producer.Producer satisfies it.
type Sink interface {
	Send(ctx context.Context, messages []tgbotapi.Chattable) (int, error)
}

type Handler[T, S any] struct {
	processor  *processor.Worker[T, S]
	sink       Sink
	lanes      int
	bufferSize int

	allowedRetries int
	retryDelay     time.Duration
}

type Conf[T, S any] struct {
	Lanes          int
	BufferSize     int
	Worker         *processor.Worker[T, S]
	Sink           Sink
	AllowedRetries int
	RetryDelay     time.Duration
}

func New[T, S any](conf Conf[T, S]) *Handler[T, S] {
	lanes := conf.Lanes
	if lanes < 1 {
		lanes = 1
	}
	return &Handler[T, S]{
		processor:      conf.Worker,
		sink:           conf.Sink,
		lanes:          lanes,
		bufferSize:     conf.BufferSize,
		allowedRetries: conf.AllowedRetries,
		retryDelay:     conf.RetryDelay,
	}
}

// Run handles updates until the updates channel is closed or ctx is done.
// Once ctx is done, updates still queued on a lane are dropped unprocessed.
func (h *Handler[_, _]) Run(ctx context.Context, updates <-chan tgbotapi.Update) error {
	pool := pond.New(h.lanes, h.lanes)
	bus := newLaneBus(h.lanes, h.bufferSize)
	for _, lane := range bus {
		lane := lane
		pool.Submit(func() {
			for update := range lane {
				h.processUpdate(ctx, update)
			}
		})
	}
	defer pool.StopAndWait()
	defer bus.Close()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			bus.Send(update)
		case <-ctx.Done():
			return nil
		}
	}
}

func (h *Handler[_, _]) processUpdate(ctx context.Context, update tgbotapi.Update) {
	logCtx := logrus.WithField("update", update.UpdateID)
	if ctx.Err() != nil {
		logCtx.Debug("Shutting down, skipping queued update")
		return
	}

	replies, err := h.processor.Run(update)
	if err != nil {
		if errors.Is(err, serde.ErrUnsupported) {
			logCtx.Debug("Skipping unsupported update")
		} else {
			logCtx.WithError(err).Error("Failed to process update")
		}
		return
	}

	h.flush(ctx, logCtx, newSendState(replies))
}

func (h *Handler[_, _]) flush(ctx context.Context, logCtx *logrus.Entry, state *sendState) {
	for !state.done() {
		n, err := h.sink.Send(ctx, state.pending)
		state.delivered(n)
		if err == nil {
			continue
		}

		switch {
		case errors.Is(err, producer.ErrBadReply):
			logCtx.WithError(err).Warn("Telegram rejected reply, dropping it")
			state.reject()
		case ctx.Err() != nil:
			logCtx.WithField("pending", len(state.pending)).Warn("Shutting down with undelivered replies")
			return
		case state.shouldRetry(h.allowedRetries):
			logCtx.WithError(err).Warnf("Failed to send reply, retrying in %s", h.retryDelay)
			utils.Sleep(ctx, h.retryDelay)
		default:
			logCtx.WithError(err).WithField("pending", len(state.pending)).Error("Giving up on replies")
			return
		}
	}
}

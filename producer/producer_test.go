package producer

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []string
	errs []error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return tgbotapi.Message{}, err
		}
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig).Text)
	return tgbotapi.Message{}, nil
}

func messages(texts ...string) []tgbotapi.Chattable {
	out := make([]tgbotapi.Chattable, 0, len(texts))
	for _, text := range texts {
		out = append(out, tgbotapi.NewMessage(1, text))
	}
	return out
}

func TestSendInOrder(t *testing.T) {
	sender := &fakeSender{}
	p := New(sender, 0, 0)

	n, err := p.Send(context.Background(), messages("a", "b", "c"))
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, []string{"a", "b", "c"}, sender.sent)
}

func TestSendStopsAtFailure(t *testing.T) {
	sender := &fakeSender{errs: []error{nil, errors.New("connection reset")}}
	p := New(sender, 0, 0)

	n, err := p.Send(context.Background(), messages("a", "b", "c"))
	require.ErrorIs(t, err, ErrSenderUnavailable)
	require.Equal(t, 1, n)
	require.Equal(t, []string{"a"}, sender.sent)
}

func TestErrorClassification(t *testing.T) {
	p := New(&fakeSender{}, 0, 0)
	ctx := context.Background()

	require.ErrorIs(t, p.Error(ctx, &tgbotapi.Error{Code: 400, Message: "Bad Request: can't parse entities"}), ErrBadReply)
	require.ErrorIs(t, p.Error(ctx, &tgbotapi.Error{Code: 403, Message: "Forbidden: bot was blocked by the user"}), ErrBadReply)
	require.ErrorIs(t, p.Error(ctx, &tgbotapi.Error{Code: 502, Message: "Bad Gateway"}), ErrSenderUnavailable)
	require.ErrorIs(t, p.Error(ctx, errors.New("dial tcp: i/o timeout")), ErrSenderUnavailable)

	flood := &tgbotapi.Error{Code: 429, Message: "Too Many Requests", ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 0}}
	require.ErrorIs(t, p.Error(ctx, flood), ErrSenderUnavailable)
}

func TestFloodWaitHonorsContext(t *testing.T) {
	p := New(&fakeSender{}, 0, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	flood := &tgbotapi.Error{Code: 429, Message: "Too Many Requests", ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 3600}}
	require.ErrorIs(t, p.Error(ctx, flood), ErrSenderUnavailable)
}

func TestSendCancelled(t *testing.T) {
	sender := &fakeSender{}
	p := New(sender, 1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := p.Send(ctx, messages("a"))
	require.Error(t, err)
	require.Equal(t, 0, n)
	require.Empty(t, sender.sent)
}

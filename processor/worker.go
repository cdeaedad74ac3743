package processor

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Worker[T, S any] struct {
	processor Processor[T, S]
	decoder   Decoder[T]
	encoder   Encoder[S]
}

func New[T, S any](processor Processor[T, S],
	decoder Decoder[T],
	encoder Encoder[S]) *Worker[T, S] {
	return &Worker[T, S]{
		processor: processor,
		decoder:   decoder,
		encoder:   encoder,
	}
}

// Run turns one update into the requests to send back. Decoder errors are
// returned unchanged so callers can recognise updates to skip.
func (w *Worker[T, S]) Run(update tgbotapi.Update) ([]tgbotapi.Chattable, error) {
	updatesProcessed.Inc()

	in, err := w.decoder.Decode(update)
	if err != nil {
		return nil, err
	}
	out, err := w.processor.Process(in)
	if err != nil {
		return nil, err
	}

	return w.encoder.Encode(out)
}

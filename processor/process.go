package processor

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Decoder[T any] interface {
	Decode(tgbotapi.Update) (T, error)
}

type Processor[In, Out any] interface {
	Process(In) (Out, error)
}

// ProcessorFunc adapts a plain function to Processor.
type ProcessorFunc[In, Out any] func(In) (Out, error)

func (f ProcessorFunc[In, Out]) Process(in In) (Out, error) {
	return f(in)
}

type Encoder[T any] interface {
	Encode(T) ([]tgbotapi.Chattable, error)
}

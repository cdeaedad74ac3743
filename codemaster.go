package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/aryehlev/codemaster/config"
	"github.com/aryehlev/codemaster/game"
	"github.com/aryehlev/codemaster/handler"
	"github.com/aryehlev/codemaster/models"
	"github.com/aryehlev/codemaster/processor"
	"github.com/aryehlev/codemaster/producer"
	"github.com/aryehlev/codemaster/records"
	"github.com/aryehlev/codemaster/serde"
	"github.com/aryehlev/codemaster/sessions"
	"github.com/aryehlev/codemaster/source"
	"github.com/aryehlev/codemaster/utils"
)

const updateBufferSize = 100

// BotClient is the Telegram API surface the bot uses. *tgbotapi.BotAPI
// satisfies it.
type BotClient interface {
	source.Client
	producer.Sender
}

// Publisher receives game events and is closed when the bot shuts down.
type Publisher interface {
	processor.EventPublisher
	io.Closer
}

type CodeMaster struct {
	poller  *source.Poller
	handler *handler.Handler[models.Message, []models.Reply]
	bot     *processor.Bot
	metrics *http.Server

	closers []io.Closer
}

// NewFromConfig connects to Telegram and, when brokers are configured, Kafka.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*CodeMaster, error) {
	client, err := connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var publisher Publisher = producer.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		sarama.Logger = log.New(logrus.StandardLogger().WriterLevel(logrus.DebugLevel), "sarama ", 0)
		kafka, err := producer.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, producer.NewKafkaConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
		}
		publisher = kafka
		logrus.WithFields(logrus.Fields{"brokers": cfg.KafkaBrokers, "topic": cfg.KafkaTopic}).Info("Publishing game events")
	}

	return New(cfg, client, client.Self.UserName, publisher, game.DefaultRand), nil
}

// New builds the bot around an already connected client. botName is the
// bot's own username; commands addressed to other bots are ignored.
func New(cfg *config.Config, client BotClient, botName string, publisher Publisher, rnd game.Rand) *CodeMaster {
	bot := &processor.Bot{
		Sessions:   sessions.New(cfg.SessionTTL),
		Records:    records.Load(cfg.RecordsFile),
		Events:     publisher,
		Rand:       rnd,
		CodeLength: game.CodeLength,
	}

	handle := handler.New(handler.Conf[models.Message, []models.Reply]{
		Lanes:          cfg.Partitions,
		BufferSize:     updateBufferSize,
		Worker:         processor.New[models.Message, []models.Reply](bot, serde.UpdateDecoder{BotName: botName}, serde.ReplyEncoder{}),
		Sink:           producer.New(client, cfg.SendRate, cfg.SendBurst),
		AllowedRetries: cfg.SendRetries,
		RetryDelay:     cfg.RestartDelay,
	})

	cm := &CodeMaster{
		poller: source.New(client, source.Conf{
			PollTimeout:  cfg.PollTimeout,
			RestartDelay: cfg.RestartDelay,
		}),
		handler: handle,
		bot:     bot,
		closers: []io.Closer{publisher},
	}

	if cfg.MetricsPort > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		cm.metrics = &http.Server{
			Addr:              net.JoinHostPort("", strconv.Itoa(cfg.MetricsPort)),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		cm.closers = append(cm.closers, cm.metrics)
	}

	return cm
}

// Run polls and answers updates until ctx is cancelled or polling fails for
// good.
func (c *CodeMaster) Run(ctx context.Context) error {
	errGroup, ctx := errgroup.WithContext(ctx)
	updates := make(chan tgbotapi.Update, updateBufferSize)

	errGroup.Go(func() error {
		return c.poller.Run(ctx, updates)
	})
	errGroup.Go(func() error {
		return c.handler.Run(ctx, updates)
	})

	if c.metrics != nil {
		errGroup.Go(func() error {
			logrus.WithField("addr", c.metrics.Addr).Info("Serving metrics")
			if err := c.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		errGroup.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return c.metrics.Shutdown(shutdownCtx)
		})
	}

	return errGroup.Wait()
}

func (c *CodeMaster) Close() error {
	var result *multierror.Error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// connect creates the Telegram client, retrying while Telegram is unreachable.
func connect(ctx context.Context, cfg *config.Config) (*tgbotapi.BotAPI, error) {
	httpClient := &http.Client{
		Timeout: cfg.PollTimeout + cfg.ReadTimeout,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
			TLSHandshakeTimeout:   cfg.ConnectTimeout,
			ResponseHeaderTimeout: cfg.PollTimeout + cfg.ReadTimeout,
			IdleConnTimeout:       90 * time.Second,
		},
	}

	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	for {
		bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, endpoint, httpClient)
		if err == nil {
			bot.Debug = logrus.IsLevelEnabled(logrus.TraceLevel)
			logrus.WithField("bot", bot.Self.UserName).Info("Connected to Telegram")
			return bot, nil
		}

		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %s", source.ErrUnauthorized, apiErr.Message)
		}
		logrus.WithError(err).Warnf("Failed to connect to Telegram, retrying in %s", cfg.RestartDelay)
		if !utils.Sleep(ctx, cfg.RestartDelay) {
			return nil, ctx.Err()
		}
	}
}

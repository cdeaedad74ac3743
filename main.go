package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/aryehlev/codemaster/config"
	"github.com/aryehlev/codemaster/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	utils.ConfigureLogging(cfg.LogLevel)
	logrus.WithField("cfg", cfg).Info("Loaded configuration")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bot, err := NewFromConfig(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to start bot")
	}

	logrus.Info("Bot is running, press Ctrl-C to stop")
	runErr := bot.Run(ctx)
	if err := bot.Close(); err != nil {
		logrus.WithError(err).Warn("Failed to close bot")
	}
	if runErr != nil {
		logrus.WithError(runErr).Fatal("Bot failed")
	}
	logrus.Info("Bot stopped")
}

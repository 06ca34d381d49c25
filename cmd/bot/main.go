package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/romanselivan/goldantilop/internal/bot"
	"github.com/romanselivan/goldantilop/internal/config"
	"github.com/romanselivan/goldantilop/internal/exchange"
	"github.com/romanselivan/goldantilop/internal/notify"
	"github.com/romanselivan/goldantilop/internal/onboarding"
	"github.com/romanselivan/goldantilop/internal/sheets"
	"github.com/romanselivan/goldantilop/internal/store"
)

func main() {
	cfg := config.MustLoad()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		With().Timestamp().Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Store unreachable at startup is fatal; everything after this
	// surfaces errors in-conversation instead.
	client := sheets.MustConnect(ctx, cfg.SheetID, []byte(cfg.SheetCred))

	users := store.NewUsers(client, cfg.CacheTTL, log)
	rates := store.NewRates(client, cfg.CacheTTL, log)
	requests := store.NewRequests(client, cfg.CacheTTL, log)

	botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("bot init")
	}
	botAPI.Debug = false

	dispatcher := notify.New(botAPI, users, log)
	onb := onboarding.New(users, log)
	exch := exchange.New(rates, requests, log)

	h := bot.NewHandler(botAPI, cfg, log, users, rates, onb, exch, dispatcher)

	// Graceful shutdown
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := botAPI.GetUpdatesChan(u)

	log.Info().Str("username", botAPI.Self.UserName).Msg("bot started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("shutdown")
			return
		case upd := <-updates:
			h.HandleUpdate(ctx, upd)
		}
	}
}

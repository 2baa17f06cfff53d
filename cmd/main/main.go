package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"forwarder-bot/pkg"
	"forwarder-bot/pkg/config"
	"forwarder-bot/pkg/db"
	"forwarder-bot/pkg/forward"
	"forwarder-bot/pkg/handlers"
	"forwarder-bot/pkg/routing"
	"forwarder-bot/pkg/util"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/gateway"
	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
	"github.com/lmittmann/tint"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	err = sentry.Init(sentry.ClientOptions{
		Dsn:           cfg.SentryDSN,
		EnableTracing: false,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			if cfg.Environment == "PROD" { // only report events in prod
				return event
			}
			return nil
		},
	})
	if err != nil {
		panic(err)
	}

	defer sentry.Flush(2 * time.Second)

	logger := slog.New(slog.NewMultiHandler(
		tint.NewHandler(os.Stdout, &tint.Options{
			Level: cfg.SlogLevel(),
		}),
		sentryslog.Option{EventLevel: []slog.Level{slog.LevelWarn, slog.LevelError}}.NewSentryHandler(ctx)))
	slog.SetDefault(logger)

	slog.Info("starting the bot...", slog.String("disgo.version", disgo.Version))

	store, err := db.Open(ctx, cfg.DatabasePath, cfg.DatabaseURL)
	if err != nil {
		panic(err)
	}
	defer store.Close()
	if err := store.EnsureSchema(ctx); err != nil {
		panic(err)
	}

	routes := routing.New(store)
	if err := routes.LoadAll(ctx); err != nil {
		panic(err)
	}
	slog.Info("forwarder: loaded routes", slog.Int("count", routes.Len()))

	b := &pkg.Bot{
		Routes:    routes,
		Forwarded: forward.NewRecord(),
	}
	h := handlers.NewHandler(ctx, b, &cfg)

	client, err := disgo.New(cfg.Token,
		bot.WithGatewayConfigOpts(gateway.WithIntents(gateway.IntentGuilds, gateway.IntentGuildMessages, gateway.IntentGuildMessageReactions, gateway.IntentMessageContent),
			gateway.WithPresenceOpts(gateway.WithWatchingActivity("for agree reactions"))),
		bot.WithEventManagerConfigOpts(h.EventManagerOpts()...))
	if err != nil {
		panic(err)
	}

	defer client.Close(context.TODO())

	restClient := forward.NewRestClient(client.Rest)
	b.Guilds = restClient
	b.Engine = forward.NewEngine(forward.Config{
		AgreeEmoji:    forward.ParseEmojiID(cfg.AgreeEmoji),
		Threshold:     cfg.Threshold,
		RecencyWindow: cfg.RecencyWindow(),
	}, restClient, forward.NewWebhookForwarder(restClient, util.NewAttachmentClient(), cfg.WebhookName, cfg.MaxAttachmentSize), routes, b.Forwarded)

	if err := client.OpenGateway(ctx); err != nil {
		panic(err)
	}

	slog.Info("forwarder bot is now running.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-s
}

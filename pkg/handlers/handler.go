package handlers

import (
	"context"

	"forwarder-bot/pkg"
	"forwarder-bot/pkg/config"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/events"
)

func NewHandler(ctx context.Context, b *pkg.Bot, c *config.Config) *Handler {
	return &Handler{
		Bot:    b,
		Config: c,
		ctx:    ctx,
	}
}

type Handler struct {
	Bot    *pkg.Bot
	Config *config.Config

	ctx context.Context
}

func (h *Handler) Listener() *events.ListenerAdapter {
	return &events.ListenerAdapter{
		OnGuildMessageCreate: func(ev *events.GuildMessageCreate) {
			h.handleMessage(h.ctx, ev.GuildID, ev.Message)
		},
		OnGuildMessageReactionAdd: func(ev *events.GuildMessageReactionAdd) {
			h.handleReaction(h.ctx, reactionEvent(ev))
		},
	}
}

// EventManagerOpts registers the listener and dispatches every event on its own
// goroutine, so a forward waiting on Discord does not hold up other events.
func (h *Handler) EventManagerOpts() []bot.EventManagerConfigOpt {
	return []bot.EventManagerConfigOpt{
		bot.WithAsyncEventsEnabled(),
		bot.WithListeners(h.Listener()),
	}
}

package handlers

import (
	"context"
	"log/slog"

	"forwarder-bot/pkg/forward"

	"github.com/disgoorg/disgo/events"
	"github.com/lmittmann/tint"
)

func reactionEvent(ev *events.GuildMessageReactionAdd) forward.ReactionEvent {
	return forward.ReactionEvent{
		MessageID: ev.MessageID,
		ChannelID: ev.ChannelID,
		GuildID:   ev.GuildID,
		Emoji:     forward.EmojiFromPartial(ev.Emoji),
	}
}

func (h *Handler) handleReaction(ctx context.Context, ev forward.ReactionEvent) {
	outcome, err := h.Bot.Engine.HandleReaction(ctx, ev)
	if err != nil {
		slog.Error("forwarder: error while forwarding a message",
			slog.Any("guild.id", ev.GuildID),
			slog.Any("channel.id", ev.ChannelID),
			slog.Any("message.id", ev.MessageID),
			tint.Err(err))
		return
	}
	switch outcome {
	case forward.OutcomeForwarded, forward.OutcomeNativeForwarded:
		slog.Info("forwarder: message forwarded",
			slog.Any("guild.id", ev.GuildID),
			slog.Any("message.id", ev.MessageID),
			slog.String("outcome", outcome.String()))
	case forward.OutcomeIgnored:
	default:
		slog.Debug("forwarder: reaction did not forward",
			slog.Any("message.id", ev.MessageID),
			slog.String("outcome", outcome.String()))
	}
}

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/lmittmann/tint"
)

const setChannelCommand = ".setchanid"

var errZeroChannelID = errors.New("channel id must not be zero")

func (h *Handler) handleMessage(ctx context.Context, guildID snowflake.ID, message discord.Message) {
	if message.Author.Bot {
		return
	}
	args := strings.Fields(message.Content)
	if len(args) == 0 || args[0] != setChannelCommand {
		return
	}
	authorized, err := h.isAdmin(ctx, guildID, message.Author.ID)
	if err != nil {
		slog.Error("forwarder: error while fetching the guild owner", slog.Any("guild.id", guildID), tint.Err(err))
		return
	}
	if !authorized {
		slog.Debug("forwarder: ignoring unauthorized command", slog.Any("guild.id", guildID), slog.Any("user.id", message.Author.ID))
		return
	}
	if len(args) < 2 {
		slog.Warn("forwarder: command is missing a channel id", slog.Any("guild.id", guildID), slog.Any("message.id", message.ID))
		return
	}
	channelID, err := parseChannelID(args[1])
	if err != nil {
		slog.Warn("forwarder: could not parse channel id",
			slog.Any("guild.id", guildID),
			slog.String("input", args[1]),
			tint.Err(err))
		return
	}

	if err := h.Bot.Routes.Set(ctx, guildID, channelID); err != nil {
		slog.Error("forwarder: error while saving the forward channel",
			slog.Any("guild.id", guildID),
			slog.Any("channel.id", channelID),
			tint.Err(err))
		h.reply(ctx, message, "There was an error while saving the forward channel.")
		return
	}
	slog.Info("forwarder: channel set for guild", slog.Any("guild.id", guildID), slog.Any("channel.id", channelID))
	h.reply(ctx, message, fmt.Sprintf("Forwarded messages will be posted in <#%d>.", channelID))
}

// isAdmin reports whether userID may configure the guild: its owner or the bot administrator.
func (h *Handler) isAdmin(ctx context.Context, guildID snowflake.ID, userID snowflake.ID) (bool, error) {
	if userID == h.Config.AdminID {
		return true, nil
	}
	ownerID, err := h.Bot.Guilds.GuildOwner(ctx, guildID)
	if err != nil {
		return false, err
	}
	return ownerID == userID, nil
}

func (h *Handler) reply(ctx context.Context, message discord.Message, content string) {
	if err := h.Bot.Guilds.Reply(ctx, message.ChannelID, message.ID, content); err != nil {
		slog.Error("forwarder: error while replying to a command", slog.Any("channel.id", message.ChannelID), tint.Err(err))
	}
}

// parseChannelID accepts a raw id or a channel mention.
func parseChannelID(input string) (snowflake.ID, error) {
	input = strings.TrimSuffix(strings.TrimPrefix(input, "<#"), ">")
	id, err := snowflake.Parse(input)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, errZeroChannelID
	}
	return id, nil
}

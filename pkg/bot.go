package pkg

import (
	"context"

	"forwarder-bot/pkg/forward"
	"forwarder-bot/pkg/routing"

	"github.com/disgoorg/snowflake/v2"
)

// GuildAPI is used by the admin command to authorise and answer its caller.
type GuildAPI interface {
	GuildOwner(ctx context.Context, guildID snowflake.ID) (snowflake.ID, error)
	Reply(ctx context.Context, channelID snowflake.ID, messageID snowflake.ID, content string) error
}

type Bot struct {
	Routes    *routing.Table
	Forwarded *forward.Record
	Engine    *forward.Engine
	Guilds    GuildAPI
}

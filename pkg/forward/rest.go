package forward

import (
	"context"
	"errors"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
)

// ErrNotGuildChannel is returned when the origin channel of a message does not belong to a guild.
var ErrNotGuildChannel = errors.New("expected guild channel but found none")

// Webhook is an incoming webhook this process holds the token of.
type Webhook struct {
	ID    snowflake.ID
	Name  string
	Token string
}

// RestClient is the part of the Discord REST API the forwarder talks to.
type RestClient struct {
	rest rest.Rest
}

func NewRestClient(r rest.Rest) *RestClient {
	return &RestClient{rest: r}
}

func (c *RestClient) GetMessage(ctx context.Context, channelID snowflake.ID, messageID snowflake.ID) (*Message, error) {
	m, err := c.rest.GetMessage(channelID, messageID, rest.WithCtx(ctx))
	if err != nil {
		return nil, err
	}
	msg := MessageFromDiscord(*m)
	return &msg, nil
}

// SendForward posts a native forward of msg into target.
func (c *RestClient) SendForward(ctx context.Context, target snowflake.ID, msg Message) error {
	messageID, channelID, guildID := msg.ID, msg.ChannelID, msg.GuildID
	_, err := c.rest.CreateMessage(target, discord.MessageCreate{
		MessageReference: &discord.MessageReference{
			Type:            discord.MessageReferenceTypeForward,
			MessageID:       &messageID,
			ChannelID:       &channelID,
			GuildID:         &guildID,
			FailIfNotExists: true,
		},
	}, rest.WithCtx(ctx))
	return err
}

func (c *RestClient) ChannelGuild(ctx context.Context, channelID snowflake.ID) (snowflake.ID, error) {
	channel, err := c.rest.GetChannel(channelID, rest.WithCtx(ctx))
	if err != nil {
		return 0, err
	}
	guildChannel, ok := channel.(discord.GuildChannel)
	if !ok {
		return 0, ErrNotGuildChannel
	}
	return guildChannel.GuildID(), nil
}

// Webhooks lists the incoming webhooks of a channel. Webhooks without a token
// (channel followers, or ones created by another application) are skipped.
func (c *RestClient) Webhooks(ctx context.Context, channelID snowflake.ID) ([]Webhook, error) {
	hooks, err := c.rest.GetWebhooks(channelID, rest.WithCtx(ctx))
	if err != nil {
		return nil, err
	}
	var webhooks []Webhook
	for _, h := range hooks {
		incoming, ok := h.(discord.IncomingWebhook)
		if !ok || incoming.Token == "" {
			continue
		}
		webhooks = append(webhooks, Webhook{
			ID:    incoming.ID(),
			Name:  incoming.Name(),
			Token: incoming.Token,
		})
	}
	return webhooks, nil
}

func (c *RestClient) CreateWebhook(ctx context.Context, channelID snowflake.ID, name string) (Webhook, error) {
	wh, err := c.rest.CreateWebhook(channelID, discord.WebhookCreate{Name: name}, rest.WithCtx(ctx))
	if err != nil {
		return Webhook{}, err
	}
	return Webhook{
		ID:    wh.ID(),
		Name:  wh.Name(),
		Token: wh.Token,
	}, nil
}

func (c *RestClient) ExecuteWebhook(ctx context.Context, hook Webhook, messageCreate discord.WebhookMessageCreate) error {
	_, err := c.rest.CreateWebhookMessage(hook.ID, hook.Token, messageCreate, rest.CreateWebhookMessageParams{Wait: false}, rest.WithCtx(ctx))
	return err
}

func (c *RestClient) GuildOwner(ctx context.Context, guildID snowflake.ID) (snowflake.ID, error) {
	guild, err := c.rest.GetGuild(guildID, false, rest.WithCtx(ctx))
	if err != nil {
		return 0, err
	}
	return guild.OwnerID, nil
}

// Reply answers a message without pinging anyone.
func (c *RestClient) Reply(ctx context.Context, channelID snowflake.ID, messageID snowflake.ID, content string) error {
	_, err := c.rest.CreateMessage(channelID, discord.MessageCreate{
		Content:          content,
		MessageReference: &discord.MessageReference{MessageID: &messageID},
		AllowedMentions:  &discord.AllowedMentions{},
	}, rest.WithCtx(ctx))
	return err
}

package forward

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultWebhookName       = "Forwarder"
	DefaultMaxAttachmentSize = 25 << 20

	attachmentConcurrency = 4
	messageLinkFormat     = "%s\n[Learn More →](https://discord.com/channels/%d/%d/%d)"
)

var errAttachmentTooLarge = errors.New("attachment exceeds the size limit")

// WebhookAPI is what the WebhookForwarder needs from Discord.
type WebhookAPI interface {
	Webhooks(ctx context.Context, channelID snowflake.ID) ([]Webhook, error)
	CreateWebhook(ctx context.Context, channelID snowflake.ID, name string) (Webhook, error)
	ChannelGuild(ctx context.Context, channelID snowflake.ID) (snowflake.ID, error)
	ExecuteWebhook(ctx context.Context, hook Webhook, messageCreate discord.WebhookMessageCreate) error
}

// WebhookForwarder re-posts messages through a webhook impersonating their author.
type WebhookForwarder struct {
	api               WebhookAPI
	httpClient        *http.Client
	name              string
	maxAttachmentSize int

	mu    sync.Mutex
	hooks map[snowflake.ID]Webhook
	locks map[snowflake.ID]*sync.Mutex
}

func NewWebhookForwarder(api WebhookAPI, httpClient *http.Client, name string, maxAttachmentSize int) *WebhookForwarder {
	if name == "" {
		name = DefaultWebhookName
	}
	if maxAttachmentSize <= 0 {
		maxAttachmentSize = DefaultMaxAttachmentSize
	}
	return &WebhookForwarder{
		api:               api,
		httpClient:        httpClient,
		name:              name,
		maxAttachmentSize: maxAttachmentSize,
		hooks:             make(map[snowflake.ID]Webhook),
		locks:             make(map[snowflake.ID]*sync.Mutex),
	}
}

func (f *WebhookForwarder) Forward(ctx context.Context, msg Message, target snowflake.ID) error {
	hook, err := f.webhook(ctx, target)
	if err != nil {
		return fmt.Errorf("resolve webhook in channel %d: %w", target, err)
	}
	guildID, err := f.api.ChannelGuild(ctx, msg.ChannelID)
	if err != nil {
		return fmt.Errorf("resolve guild of channel %d: %w", msg.ChannelID, err)
	}

	avatarURL := msg.Author.AvatarURL
	if avatarURL == "" {
		avatarURL = msg.Author.DefaultAvatarURL
	}
	messageCreate := discord.WebhookMessageCreate{
		Content:         fmt.Sprintf(messageLinkFormat, msg.Content, guildID, msg.ChannelID, msg.ID),
		Username:        msg.Author.Name,
		AvatarURL:       avatarURL,
		Embeds:          ReconstructEmbeds(msg.Embeds),
		Files:           f.fetchAttachments(ctx, msg),
		AllowedMentions: &discord.AllowedMentions{},
	}
	slog.Debug("forwarder: executing webhook",
		slog.Any("guild.id", guildID),
		slog.Any("channel.id", msg.ChannelID),
		slog.Any("message.id", msg.ID),
		slog.Any("webhook.id", hook.ID))

	if err := f.api.ExecuteWebhook(ctx, hook, messageCreate); err != nil {
		f.forget(target)
		return fmt.Errorf("execute webhook %d: %w", hook.ID, err)
	}
	return nil
}

// webhook returns a webhook of channelID whose token is known, creating one if there is none.
// Lookups for the same channel are serialised so concurrent forwards create at most one webhook.
func (f *WebhookForwarder) webhook(ctx context.Context, channelID snowflake.ID) (Webhook, error) {
	lock := f.channelLock(channelID)
	lock.Lock()
	defer lock.Unlock()

	f.mu.Lock()
	hook, ok := f.hooks[channelID]
	f.mu.Unlock()
	if ok {
		return hook, nil
	}

	hooks, err := f.api.Webhooks(ctx, channelID)
	if err != nil {
		return Webhook{}, err
	}
	found := false
	for _, h := range hooks {
		if h.Token != "" {
			hook, found = h, true
			break
		}
	}
	if !found {
		if hook, err = f.api.CreateWebhook(ctx, channelID, f.name); err != nil {
			return Webhook{}, err
		}
		slog.Info("forwarder: created webhook", slog.Any("channel.id", channelID), slog.Any("webhook.id", hook.ID))
	}

	f.mu.Lock()
	f.hooks[channelID] = hook
	f.mu.Unlock()
	return hook, nil
}

func (f *WebhookForwarder) channelLock(channelID snowflake.ID) *sync.Mutex {
	f.mu.Lock()
	defer f.mu.Unlock()
	lock, ok := f.locks[channelID]
	if !ok {
		lock = &sync.Mutex{}
		f.locks[channelID] = lock
	}
	return lock
}

func (f *WebhookForwarder) forget(channelID snowflake.ID) {
	f.mu.Lock()
	delete(f.hooks, channelID)
	f.mu.Unlock()
}

// fetchAttachments downloads every attachment of msg concurrently. Attachments
// that cannot be fetched are logged and left out, the rest keep their order.
func (f *WebhookForwarder) fetchAttachments(ctx context.Context, msg Message) []*discord.File {
	if len(msg.Attachments) == 0 {
		return nil
	}
	files := make([]*discord.File, len(msg.Attachments))
	var eg errgroup.Group
	eg.SetLimit(attachmentConcurrency)
	for i, attachment := range msg.Attachments {
		eg.Go(func() error {
			data, err := f.download(ctx, attachment)
			if err != nil {
				slog.Warn("forwarder: skipping attachment",
					slog.Any("message.id", msg.ID),
					slog.String("attachment.filename", attachment.Filename),
					slog.String("attachment.url", attachment.URL),
					tint.Err(err))
				return nil
			}
			files[i] = discord.NewFile(attachment.Filename, "", bytes.NewReader(data))
			return nil
		})
	}
	_ = eg.Wait()

	fetched := files[:0]
	for _, file := range files {
		if file != nil {
			fetched = append(fetched, file)
		}
	}
	return fetched
}

func (f *WebhookForwarder) download(ctx context.Context, attachment Attachment) ([]byte, error) {
	if attachment.Size > f.maxAttachmentSize {
		return nil, errAttachmentTooLarge
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, attachment.URL, nil)
	if err != nil {
		return nil, err
	}
	rs, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer rs.Body.Close()
	if rs.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d", rs.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(rs.Body, int64(f.maxAttachmentSize)+1))
	if err != nil {
		return nil, err
	}
	if len(data) > f.maxAttachmentSize {
		return nil, errAttachmentTooLarge
	}
	return data, nil
}

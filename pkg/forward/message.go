package forward

import (
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
)

// EmojiID identifies a reaction emoji: the snowflake of a custom emoji, or the
// literal character(s) of a unicode emoji.
type EmojiID string

// ParseEmojiID turns a configured emoji ("id", "name:id", "<a:name:id>" or a
// unicode emoji) into its identity.
func ParseEmojiID(input string) EmojiID {
	input = strings.TrimSuffix(strings.TrimPrefix(input, "<"), ">")
	if i := strings.LastIndexByte(input, ':'); i != -1 {
		return EmojiID(input[i+1:])
	}
	return EmojiID(input)
}

// EmojiFromPartial is the identity of the emoji of a reaction event.
func EmojiFromPartial(e discord.PartialEmoji) EmojiID {
	var name string
	if e.Name != nil {
		name = *e.Name
	}
	return emojiID(e.ID, name)
}

// EmojiFromEmoji is the identity of the emoji of a reaction aggregate.
func EmojiFromEmoji(e discord.Emoji) EmojiID {
	return emojiID(&e.ID, e.Name)
}

// unicode emojis come with a null id which may decode to 0
func emojiID(id *snowflake.ID, name string) EmojiID {
	if id != nil && *id != 0 {
		return EmojiID(id.String())
	}
	return EmojiID(name)
}

// ReactionEvent is a reaction added to a guild message.
type ReactionEvent struct {
	MessageID snowflake.ID
	ChannelID snowflake.ID
	GuildID   snowflake.ID
	Emoji     EmojiID
}

type Author struct {
	Name             string
	AvatarURL        string
	DefaultAvatarURL string
}

type Attachment struct {
	URL      string
	Filename string
	Size     int
}

type Reaction struct {
	Emoji EmojiID
	Count int
}

// Message is the snapshot of a source message taken when a forward is decided.
type Message struct {
	ID            snowflake.ID
	ChannelID     snowflake.ID
	GuildID       snowflake.ID
	Content       string
	Author        Author
	Embeds        []discord.Embed
	Attachments   []Attachment
	Reactions     []Reaction
	HasComponents bool
	CreatedAt     time.Time
}

// ReactionCount returns the aggregate count for emoji, 0 if nobody reacted with it.
func (m Message) ReactionCount(emoji EmojiID) int {
	for _, r := range m.Reactions {
		if r.Emoji == emoji {
			return r.Count
		}
	}
	return 0
}

// MessageFromDiscord converts a message fetched from the REST API.
func MessageFromDiscord(m discord.Message) Message {
	msg := Message{
		ID:            m.ID,
		ChannelID:     m.ChannelID,
		Content:       m.Content,
		Embeds:        m.Embeds,
		HasComponents: len(m.Components) != 0,
		CreatedAt:     m.CreatedAt,
		Author: Author{
			Name:             m.Author.EffectiveName(),
			DefaultAvatarURL: m.Author.DefaultAvatarURL(),
		},
	}
	if m.GuildID != nil {
		msg.GuildID = *m.GuildID
	}
	if avatarURL := m.Author.AvatarURL(); avatarURL != nil {
		msg.Author.AvatarURL = *avatarURL
	}
	for _, a := range m.Attachments {
		msg.Attachments = append(msg.Attachments, Attachment{
			URL:      a.URL,
			Filename: a.Filename,
			Size:     a.Size,
		})
	}
	for _, r := range m.Reactions {
		msg.Reactions = append(msg.Reactions, Reaction{
			Emoji: EmojiFromEmoji(r.Emoji),
			Count: r.Count,
		})
	}
	return msg
}

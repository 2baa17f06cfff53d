package forward

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

const (
	DefaultThreshold     = 1
	DefaultRecencyWindow = 3 * 24 * time.Hour
)

// Outcome describes what the Engine did with a reaction.
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeThresholdMiss
	OutcomeStale
	OutcomeDuplicate
	OutcomeNoRoute
	OutcomeForwarded
	OutcomeNativeForwarded
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeThresholdMiss:
		return "threshold miss"
	case OutcomeStale:
		return "stale"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeNoRoute:
		return "no route"
	case OutcomeForwarded:
		return "forwarded"
	case OutcomeNativeForwarded:
		return "native forwarded"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

type Config struct {
	AgreeEmoji    EmojiID
	Threshold     int
	RecencyWindow time.Duration
}

// MessageAPI fetches messages and posts native forwards.
type MessageAPI interface {
	GetMessage(ctx context.Context, channelID snowflake.ID, messageID snowflake.ID) (*Message, error)
	SendForward(ctx context.Context, target snowflake.ID, msg Message) error
}

type Forwarder interface {
	Forward(ctx context.Context, msg Message, target snowflake.ID) error
}

// Routes resolves the channel forwarded messages of a guild go to.
type Routes interface {
	Get(guildID snowflake.ID) (snowflake.ID, bool)
}

// Engine decides whether a reaction forwards its message and how.
type Engine struct {
	cfg       Config
	messages  MessageAPI
	forwarder Forwarder
	routes    Routes
	record    *Record
	now       func() time.Time
}

func NewEngine(cfg Config, messages MessageAPI, forwarder Forwarder, routes Routes, record *Record) *Engine {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.RecencyWindow <= 0 {
		cfg.RecencyWindow = DefaultRecencyWindow
	}
	return &Engine{
		cfg:       cfg,
		messages:  messages,
		forwarder: forwarder,
		routes:    routes,
		record:    record,
		now:       time.Now,
	}
}

// HandleReaction forwards the reacted message once its agree count is exactly
// the threshold. Reaching the threshold is edge triggered: counts jumping over
// it never forward. A message is forwarded at most once per process, even when
// the forward fails.
func (e *Engine) HandleReaction(ctx context.Context, ev ReactionEvent) (Outcome, error) {
	if ev.Emoji != e.cfg.AgreeEmoji {
		return OutcomeIgnored, nil
	}
	msg, err := e.messages.GetMessage(ctx, ev.ChannelID, ev.MessageID)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("fetch message %d: %w", ev.MessageID, err)
	}
	count := msg.ReactionCount(e.cfg.AgreeEmoji)
	slog.Debug("forwarder: agree reaction added", slog.Any("message.id", ev.MessageID), slog.Int("count", count))
	if count != e.cfg.Threshold {
		return OutcomeThresholdMiss, nil
	}
	if e.now().After(msg.CreatedAt.Add(e.cfg.RecencyWindow)) {
		return OutcomeStale, nil
	}
	if !e.record.MarkForwarded(ev.MessageID) {
		return OutcomeDuplicate, nil
	}
	target, ok := e.routes.Get(ev.GuildID)
	if !ok {
		return OutcomeNoRoute, nil
	}
	if msg.GuildID == 0 {
		msg.GuildID = ev.GuildID
	}

	// interactive components cannot be reproduced through a webhook
	if msg.HasComponents {
		if err := e.messages.SendForward(ctx, target, *msg); err != nil {
			return OutcomeFailed, fmt.Errorf("send native forward of message %d: %w", msg.ID, err)
		}
		return OutcomeNativeForwarded, nil
	}
	if err := e.forwarder.Forward(ctx, *msg, target); err != nil {
		return OutcomeFailed, fmt.Errorf("forward message %d: %w", msg.ID, err)
	}
	return OutcomeForwarded, nil
}

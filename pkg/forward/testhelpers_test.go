package forward

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
)

const (
	testAgree   = EmojiID("230782152164245505")
	testGuild   = snowflake.ID(1000)
	testChannel = snowflake.ID(2000)
	testTarget  = snowflake.ID(3000)
	testMessage = snowflake.ID(4000)
)

var (
	testNow   = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	errFailed = errors.New("request failed")
)

type fakeMessages struct {
	mu       sync.Mutex
	message  Message
	getErr   error
	sendErr  error
	forwards []snowflake.ID
}

func (f *fakeMessages) GetMessage(_ context.Context, _ snowflake.ID, _ snowflake.ID) (*Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	msg := f.message
	return &msg, nil
}

func (f *fakeMessages) SendForward(_ context.Context, target snowflake.ID, _ Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forwards = append(f.forwards, target)
	return f.sendErr
}

func (f *fakeMessages) setCount(count int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.message.Reactions = []Reaction{{Emoji: testAgree, Count: count}}
}

func (f *fakeMessages) forwardCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.forwards)
}

type forwardCall struct {
	msg    Message
	target snowflake.ID
}

type fakeForwarder struct {
	mu    sync.Mutex
	err   error
	calls []forwardCall
}

func (f *fakeForwarder) Forward(_ context.Context, msg Message, target snowflake.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, forwardCall{msg: msg, target: target})
	return f.err
}

func (f *fakeForwarder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeRoutes map[snowflake.ID]snowflake.ID

func (r fakeRoutes) Get(guildID snowflake.ID) (snowflake.ID, bool) {
	channelID, ok := r[guildID]
	return channelID, ok
}

type fakeWebhookAPI struct {
	mu         sync.Mutex
	hooks      []Webhook
	listErr    error
	createErr  error
	guildErr   error
	executeErr error
	listDelay  time.Duration

	listCalls   int
	created     []string
	executed    []discord.WebhookMessageCreate
	executedVia []Webhook
}

func (f *fakeWebhookAPI) Webhooks(_ context.Context, _ snowflake.ID) ([]Webhook, error) {
	time.Sleep(f.listDelay)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return f.hooks, f.listErr
}

func (f *fakeWebhookAPI) CreateWebhook(_ context.Context, _ snowflake.ID, name string) (Webhook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return Webhook{}, f.createErr
	}
	f.created = append(f.created, name)
	return Webhook{ID: 9000, Name: name, Token: "created-token"}, nil
}

func (f *fakeWebhookAPI) ChannelGuild(_ context.Context, _ snowflake.ID) (snowflake.ID, error) {
	if f.guildErr != nil {
		return 0, f.guildErr
	}
	return testGuild, nil
}

func (f *fakeWebhookAPI) ExecuteWebhook(_ context.Context, hook Webhook, messageCreate discord.WebhookMessageCreate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executedVia = append(f.executedVia, hook)
	f.executed = append(f.executed, messageCreate)
	return f.executeErr
}

func testMessageAt(createdAt time.Time, count int) Message {
	return Message{
		ID:        testMessage,
		ChannelID: testChannel,
		Content:   "hello",
		Author:    Author{Name: "alice", AvatarURL: "https://cdn.example/avatar.png"},
		Reactions: []Reaction{{Emoji: testAgree, Count: count}},
		CreatedAt: createdAt,
	}
}

func newTestEngine(messages MessageAPI, forwarder Forwarder, routes Routes) *Engine {
	e := NewEngine(Config{AgreeEmoji: testAgree, Threshold: 1, RecencyWindow: DefaultRecencyWindow}, messages, forwarder, routes, NewRecord())
	e.now = func() time.Time { return testNow }
	return e
}

package forward

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/disgo/discord"
)

func newAttachmentServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/a.png", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "image-a")
	})
	mux.HandleFunc("/b.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "text-b")
	})
	mux.HandleFunc("/large.bin", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat("x", 64))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestWebhookForwarderPayload(t *testing.T) {
	t.Parallel()
	srv := newAttachmentServer(t)
	api := &fakeWebhookAPI{hooks: []Webhook{{ID: 1, Name: "tokenless"}, {ID: 2, Name: "usable", Token: "token"}}}
	f := NewWebhookForwarder(api, srv.Client(), "", 32)

	msg := testMessageAt(testNow, 1)
	msg.Embeds = []discord.Embed{{Title: "first", Type: discord.EmbedTypeRich}, {Title: "second"}}
	msg.Attachments = []Attachment{
		{URL: srv.URL + "/a.png", Filename: "a.png"},
		{URL: srv.URL + "/missing", Filename: "missing.png"},
		{URL: srv.URL + "/large.bin", Filename: "large.bin"},
		{URL: srv.URL + "/b.txt", Filename: "b.txt"},
	}

	if err := f.Forward(context.Background(), msg, testTarget); err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if len(api.created) != 0 {
		t.Errorf("created webhooks: got %v, want none", api.created)
	}
	if len(api.executed) != 1 {
		t.Fatalf("executions: got %d, want 1", len(api.executed))
	}
	if api.executedVia[0].ID != 2 {
		t.Errorf("webhook: got %d, want 2", api.executedVia[0].ID)
	}

	payload := api.executed[0]
	if payload.Username != "alice" {
		t.Errorf("Username: got %q, want %q", payload.Username, "alice")
	}
	if payload.AvatarURL != "https://cdn.example/avatar.png" {
		t.Errorf("AvatarURL: got %q", payload.AvatarURL)
	}
	wantContent := fmt.Sprintf("hello\n[Learn More →](https://discord.com/channels/%d/%d/%d)", testGuild, testChannel, testMessage)
	if payload.Content != wantContent {
		t.Errorf("Content: got %q, want %q", payload.Content, wantContent)
	}
	if len(payload.Embeds) != 2 || payload.Embeds[0].Title != "first" || payload.Embeds[1].Title != "second" {
		t.Errorf("Embeds: got %+v", payload.Embeds)
	}
	if payload.Embeds[0].Type != "" {
		t.Errorf("embed type copied from the rendered embed: %q", payload.Embeds[0].Type)
	}

	wantFiles := map[string]string{"a.png": "image-a", "b.txt": "text-b"}
	if len(payload.Files) != 2 {
		t.Fatalf("Files: got %d, want 2", len(payload.Files))
	}
	if payload.Files[0].Name != "a.png" || payload.Files[1].Name != "b.txt" {
		t.Errorf("file order: got %q, %q", payload.Files[0].Name, payload.Files[1].Name)
	}
	for _, file := range payload.Files {
		data, err := io.ReadAll(file.Reader)
		if err != nil {
			t.Fatalf("read %s: %v", file.Name, err)
		}
		if string(data) != wantFiles[file.Name] {
			t.Errorf("%s: got %q, want %q", file.Name, data, wantFiles[file.Name])
		}
	}
}

func TestWebhookForwarderDefaultAvatar(t *testing.T) {
	t.Parallel()
	api := &fakeWebhookAPI{hooks: []Webhook{{ID: 2, Token: "token"}}}
	f := NewWebhookForwarder(api, http.DefaultClient, "", 0)

	msg := testMessageAt(testNow, 1)
	msg.Author = Author{Name: "bob", DefaultAvatarURL: "https://cdn.discordapp.com/embed/avatars/1.png"}
	if err := f.Forward(context.Background(), msg, testTarget); err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if got := api.executed[0].AvatarURL; got != "https://cdn.discordapp.com/embed/avatars/1.png" {
		t.Errorf("AvatarURL: got %q", got)
	}
	if api.executed[0].Files != nil {
		t.Errorf("Files: got %v, want none", api.executed[0].Files)
	}
}

func TestWebhookForwarderCreatesAndCachesWebhook(t *testing.T) {
	t.Parallel()
	api := &fakeWebhookAPI{}
	f := NewWebhookForwarder(api, http.DefaultClient, "", 0)
	msg := testMessageAt(testNow, 1)

	for range 2 {
		if err := f.Forward(context.Background(), msg, testTarget); err != nil {
			t.Fatalf("Forward: %v", err)
		}
	}
	if len(api.created) != 1 || api.created[0] != DefaultWebhookName {
		t.Errorf("created webhooks: got %v, want [%s]", api.created, DefaultWebhookName)
	}
	if api.listCalls != 1 {
		t.Errorf("webhook list calls: got %d, want 1", api.listCalls)
	}
	if api.executedVia[1].Token != "created-token" {
		t.Errorf("second forward used %+v", api.executedVia[1])
	}
}

func TestWebhookForwarderConcurrentFirstForwards(t *testing.T) {
	t.Parallel()
	api := &fakeWebhookAPI{listDelay: 20 * time.Millisecond}
	f := NewWebhookForwarder(api, http.DefaultClient, "", 0)
	msg := testMessageAt(testNow, 1)

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			if err := f.Forward(context.Background(), msg, testTarget); err != nil {
				t.Errorf("Forward: %v", err)
			}
		})
	}
	wg.Wait()

	if len(api.created) != 1 {
		t.Errorf("created webhooks: got %d, want 1", len(api.created))
	}
	if len(api.executed) != 8 {
		t.Errorf("executed: got %d, want 8", len(api.executed))
	}
}

func TestWebhookForwarderExecuteFailure(t *testing.T) {
	t.Parallel()
	api := &fakeWebhookAPI{hooks: []Webhook{{ID: 2, Token: "token"}}, executeErr: errFailed}
	f := NewWebhookForwarder(api, http.DefaultClient, "", 0)
	msg := testMessageAt(testNow, 1)

	for range 2 {
		if err := f.Forward(context.Background(), msg, testTarget); !errors.Is(err, errFailed) {
			t.Fatalf("Forward: got %v, want %v", err, errFailed)
		}
	}
	if api.listCalls != 2 {
		t.Errorf("webhook list calls: got %d, want 2 after a failed execute", api.listCalls)
	}
}

func TestWebhookForwarderNotGuildChannel(t *testing.T) {
	t.Parallel()
	api := &fakeWebhookAPI{hooks: []Webhook{{ID: 2, Token: "token"}}, guildErr: ErrNotGuildChannel}
	f := NewWebhookForwarder(api, http.DefaultClient, "", 0)

	err := f.Forward(context.Background(), testMessageAt(testNow, 1), testTarget)
	if !errors.Is(err, ErrNotGuildChannel) {
		t.Fatalf("Forward: got %v, want %v", err, ErrNotGuildChannel)
	}
	if len(api.executed) != 0 {
		t.Errorf("webhook executed for a non-guild channel")
	}
}

func TestWebhookForwarderCreateFailure(t *testing.T) {
	t.Parallel()
	api := &fakeWebhookAPI{createErr: errFailed}
	f := NewWebhookForwarder(api, http.DefaultClient, "custom", 0)

	if err := f.Forward(context.Background(), testMessageAt(testNow, 1), testTarget); !errors.Is(err, errFailed) {
		t.Fatalf("Forward: got %v, want %v", err, errFailed)
	}
}

func TestWebhookForwarderAttachmentSizeFromMetadata(t *testing.T) {
	t.Parallel()
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		_, _ = io.WriteString(w, "data")
	}))
	t.Cleanup(srv.Close)
	api := &fakeWebhookAPI{hooks: []Webhook{{ID: 2, Token: "token"}}}
	f := NewWebhookForwarder(api, srv.Client(), "", 16)

	msg := testMessageAt(testNow.Add(-time.Hour), 1)
	msg.Attachments = []Attachment{{URL: srv.URL + "/huge", Filename: "huge.bin", Size: 1 << 20}}
	if err := f.Forward(context.Background(), msg, testTarget); err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if requests != 0 {
		t.Errorf("downloaded an attachment known to exceed the limit")
	}
	if len(api.executed[0].Files) != 0 {
		t.Errorf("Files: got %d, want 0", len(api.executed[0].Files))
	}
}

// ABOUTME: Tests for the reconciliation engine
// ABOUTME: Covers relocation, sweeping, self-healing, and failure tolerance

package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mertcansegmen/command-cleaner-discord-bot/internal/gateway"
	"github.com/mertcansegmen/command-cleaner-discord-bot/internal/routing"
	"github.com/mertcansegmen/command-cleaner-discord-bot/internal/store"
)

const botID = "bot-user"

type fixture struct {
	engine  *Engine
	adapter *gateway.FakeAdapter
	rules   *routing.Store
}

func setup(t *testing.T) *fixture {
	t.Helper()

	adapter := gateway.NewFakeAdapter()
	rules, err := routing.NewStore(context.Background(), store.NewMemoryStore(), slog.Default())
	require.NoError(t, err)

	engine := New(Config{
		Adapter:     adapter,
		Rules:       rules,
		Logger:      slog.Default(),
		SelfID:      botID,
		GracePeriod: 5 * time.Millisecond,
	})
	t.Cleanup(engine.Close)

	return &fixture{engine: engine, adapter: adapter, rules: rules}
}

func (f *fixture) seedChannels(t *testing.T) {
	t.Helper()
	f.adapter.AddChannel(gateway.ChannelRef{ID: "c-general", GuildID: "g1", Name: "general"})
	f.adapter.AddChannel(gateway.ChannelRef{ID: "c-commands", GuildID: "g1", Name: "bot-commands"})
	require.NoError(t, f.rules.SetCommandChannel(context.Background(), "g1", "bot-commands"))
}

func trigger(id, content string) *gateway.Message {
	return &gateway.Message{
		ID:          id,
		GuildID:     "g1",
		ChannelID:   "c-general",
		ChannelName: "general",
		AuthorID:    "u1",
		AuthorTag:   "random#9999",
		Content:     content,
		Timestamp:   time.Now(),
	}
}

func TestReconcile_RelocatesMessage(t *testing.T) {
	f := setup(t)
	f.seedChannels(t)

	msg := trigger("m1", "!ping")
	f.adapter.AddMessage(msg)

	require.NoError(t, f.engine.Reconcile(context.Background(), msg))

	sent := f.adapter.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "c-commands", sent[0].Channel.ID)
	assert.Equal(t, "random#9999: !ping", sent[0].Out.Text)

	assert.Equal(t, []string{"m1"}, f.adapter.Deleted())
}

func TestReconcile_SweepsRepliesAndBotFollowups(t *testing.T) {
	f := setup(t)
	f.seedChannels(t)

	msg := trigger("m1", "!play song")
	msg.Timestamp = time.Now().Add(-time.Second)
	f.adapter.AddMessage(msg)

	reply := &gateway.Message{
		ID: "m2", GuildID: "g1", ChannelID: "c-general", ChannelName: "general",
		AuthorID: "u2", AuthorTag: "friend#1111", Content: "nice pick",
		ReplyToID: "m1", Timestamp: time.Now(),
	}
	f.adapter.AddMessage(reply)

	botResponse := &gateway.Message{
		ID: "m3", GuildID: "g1", ChannelID: "c-general", ChannelName: "general",
		AuthorID: botID, AuthorTag: "cleaner#0000", AuthorBot: true,
		Content: "Now playing: song", Timestamp: time.Now(),
	}
	f.adapter.AddMessage(botResponse)

	unrelated := &gateway.Message{
		ID: "m4", GuildID: "g1", ChannelID: "c-general", ChannelName: "general",
		AuthorID: "u3", AuthorTag: "bystander#2222", Content: "unrelated chatter",
		Timestamp: time.Now(),
	}
	f.adapter.AddMessage(unrelated)

	require.NoError(t, f.engine.Reconcile(context.Background(), msg))

	// Original and reply reposted in original order; bot follow-up not
	sent := f.adapter.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "random#9999: !play song", sent[0].Out.Text)
	assert.Equal(t, "friend#1111: nice pick", sent[1].Out.Text)

	// All three matched messages deleted; the bystander untouched
	assert.ElementsMatch(t, []string{"m1", "m2", "m3"}, f.adapter.Deleted())

	remaining, err := f.adapter.ListRecentMessages(context.Background(), "c-general", 0)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "m4", remaining[0].ID)
}

func TestReconcile_SelfHealsOnDeadChannel(t *testing.T) {
	f := setup(t)
	f.adapter.AddChannel(gateway.ChannelRef{ID: "c-general", GuildID: "g1", Name: "general"})
	require.NoError(t, f.rules.SetCommandChannel(context.Background(), "g1", "bot-commands"))
	// bot-commands never existed as a live channel

	msg := trigger("m1", "!ping")
	f.adapter.AddMessage(msg)

	require.NoError(t, f.engine.Reconcile(context.Background(), msg))

	// Config cleared, nothing sent or deleted
	_, ok, err := f.rules.GetCommandChannel(context.Background(), "g1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, f.adapter.Sent())
	assert.Empty(t, f.adapter.Deleted())
}

func TestReconcile_NoopWhenChannelUnset(t *testing.T) {
	f := setup(t)
	f.adapter.AddChannel(gateway.ChannelRef{ID: "c-general", GuildID: "g1", Name: "general"})

	msg := trigger("m1", "!ping")
	f.adapter.AddMessage(msg)

	require.NoError(t, f.engine.Reconcile(context.Background(), msg))
	assert.Empty(t, f.adapter.Sent())
	assert.Empty(t, f.adapter.Deleted())
}

func TestReconcile_SkipsMessageDeletedDuringGrace(t *testing.T) {
	f := setup(t)
	f.seedChannels(t)

	// The trigger is never seeded: the user deleted it during the grace
	// period, so the existence re-check finds nothing.
	msg := trigger("m1", "!ping")

	require.NoError(t, f.engine.Reconcile(context.Background(), msg))
	assert.Empty(t, f.adapter.Sent())
	assert.Empty(t, f.adapter.Deleted())
}

func TestReconcile_RepostFailureStillDeletes(t *testing.T) {
	f := setup(t)
	f.seedChannels(t)

	msg := trigger("m1", "!ping")
	f.adapter.AddMessage(msg)
	f.adapter.SendErr = errors.New("missing permissions")

	require.NoError(t, f.engine.Reconcile(context.Background(), msg))

	assert.Empty(t, f.adapter.Sent())
	assert.Equal(t, []string{"m1"}, f.adapter.Deleted())
}

func TestReconcile_CarriesEmbeds(t *testing.T) {
	f := setup(t)
	f.seedChannels(t)

	msg := trigger("m1", "!np")
	msg.Embeds = []gateway.Embed{{Title: "Now Playing", Description: "a song"}}
	f.adapter.AddMessage(msg)

	require.NoError(t, f.engine.Reconcile(context.Background(), msg))

	sent := f.adapter.Sent()
	require.Len(t, sent, 1)
	require.Len(t, sent[0].Out.Embeds, 1)
	assert.Equal(t, "Now Playing", sent[0].Out.Embeds[0].Title)
}

func TestReconcile_CoalescesDuplicateTriggers(t *testing.T) {
	f := setup(t)
	f.seedChannels(t)

	msg := trigger("m1", "!ping")
	f.adapter.AddMessage(msg)

	require.NoError(t, f.engine.Reconcile(context.Background(), msg))
	require.NoError(t, f.engine.Reconcile(context.Background(), msg))

	assert.Len(t, f.adapter.Sent(), 1)
	assert.Equal(t, []string{"m1"}, f.adapter.Deleted())
}

func TestReconcile_CancelledDuringGrace(t *testing.T) {
	adapter := gateway.NewFakeAdapter()
	rules, err := routing.NewStore(context.Background(), store.NewMemoryStore(), slog.Default())
	require.NoError(t, err)

	engine := New(Config{
		Adapter:     adapter,
		Rules:       rules,
		Logger:      slog.Default(),
		SelfID:      botID,
		GracePeriod: time.Hour,
	})
	defer engine.Close()

	adapter.AddChannel(gateway.ChannelRef{ID: "c-commands", GuildID: "g1", Name: "bot-commands"})
	require.NoError(t, rules.SetCommandChannel(context.Background(), "g1", "bot-commands"))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err = engine.Reconcile(ctx, trigger("m1", "!ping"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, adapter.Deleted())
}

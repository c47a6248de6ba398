// ABOUTME: Event-handling glue between the gateway adapter and the core
// ABOUTME: Classifies messages, dispatches admin commands, launches reconciliations

package bot

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mertcansegmen/command-cleaner-discord-bot/internal/admincmd"
	"github.com/mertcansegmen/command-cleaner-discord-bot/internal/gateway"
	"github.com/mertcansegmen/command-cleaner-discord-bot/internal/reconcile"
	"github.com/mertcansegmen/command-cleaner-discord-bot/internal/routing"
)

// Config holds the bot's collaborators.
type Config struct {
	Adapter gateway.Adapter
	Rules   *routing.Store
	Admin   *admincmd.Processor
	Engine  *reconcile.Engine
	Logger  *slog.Logger

	// SelfID is the bot's own user ID.
	SelfID string

	// Marker is the admin text-command marker, e.g. ",,".
	Marker string
}

// Bot wires gateway events to the evaluator, the admin command processor,
// and the reconciliation engine.
type Bot struct {
	adapter gateway.Adapter
	rules   *routing.Store
	admin   *admincmd.Processor
	engine  *reconcile.Engine
	logger  *slog.Logger
	selfID  string
	marker  string
}

// New creates a Bot.
func New(cfg Config) *Bot {
	return &Bot{
		adapter: cfg.Adapter,
		rules:   cfg.Rules,
		admin:   cfg.Admin,
		engine:  cfg.Engine,
		logger:  cfg.Logger.With("component", "bot"),
		selfID:  cfg.SelfID,
		marker:  cfg.Marker,
	}
}

// HandleMessage is the top-level handler for inbound message events.
// It never panics: anything escaping the handlers below is recovered and
// logged, keeping the process alive for the next event.
func (b *Bot) HandleMessage(ctx context.Context, msg *gateway.Message) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic in message handler", "panic", r)
		}
	}()

	if msg == nil || msg.GuildID == "" {
		return
	}

	cfg, err := b.rules.Snapshot(ctx, msg.GuildID)
	if err != nil {
		b.logger.Error("reading routing config failed", "guild_id", msg.GuildID, "error", err)
		return
	}

	verdict := routing.Evaluate(msg, b.selfID, b.marker, cfg)
	switch verdict {
	case routing.VerdictAdmin:
		b.handleAdminText(ctx, msg)
	case routing.VerdictRelocate:
		b.logger.Info("message flagged for relocation",
			"guild_id", msg.GuildID,
			"channel", msg.ChannelName,
			"author", msg.AuthorTag,
			"message_id", msg.ID,
		)
		if err := b.engine.Reconcile(ctx, msg); err != nil && !errors.Is(err, context.Canceled) {
			b.logger.Error("reconciliation failed", "message_id", msg.ID, "error", err)
		}
	}
}

func (b *Bot) handleAdminText(ctx context.Context, msg *gateway.Message) {
	cmd, ok := admincmd.ParseText(b.marker, msg.Content, msg.ChannelName)
	if !ok {
		return
	}

	reply := b.admin.Execute(ctx, msg.GuildID, cmd)
	if err := b.adapter.ReplyTo(ctx, msg, reply); err != nil {
		b.logger.Error("admin reply failed",
			"guild_id", msg.GuildID,
			"channel", msg.ChannelName,
			"message_id", msg.ID,
			"error", err,
		)
	}
}

// HandleSlashCommand executes a slash interaction by name and named string
// options. The second return is false for command names the bot does not
// own.
func (b *Bot) HandleSlashCommand(ctx context.Context, guildID, name string, options map[string]string) (string, bool) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic in interaction handler", "panic", r)
		}
	}()

	cmd, ok := admincmd.ParseSlash(name, options)
	if !ok {
		return "", false
	}
	return b.admin.Execute(ctx, guildID, cmd), true
}

// HandleGuildJoin records that the bot was added to a guild.
func (b *Bot) HandleGuildJoin(ctx context.Context, guild gateway.Guild) {
	b.logger.Info("joined guild", "guild_id", guild.ID, "guild_name", guild.Name)
}

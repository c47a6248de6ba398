// ABOUTME: Reconciliation engine moving misplaced messages to the command channel
// ABOUTME: Resolve target, wait out the grace period, sweep, repost, delete

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mertcansegmen/command-cleaner-discord-bot/internal/dedupe"
	"github.com/mertcansegmen/command-cleaner-discord-bot/internal/gateway"
	"github.com/mertcansegmen/command-cleaner-discord-bot/internal/routing"
)

// DefaultGracePeriod is how long the engine waits before acting, so that
// other bots' responses to the same command land and get swept up together.
const DefaultGracePeriod = 20 * time.Second

// DefaultRecentWindow bounds how many recent messages the sweep inspects.
const DefaultRecentWindow = 50

// inflightCapacity bounds the trigger-coalescing cache.
const inflightCapacity = 1024

// Config holds the engine's collaborators and tunables.
type Config struct {
	Adapter gateway.Adapter
	Rules   *routing.Store
	Logger  *slog.Logger

	// SelfID is the bot's own user ID, used to find its follow-up messages.
	SelfID string

	// GracePeriod overrides DefaultGracePeriod when positive.
	GracePeriod time.Duration

	// RecentWindow overrides DefaultRecentWindow when positive.
	RecentWindow int
}

// Engine executes the relocation sequence for messages flagged by the
// evaluator. All delivery failures are best-effort: logged per action,
// never retried, and never allowed to abort the rest of the batch.
type Engine struct {
	adapter  gateway.Adapter
	rules    *routing.Store
	logger   *slog.Logger
	selfID   string
	grace    time.Duration
	window   int
	inflight *dedupe.Cache
}

// New creates a reconciliation engine.
func New(cfg Config) *Engine {
	grace := cfg.GracePeriod
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	window := cfg.RecentWindow
	if window <= 0 {
		window = DefaultRecentWindow
	}

	return &Engine{
		adapter: cfg.Adapter,
		rules:   cfg.Rules,
		logger:  cfg.Logger.With("component", "reconcile"),
		selfID:  cfg.SelfID,
		grace:   grace,
		window:  window,
		// Coalesce repeated triggers for the same message for the whole
		// grace window plus a margin for the sweep itself.
		inflight: dedupe.New(grace+time.Minute, inflightCapacity),
	}
}

// Close releases the engine's background resources.
func (e *Engine) Close() {
	e.inflight.Close()
}

// sweepTarget is one message discovered by the sweep.
type sweepTarget struct {
	msg    *gateway.Message
	repost bool
}

// Reconcile relocates msg, its direct replies, and the bot's own follow-ups
// to the guild's command channel. Returns an error only for configuration
// failures or context cancellation; delivery failures are logged and
// swallowed.
func (e *Engine) Reconcile(ctx context.Context, msg *gateway.Message) error {
	if e.inflight.CheckAndMark(msg.ID) {
		e.logger.Debug("reconciliation already in flight for message", "message_id", msg.ID)
		return nil
	}

	logger := e.logger.With(
		"reconciliation_id", uuid.NewString(),
		"guild_id", msg.GuildID,
		"channel", msg.ChannelName,
		"message_id", msg.ID,
	)

	target, err := e.resolveTarget(ctx, msg.GuildID, logger)
	if err != nil || target == nil {
		return err
	}

	logger.Info("relocating message",
		"author", msg.AuthorTag,
		"target_channel", target.Name,
		"grace_period", e.grace,
	)

	// Let concurrent bot responses land before sweeping.
	select {
	case <-time.After(e.grace):
	case <-ctx.Done():
		return ctx.Err()
	}

	batch := e.sweep(ctx, msg, logger)
	for _, t := range batch {
		e.relocate(ctx, t, *target, logger)
	}
	return nil
}

// resolveTarget resolves the guild's command channel against live channel
// state. The channel is stored by display name, so it can vanish or be
// renamed out-of-band; when that happens the stale config is cleared and
// the relocation is abandoned.
func (e *Engine) resolveTarget(ctx context.Context, guildID string, logger *slog.Logger) (*gateway.ChannelRef, error) {
	name, ok, err := e.rules.GetCommandChannel(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("reading command channel: %w", err)
	}
	if !ok {
		// Cleared between classification and reconciliation.
		logger.Debug("command channel unset, nothing to do")
		return nil, nil
	}

	target, err := e.adapter.ResolveChannelByName(ctx, guildID, name)
	if errors.Is(err, gateway.ErrChannelNotFound) {
		logger.Warn("command channel no longer resolves, clearing config", "channel_name", name)
		if clearErr := e.rules.ClearCommandChannel(ctx, guildID); clearErr != nil {
			logger.Error("failed to clear stale command channel", "error", clearErr)
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolving channel %q: %w", name, err)
	}
	return target, nil
}

// sweep re-scans the origin channel's recent window for the triggering
// message, direct replies to it, and the bot's own messages since the
// trigger. Replies and the original are reposted when authored by a
// non-bot user; everything matched is deleted.
func (e *Engine) sweep(ctx context.Context, msg *gateway.Message, logger *slog.Logger) []sweepTarget {
	recent, err := e.adapter.ListRecentMessages(ctx, msg.ChannelID, e.window)
	if err != nil {
		// Still act on the trigger itself.
		logger.Error("listing recent messages failed", "op", "list", "error", err)
		recent = nil
	}

	var batch []sweepTarget
	sawTrigger := false

	// The adapter returns newest first; walk oldest first so reposts land
	// in the target channel in their original order.
	for i := len(recent) - 1; i >= 0; i-- {
		m := recent[i]
		switch {
		case m.ID == msg.ID:
			batch = append(batch, sweepTarget{msg: m, repost: !m.AuthorBot})
			sawTrigger = true
		case m.ReplyToID == msg.ID:
			batch = append(batch, sweepTarget{msg: m, repost: !m.AuthorBot})
		case m.AuthorID == e.selfID && m.Timestamp.After(msg.Timestamp):
			batch = append(batch, sweepTarget{msg: m, repost: false})
		}
	}

	// The trigger may have fallen out of the recent window; act on the
	// copy from the event.
	if !sawTrigger {
		batch = append([]sweepTarget{{msg: msg, repost: !msg.AuthorBot}}, batch...)
	}
	return batch
}

// relocate reposts one message to the target channel (when flagged) and
// deletes it from the origin. Repost comes before delete so content is not
// lost if the repost fails. A message that disappeared during the grace
// period is skipped; one deleted between the check and the delete call is
// treated as deleted.
func (e *Engine) relocate(ctx context.Context, t sweepTarget, target gateway.ChannelRef, logger *slog.Logger) {
	exists, err := e.adapter.MessageExists(ctx, t.msg.ChannelID, t.msg.ID)
	if err != nil {
		// Assume it still exists and try anyway.
		logger.Debug("existence check failed", "swept_message_id", t.msg.ID, "error", err)
	} else if !exists {
		logger.Debug("message already deleted, skipping", "swept_message_id", t.msg.ID)
		return
	}

	if t.repost && (t.msg.Content != "" || len(t.msg.Embeds) > 0) {
		out := gateway.Outgoing{
			Text:   fmt.Sprintf("%s: %s", t.msg.AuthorTag, t.msg.Content),
			Embeds: t.msg.Embeds,
		}
		if err := e.adapter.SendMessage(ctx, target, out); err != nil {
			logger.Error("repost failed",
				"op", "repost",
				"swept_message_id", t.msg.ID,
				"target_channel", target.Name,
				"error", err,
			)
			// Deletion still proceeds; best-effort semantics.
		}
	}

	err = e.adapter.DeleteMessage(ctx, t.msg.ChannelID, t.msg.ID)
	if err != nil && !errors.Is(err, gateway.ErrMessageNotFound) {
		logger.Error("delete failed",
			"op", "delete",
			"swept_message_id", t.msg.ID,
			"error", err,
		)
	}
}

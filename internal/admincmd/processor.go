// ABOUTME: Executes decoded admin commands against the routing config store
// ABOUTME: One handler table so both admin surfaces reply with identical text

package admincmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mertcansegmen/command-cleaner-discord-bot/internal/routing"
)

const genericErrorReply = "Something went wrong. Please try again."

// Processor turns admin commands into config mutations and reply text.
// Rule errors from the store are recovered into user-facing messages here
// and never propagate further.
type Processor struct {
	cfgs     *routing.Store
	logger   *slog.Logger
	marker   string
	handlers map[Kind]func(ctx context.Context, guildID, value string) string
}

// NewProcessor creates a Processor over the routing config store. marker is
// the literal text-command marker, used in help and guidance replies.
func NewProcessor(cfgs *routing.Store, marker string, logger *slog.Logger) *Processor {
	p := &Processor{
		cfgs:   cfgs,
		logger: logger.With("component", "admincmd"),
		marker: marker,
	}
	p.handlers = map[Kind]func(ctx context.Context, guildID, value string) string{
		KindUnknown:      p.handleUnknown,
		KindPing:         p.handlePing,
		KindInfo:         p.handleInfo,
		KindShowChannel:  p.handleShowChannel,
		KindSetChannel:   p.handleSetChannel,
		KindClearChannel: p.handleClearChannel,
		KindListTags:     p.handleListTags,
		KindAddTag:       p.handleAddTag,
		KindRemoveTag:    p.handleRemoveTag,
		KindListPrefixes: p.handleListPrefixes,
		KindAddPrefix:    p.handleAddPrefix,
		KindRemovePrefix: p.handleRemovePrefix,
	}
	return p
}

// Execute runs cmd for the guild and returns the reply text.
func (p *Processor) Execute(ctx context.Context, guildID string, cmd Command) string {
	handler, ok := p.handlers[cmd.Kind]
	if !ok {
		handler = p.handleUnknown
	}
	return handler(ctx, guildID, cmd.Value)
}

const infoLead = "Command cleaner keeps bot commands and tagged users' messages in one channel."

func (p *Processor) handleInfo(ctx context.Context, guildID, value string) string {
	m := p.marker
	lines := []string{
		infoLead,
		"Available commands:",
		m + "info - show this help",
		m + "ping - check that the bot is alive",
		m + "mark - set the current channel as the command channel",
		m + "show - show the command channel",
		m + "clear - clear the command channel",
		m + "add <user-tag> - add a user tag to the target list",
		m + "remove <user-tag> - remove a user tag from the target list",
		m + "list - list the target user tags",
		m + "add-prefix <prefix> - add a command prefix",
		m + "remove-prefix <prefix> - remove a command prefix",
		m + "list-prefixes - list the command prefixes",
	}
	return strings.Join(lines, "\n")
}

func (p *Processor) handleUnknown(ctx context.Context, guildID, value string) string {
	return infoLead + " Use " + p.marker + "info to see the available commands."
}

func (p *Processor) handlePing(ctx context.Context, guildID, value string) string {
	return "I'm alive!"
}

func (p *Processor) handleShowChannel(ctx context.Context, guildID, value string) string {
	name, ok, err := p.cfgs.GetCommandChannel(ctx, guildID)
	if err != nil {
		return p.storeError(err, guildID, "show channel")
	}
	if !ok {
		return "No command channel was set. Use command-channel-set command for setting a command channel."
	}
	return "Command channel: " + name
}

func (p *Processor) handleSetChannel(ctx context.Context, guildID, value string) string {
	if err := p.cfgs.SetCommandChannel(ctx, guildID, value); err != nil {
		return p.storeError(err, guildID, "set channel")
	}
	return fmt.Sprintf("Set %s as the command channel.", value)
}

func (p *Processor) handleClearChannel(ctx context.Context, guildID, value string) string {
	if err := p.cfgs.ClearCommandChannel(ctx, guildID); err != nil {
		return p.storeError(err, guildID, "clear channel")
	}
	return "Cleared the set command channel."
}

func (p *Processor) handleListTags(ctx context.Context, guildID, value string) string {
	tags, err := p.cfgs.GetTargetTags(ctx, guildID)
	if err != nil {
		return p.storeError(err, guildID, "list tags")
	}
	if len(tags) == 0 {
		return "No target user tag found. Use user-tags-add command for adding new target user tags."
	}
	return "Target user tags:\n" + bulleted(tags)
}

func (p *Processor) handleAddTag(ctx context.Context, guildID, value string) string {
	err := p.cfgs.AddTag(ctx, guildID, value)
	if errors.Is(err, routing.ErrDuplicateRule) {
		return fmt.Sprintf("%s already exists in the target list.", value)
	}
	if err != nil {
		return p.storeError(err, guildID, "add tag")
	}
	return fmt.Sprintf("Added %s to the target list.", value)
}

func (p *Processor) handleRemoveTag(ctx context.Context, guildID, value string) string {
	err := p.cfgs.RemoveTag(ctx, guildID, value)
	if errors.Is(err, routing.ErrRuleNotFound) {
		return fmt.Sprintf("%s does not exist in the target list.", value)
	}
	if err != nil {
		return p.storeError(err, guildID, "remove tag")
	}
	return fmt.Sprintf("Removed %s from the target list.", value)
}

func (p *Processor) handleListPrefixes(ctx context.Context, guildID, value string) string {
	prefixes, err := p.cfgs.GetPrefixes(ctx, guildID)
	if err != nil {
		return p.storeError(err, guildID, "list prefixes")
	}
	if len(prefixes) == 0 {
		return "No command prefix found. Use prefixes-add command for adding new command prefixes."
	}
	return "Command prefixes:\n" + bulleted(prefixes)
}

func (p *Processor) handleAddPrefix(ctx context.Context, guildID, value string) string {
	err := p.cfgs.AddPrefix(ctx, guildID, value)
	if errors.Is(err, routing.ErrDuplicateRule) {
		return fmt.Sprintf("%s already exists in the command prefixes.", value)
	}
	if err != nil {
		return p.storeError(err, guildID, "add prefix")
	}
	return fmt.Sprintf("Added %s to the command prefixes.", value)
}

func (p *Processor) handleRemovePrefix(ctx context.Context, guildID, value string) string {
	err := p.cfgs.RemovePrefix(ctx, guildID, value)
	if errors.Is(err, routing.ErrRuleNotFound) {
		return fmt.Sprintf("%s does not exist in the command prefixes.", value)
	}
	if err != nil {
		return p.storeError(err, guildID, "remove prefix")
	}
	return fmt.Sprintf("Removed %s from the command prefixes.", value)
}

func (p *Processor) storeError(err error, guildID, op string) string {
	p.logger.Error("config store operation failed", "op", op, "guild_id", guildID, "error", err)
	return genericErrorReply
}

func bulleted(values []string) string {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("• " + v)
	}
	return b.String()
}

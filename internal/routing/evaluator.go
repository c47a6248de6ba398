// ABOUTME: Pure message classification against the guild's routing config
// ABOUTME: Decides ignore / admin / relocate with no I/O or hidden state

package routing

import (
	"strings"

	"github.com/mertcansegmen/command-cleaner-discord-bot/internal/gateway"
)

// Verdict is the outcome of classifying one message.
type Verdict int

const (
	// VerdictIgnore means no action is needed.
	VerdictIgnore Verdict = iota

	// VerdictAdmin means the message is an admin command and must be
	// handled by the admin command processor, never relocated.
	VerdictAdmin

	// VerdictRelocate means the message belongs in the command channel
	// and must be reconciled there.
	VerdictRelocate
)

// String returns the verdict name for logging.
func (v Verdict) String() string {
	switch v {
	case VerdictIgnore:
		return "ignore"
	case VerdictAdmin:
		return "admin"
	case VerdictRelocate:
		return "relocate"
	default:
		return "unknown"
	}
}

// Snapshot is a guild's resolved routing configuration at one instant.
// An empty CommandChannel means no channel is set and routing is a no-op.
type Snapshot struct {
	CommandChannel string
	Prefixes       []string
	Tags           []string
}

// Evaluate classifies a message against the guild's configuration.
// selfID is the bot's own user ID and marker is the admin command marker.
// The rules apply in order:
//
//  1. The bot's own messages are ignored.
//  2. Messages starting with the admin marker defer to the processor.
//  3. With no command channel set, or when the author is not a target
//     user and no command prefix matches, nothing happens.
//  4. Messages already in the command channel stay put.
//  5. Everything else is relocated.
func Evaluate(msg *gateway.Message, selfID, marker string, cfg Snapshot) Verdict {
	if msg.AuthorID == selfID {
		return VerdictIgnore
	}

	if marker != "" && strings.HasPrefix(msg.Content, marker) {
		return VerdictAdmin
	}

	if cfg.CommandChannel == "" {
		return VerdictIgnore
	}
	if !containsTag(cfg.Tags, msg.AuthorTag) && !matchesPrefix(cfg.Prefixes, msg.Content) {
		return VerdictIgnore
	}

	if msg.ChannelName == cfg.CommandChannel {
		return VerdictIgnore
	}

	return VerdictRelocate
}

// containsTag matches the full user tag by exact equality.
func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// matchesPrefix reports whether content starts with any configured prefix.
// Which prefix matched does not matter, any match triggers relocation.
func matchesPrefix(prefixes []string, content string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(content, p) {
			return true
		}
	}
	return false
}

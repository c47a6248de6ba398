// ABOUTME: Adapter interface abstracting the chat platform client
// ABOUTME: Consumed by the bot core; implemented by internal/discord and the fake

package gateway

import (
	"context"
	"errors"
)

// ErrChannelNotFound means a channel name did not resolve to a live channel
// in the guild. The command channel is stored by display name, so callers
// must treat this as a normal outcome, not a fault.
var ErrChannelNotFound = errors.New("channel not found")

// ErrMessageNotFound means a message no longer exists in its channel.
var ErrMessageNotFound = errors.New("message not found")

// MessageHandler receives inbound message events.
type MessageHandler func(ctx context.Context, msg *Message)

// GuildJoinHandler receives guild-join events.
type GuildJoinHandler func(ctx context.Context, guild Guild)

// Adapter is the narrow surface of the chat platform the core depends on.
// All methods are safe for concurrent use.
type Adapter interface {
	// SendMessage posts to a channel.
	SendMessage(ctx context.Context, channel ChannelRef, out Outgoing) error

	// ReplyTo posts a direct reply to an existing message.
	ReplyTo(ctx context.Context, msg *Message, text string) error

	// DeleteMessage removes a message from its channel. Deleting a message
	// that is already gone returns nil.
	DeleteMessage(ctx context.Context, channelID, messageID string) error

	// ResolveChannelByName finds a guild channel by display name.
	// Returns ErrChannelNotFound if no channel carries that name.
	ResolveChannelByName(ctx context.Context, guildID, name string) (*ChannelRef, error)

	// ListRecentMessages returns up to limit messages from the channel's
	// bounded recent window, newest first.
	ListRecentMessages(ctx context.Context, channelID string, limit int) ([]*Message, error)

	// MessageExists reports whether a message is still present.
	MessageExists(ctx context.Context, channelID, messageID string) (bool, error)
}

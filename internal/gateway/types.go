// ABOUTME: Core message and channel types exchanged with the chat platform
// ABOUTME: Platform-neutral so routing and reconciliation stay testable offline

package gateway

import "time"

// ChannelRef identifies a live channel within a guild.
type ChannelRef struct {
	ID      string
	GuildID string
	Name    string
}

// Guild identifies a server the bot is a member of.
type Guild struct {
	ID   string
	Name string
}

// EmbedField is a single name/value pair inside an embed.
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Embed is the structured rich-content block a message may carry.
// Only the fields the bot reposts are modeled.
type Embed struct {
	Title       string
	Description string
	URL         string
	Color       int
	Fields      []EmbedField
}

// Message is an inbound message event, fully resolved at the adapter
// boundary. ReplyToID is the ID of the message this one replies to,
// populated from the platform's message reference, empty otherwise.
type Message struct {
	ID          string
	GuildID     string
	ChannelID   string
	ChannelName string
	AuthorID    string
	AuthorTag   string
	AuthorBot   bool
	Content     string
	Embeds      []Embed
	ReplyToID   string
	Timestamp   time.Time
}

// Outgoing is the payload for a message the bot sends.
type Outgoing struct {
	Text   string
	Embeds []Embed
}

// ABOUTME: In-memory Adapter implementation for tests
// ABOUTME: Records sends/replies/deletes and supports per-call error injection

package gateway

import (
	"context"
	"sync"
)

// SentRecord captures one SendMessage call.
type SentRecord struct {
	Channel ChannelRef
	Out     Outgoing
}

// ReplyRecord captures one ReplyTo call.
type ReplyRecord struct {
	MessageID string
	Text      string
}

// FakeAdapter is an in-memory Adapter for tests. Channels and messages are
// seeded directly; all mutating calls are recorded for assertions.
type FakeAdapter struct {
	mu       sync.Mutex
	channels []ChannelRef
	messages map[string][]*Message // channelID -> newest first

	sent    []SentRecord
	replies []ReplyRecord
	deleted []string // message IDs

	// Error injection. When set, the corresponding call returns the error.
	SendErr   error
	DeleteErr error
}

// NewFakeAdapter returns an empty fake adapter.
func NewFakeAdapter() *FakeAdapter {
	return &FakeAdapter{
		messages: make(map[string][]*Message),
	}
}

// AddChannel seeds a live channel.
func (f *FakeAdapter) AddChannel(ch ChannelRef) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels = append(f.channels, ch)
}

// RemoveChannel removes a seeded channel, simulating out-of-band deletion.
func (f *FakeAdapter) RemoveChannel(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.channels[:0]
	for _, ch := range f.channels {
		if ch.ID != id {
			kept = append(kept, ch)
		}
	}
	f.channels = kept
}

// AddMessage seeds a message into a channel's recent window (as newest).
func (f *FakeAdapter) AddMessage(msg *Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[msg.ChannelID] = append([]*Message{msg}, f.messages[msg.ChannelID]...)
}

// RemoveMessage drops a message, simulating a user deleting it themselves.
func (f *FakeAdapter) RemoveMessage(channelID, messageID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeLocked(channelID, messageID)
}

func (f *FakeAdapter) removeLocked(channelID, messageID string) bool {
	msgs := f.messages[channelID]
	for i, m := range msgs {
		if m.ID == messageID {
			f.messages[channelID] = append(msgs[:i:i], msgs[i+1:]...)
			return true
		}
	}
	return false
}

// Sent returns all recorded SendMessage calls.
func (f *FakeAdapter) Sent() []SentRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SentRecord(nil), f.sent...)
}

// Replies returns all recorded ReplyTo calls.
func (f *FakeAdapter) Replies() []ReplyRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ReplyRecord(nil), f.replies...)
}

// Deleted returns the IDs of all deleted messages, in deletion order.
func (f *FakeAdapter) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

// SendMessage implements Adapter.
func (f *FakeAdapter) SendMessage(ctx context.Context, channel ChannelRef, out Outgoing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendErr != nil {
		return f.SendErr
	}
	f.sent = append(f.sent, SentRecord{Channel: channel, Out: out})
	return nil
}

// ReplyTo implements Adapter.
func (f *FakeAdapter) ReplyTo(ctx context.Context, msg *Message, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, ReplyRecord{MessageID: msg.ID, Text: text})
	return nil
}

// DeleteMessage implements Adapter. Deleting an absent message is success,
// matching platform semantics for already-removed messages.
func (f *FakeAdapter) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.removeLocked(channelID, messageID)
	f.deleted = append(f.deleted, messageID)
	return nil
}

// ResolveChannelByName implements Adapter.
func (f *FakeAdapter) ResolveChannelByName(ctx context.Context, guildID, name string) (*ChannelRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.channels {
		if ch.GuildID == guildID && ch.Name == name {
			ref := ch
			return &ref, nil
		}
	}
	return nil, ErrChannelNotFound
}

// ListRecentMessages implements Adapter.
func (f *FakeAdapter) ListRecentMessages(ctx context.Context, channelID string, limit int) ([]*Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.messages[channelID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return append([]*Message(nil), msgs...), nil
}

// MessageExists implements Adapter.
func (f *FakeAdapter) MessageExists(ctx context.Context, channelID, messageID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages[channelID] {
		if m.ID == messageID {
			return true, nil
		}
	}
	return false, nil
}

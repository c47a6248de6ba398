// ABOUTME: discordgo-backed implementation of the gateway Adapter interface
// ABOUTME: Maps Discord events and REST calls to the platform-neutral types

package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/mertcansegmen/command-cleaner-discord-bot/internal/gateway"
)

// Handlers are the callbacks the adapter forwards events to.
type Handlers struct {
	// Message receives every inbound guild message.
	Message gateway.MessageHandler

	// GuildJoin fires when the bot is added to a guild.
	GuildJoin gateway.GuildJoinHandler

	// Slash executes a slash command and returns the reply text. The
	// second return is false for command names the bot does not own.
	Slash func(ctx context.Context, guildID, name string, options map[string]string) (string, bool)
}

// Adapter implements gateway.Adapter on a discordgo session.
type Adapter struct {
	session *discordgo.Session
	logger  *slog.Logger
}

// New creates a Discord adapter for the given bot token. The session is not
// connected until Open is called.
func New(token string, logger *slog.Logger) (*Adapter, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent

	return &Adapter{
		session: session,
		logger:  logger.With("component", "discord"),
	}, nil
}

// Open connects to the Discord gateway and blocks until the session is
// ready. SelfID is valid afterwards.
func (a *Adapter) Open() error {
	if err := a.session.Open(); err != nil {
		return fmt.Errorf("opening discord session: %w", err)
	}
	a.logger.Info("logged in", "user", userTag(a.session.State.User), "user_id", a.session.State.User.ID)
	return nil
}

// Close disconnects from the Discord gateway.
func (a *Adapter) Close() error {
	return a.session.Close()
}

// SelfID returns the bot's own user ID. Only valid after Open.
func (a *Adapter) SelfID() string {
	return a.session.State.User.ID
}

// Bind registers the event handlers. ctx is the parent context for handler
// invocations; cancelling it makes in-flight grace-period waits abort.
func (a *Adapter) Bind(ctx context.Context, h Handlers) {
	a.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.GuildID == "" || m.Author == nil {
			return
		}
		if h.Message != nil {
			h.Message(ctx, a.inboundMessage(m.Message))
		}
	})

	a.session.AddHandler(func(s *discordgo.Session, g *discordgo.GuildCreate) {
		a.logger.Info("guild available", "guild_id", g.ID, "guild_name", g.Name)
		if err := a.registerCommands(g.ID); err != nil {
			a.logger.Error("registering slash commands failed", "guild_id", g.ID, "error", err)
		}
		if h.GuildJoin != nil {
			h.GuildJoin(ctx, gateway.Guild{ID: g.ID, Name: g.Name})
		}
	})

	a.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand || h.Slash == nil {
			return
		}

		data := i.ApplicationCommandData()
		options := make(map[string]string, len(data.Options))
		for _, opt := range data.Options {
			if opt.Type == discordgo.ApplicationCommandOptionString {
				options[opt.Name] = opt.StringValue()
			}
		}

		reply, ok := h.Slash(ctx, i.GuildID, data.Name, options)
		if !ok {
			return
		}

		err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Content: reply},
		})
		if err != nil {
			a.logger.Error("interaction reply failed",
				"guild_id", i.GuildID,
				"command", data.Name,
				"error", err,
			)
		}
	})
}

// inboundMessage maps a Discord message event to the gateway type.
func (a *Adapter) inboundMessage(m *discordgo.Message) *gateway.Message {
	replyTo := ""
	if m.MessageReference != nil {
		replyTo = m.MessageReference.MessageID
	}

	return &gateway.Message{
		ID:          m.ID,
		GuildID:     m.GuildID,
		ChannelID:   m.ChannelID,
		ChannelName: a.channelName(m.ChannelID),
		AuthorID:    m.Author.ID,
		AuthorTag:   userTag(m.Author),
		AuthorBot:   m.Author.Bot,
		Content:     m.Content,
		Embeds:      embedsFromDiscord(m.Embeds),
		ReplyToID:   replyTo,
		Timestamp:   m.Timestamp,
	}
}

// channelName resolves a channel's display name, preferring the state cache.
func (a *Adapter) channelName(channelID string) string {
	if ch, err := a.session.State.Channel(channelID); err == nil {
		return ch.Name
	}
	ch, err := a.session.Channel(channelID)
	if err != nil {
		a.logger.Debug("channel lookup failed", "channel_id", channelID, "error", err)
		return ""
	}
	return ch.Name
}

// SendMessage implements gateway.Adapter.
func (a *Adapter) SendMessage(ctx context.Context, channel gateway.ChannelRef, out gateway.Outgoing) error {
	send := &discordgo.MessageSend{
		Content: out.Text,
		Embeds:  embedsToDiscord(out.Embeds),
	}
	if _, err := a.session.ChannelMessageSendComplex(channel.ID, send, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("sending message to channel %s: %w", channel.ID, err)
	}
	return nil
}

// ReplyTo implements gateway.Adapter.
func (a *Adapter) ReplyTo(ctx context.Context, msg *gateway.Message, text string) error {
	ref := &discordgo.MessageReference{
		MessageID: msg.ID,
		ChannelID: msg.ChannelID,
		GuildID:   msg.GuildID,
	}
	if _, err := a.session.ChannelMessageSendReply(msg.ChannelID, text, ref, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("replying to message %s: %w", msg.ID, err)
	}
	return nil
}

// DeleteMessage implements gateway.Adapter. Deleting a message Discord no
// longer knows about is success.
func (a *Adapter) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	err := a.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
	if err == nil || isUnknownMessage(err) {
		return nil
	}
	return fmt.Errorf("deleting message %s: %w", messageID, err)
}

// ResolveChannelByName implements gateway.Adapter. The guild's channels are
// listed live on every call because the command channel is tracked by
// display name, which can change or disappear out-of-band.
func (a *Adapter) ResolveChannelByName(ctx context.Context, guildID, name string) (*gateway.ChannelRef, error) {
	channels, err := a.session.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("listing channels of guild %s: %w", guildID, err)
	}

	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildText && ch.Name == name {
			return &gateway.ChannelRef{ID: ch.ID, GuildID: guildID, Name: ch.Name}, nil
		}
	}
	return nil, gateway.ErrChannelNotFound
}

// ListRecentMessages implements gateway.Adapter.
func (a *Adapter) ListRecentMessages(ctx context.Context, channelID string, limit int) ([]*gateway.Message, error) {
	msgs, err := a.session.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("listing messages of channel %s: %w", channelID, err)
	}

	out := make([]*gateway.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Author == nil {
			continue
		}
		out = append(out, a.inboundMessage(m))
	}
	return out, nil
}

// MessageExists implements gateway.Adapter.
func (a *Adapter) MessageExists(ctx context.Context, channelID, messageID string) (bool, error) {
	_, err := a.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err == nil {
		return true, nil
	}
	if isUnknownMessage(err) {
		return false, nil
	}
	return false, fmt.Errorf("fetching message %s: %w", messageID, err)
}

// userTag renders the full user tag. Users migrated off discriminators get
// the bare username.
func userTag(u *discordgo.User) string {
	if u == nil {
		return ""
	}
	if u.Discriminator == "" || u.Discriminator == "0" {
		return u.Username
	}
	return u.Username + "#" + u.Discriminator
}

// isUnknownMessage reports whether err is Discord's "unknown message" REST
// error, returned for messages that were already deleted.
func isUnknownMessage(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	return restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownMessage
}

func embedsFromDiscord(embeds []*discordgo.MessageEmbed) []gateway.Embed {
	if len(embeds) == 0 {
		return nil
	}
	out := make([]gateway.Embed, 0, len(embeds))
	for _, e := range embeds {
		mapped := gateway.Embed{
			Title:       e.Title,
			Description: e.Description,
			URL:         e.URL,
			Color:       e.Color,
		}
		for _, f := range e.Fields {
			mapped.Fields = append(mapped.Fields, gateway.EmbedField{
				Name:   f.Name,
				Value:  f.Value,
				Inline: f.Inline,
			})
		}
		out = append(out, mapped)
	}
	return out
}

func embedsToDiscord(embeds []gateway.Embed) []*discordgo.MessageEmbed {
	if len(embeds) == 0 {
		return nil
	}
	out := make([]*discordgo.MessageEmbed, 0, len(embeds))
	for _, e := range embeds {
		mapped := &discordgo.MessageEmbed{
			Title:       e.Title,
			Description: e.Description,
			URL:         e.URL,
			Color:       e.Color,
		}
		for _, f := range e.Fields {
			mapped.Fields = append(mapped.Fields, &discordgo.MessageEmbedField{
				Name:   f.Name,
				Value:  f.Value,
				Inline: f.Inline,
			})
		}
		out = append(out, mapped)
	}
	return out
}

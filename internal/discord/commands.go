// ABOUTME: Slash command definitions and per-guild registration
// ABOUTME: Commands are registered when the bot joins or starts seeing a guild

package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

func stringOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    true,
	}
}

var commands = []*discordgo.ApplicationCommand{
	{
		Name:        "ping",
		Description: "Check that the bot is alive",
	},
	{
		Name:        "command-channel-show",
		Description: "Show the channel set as the command channel",
	},
	{
		Name:        "command-channel-set",
		Description: "Set the command channel by name",
		Options: []*discordgo.ApplicationCommandOption{
			stringOption("command-channel", "Name of the channel to use as the command channel"),
		},
	},
	{
		Name:        "command-channel-clear",
		Description: "Clear the set command channel",
	},
	{
		Name:        "user-tags-list",
		Description: "List the target user tags",
	},
	{
		Name:        "user-tags-add",
		Description: "Add a user tag to the target list",
		Options: []*discordgo.ApplicationCommandOption{
			stringOption("user-tag", "Full user tag to add"),
		},
	},
	{
		Name:        "user-tags-remove",
		Description: "Remove a user tag from the target list",
		Options: []*discordgo.ApplicationCommandOption{
			stringOption("user-tag", "Full user tag to remove"),
		},
	},
	{
		Name:        "prefixes-list",
		Description: "List the command prefixes",
	},
	{
		Name:        "prefixes-add",
		Description: "Add a command prefix",
		Options: []*discordgo.ApplicationCommandOption{
			stringOption("prefix", "Prefix marking a message as a command"),
		},
	},
	{
		Name:        "prefixes-remove",
		Description: "Remove a command prefix",
		Options: []*discordgo.ApplicationCommandOption{
			stringOption("prefix", "Prefix to remove"),
		},
	},
}

// registerCommands creates the bot's slash commands in one guild.
// Registration is idempotent: re-creating an existing command overwrites it.
func (a *Adapter) registerCommands(guildID string) error {
	appID := a.session.State.User.ID
	for _, cmd := range commands {
		if _, err := a.session.ApplicationCommandCreate(appID, guildID, cmd); err != nil {
			return fmt.Errorf("creating command %s: %w", cmd.Name, err)
		}
	}
	a.logger.Info("slash commands registered", "guild_id", guildID, "count", len(commands))
	return nil
}

// ABOUTME: Tests for the pure mapping helpers of the Discord adapter
// ABOUTME: User tags, embed translation, and unknown-message detection

package discord

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestUserTag(t *testing.T) {
	tests := []struct {
		name string
		user *discordgo.User
		want string
	}{
		{"nil user", nil, ""},
		{"legacy discriminator", &discordgo.User{Username: "someone", Discriminator: "1234"}, "someone#1234"},
		{"migrated user", &discordgo.User{Username: "someone", Discriminator: "0"}, "someone"},
		{"no discriminator", &discordgo.User{Username: "someone"}, "someone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, userTag(tt.user))
		})
	}
}

func TestIsUnknownMessage(t *testing.T) {
	unknown := &discordgo.RESTError{
		Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownMessage},
	}
	assert.True(t, isUnknownMessage(unknown))

	other := &discordgo.RESTError{
		Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeMissingPermissions},
	}
	assert.False(t, isUnknownMessage(other))

	assert.False(t, isUnknownMessage(errors.New("network down")))
	assert.False(t, isUnknownMessage(&discordgo.RESTError{}))
}

func TestEmbedRoundTrip(t *testing.T) {
	in := []*discordgo.MessageEmbed{
		{
			Title:       "Now Playing",
			Description: "a song",
			URL:         "https://example.org/song",
			Color:       0x00ff00,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Duration", Value: "3:21", Inline: true},
			},
		},
	}

	mapped := embedsFromDiscord(in)
	back := embedsToDiscord(mapped)

	assert.Equal(t, in, back)
	assert.Nil(t, embedsFromDiscord(nil))
	assert.Nil(t, embedsToDiscord(nil))
}

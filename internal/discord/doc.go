// Package discord implements the gateway Adapter on top of discordgo and
// owns slash-command registration.
package discord

// Package gateway defines the platform-neutral message types and the
// Adapter interface through which the bot core talks to the chat platform.
package gateway

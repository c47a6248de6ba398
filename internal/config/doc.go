// Package config loads and validates the bot's YAML configuration.
package config

// ABOUTME: Tagged command variants and the two boundary decoders
// ABOUTME: Text verbs and slash interactions decode to the same Command type

package admincmd

import "strings"

// Kind identifies one admin operation.
type Kind int

const (
	// KindUnknown is an unrecognized verb; Execute replies with guidance.
	KindUnknown Kind = iota
	KindPing
	KindInfo
	KindShowChannel
	KindSetChannel
	KindClearChannel
	KindListTags
	KindAddTag
	KindRemoveTag
	KindListPrefixes
	KindAddPrefix
	KindRemovePrefix
)

// Command is one decoded admin operation. Value carries the channel name,
// user tag, or prefix, depending on Kind.
type Command struct {
	Kind  Kind
	Value string
}

// ParseText decodes an in-channel text command. The marker must prefix the
// content exactly; channelName is the channel the message was posted in,
// used by the mark verb. Returns false if content does not start with the
// marker.
func ParseText(marker, content, channelName string) (Command, bool) {
	if marker == "" || !strings.HasPrefix(content, marker) {
		return Command{}, false
	}

	fields := strings.Fields(strings.TrimPrefix(content, marker))
	if len(fields) == 0 {
		return Command{Kind: KindUnknown}, true
	}

	verb := fields[0]
	value := ""
	if len(fields) > 1 {
		value = fields[1]
	}

	switch verb {
	case "ping":
		return Command{Kind: KindPing}, true
	case "info":
		return Command{Kind: KindInfo}, true
	case "mark":
		return Command{Kind: KindSetChannel, Value: channelName}, true
	case "show":
		return Command{Kind: KindShowChannel}, true
	case "clear":
		return Command{Kind: KindClearChannel}, true
	case "list":
		return Command{Kind: KindListTags}, true
	case "add":
		if value == "" {
			return Command{Kind: KindUnknown}, true
		}
		return Command{Kind: KindAddTag, Value: value}, true
	case "remove":
		if value == "" {
			return Command{Kind: KindUnknown}, true
		}
		return Command{Kind: KindRemoveTag, Value: value}, true
	case "list-prefixes":
		return Command{Kind: KindListPrefixes}, true
	case "add-prefix":
		if value == "" {
			return Command{Kind: KindUnknown}, true
		}
		return Command{Kind: KindAddPrefix, Value: value}, true
	case "remove-prefix":
		if value == "" {
			return Command{Kind: KindUnknown}, true
		}
		return Command{Kind: KindRemovePrefix, Value: value}, true
	default:
		return Command{Kind: KindUnknown}, true
	}
}

// ParseSlash decodes a slash interaction by command name and named string
// options. Returns false for names the bot does not own.
func ParseSlash(name string, options map[string]string) (Command, bool) {
	switch name {
	case "ping":
		return Command{Kind: KindPing}, true
	case "command-channel-show":
		return Command{Kind: KindShowChannel}, true
	case "command-channel-set":
		return Command{Kind: KindSetChannel, Value: options["command-channel"]}, true
	case "command-channel-clear":
		return Command{Kind: KindClearChannel}, true
	case "user-tags-list":
		return Command{Kind: KindListTags}, true
	case "user-tags-add":
		return Command{Kind: KindAddTag, Value: options["user-tag"]}, true
	case "user-tags-remove":
		return Command{Kind: KindRemoveTag, Value: options["user-tag"]}, true
	case "prefixes-list":
		return Command{Kind: KindListPrefixes}, true
	case "prefixes-add":
		return Command{Kind: KindAddPrefix, Value: options["prefix"]}, true
	case "prefixes-remove":
		return Command{Kind: KindRemovePrefix, Value: options["prefix"]}, true
	default:
		return Command{}, false
	}
}

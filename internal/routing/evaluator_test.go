// ABOUTME: Table-driven tests for message classification
// ABOUTME: Exercises the full decision table, tie-breaks, and purity

package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mertcansegmen/command-cleaner-discord-bot/internal/gateway"
)

const (
	selfID = "bot-user"
	marker = ",,"
)

func msgIn(channel, authorTag, content string) *gateway.Message {
	return &gateway.Message{
		ID:          "m1",
		GuildID:     "g1",
		ChannelID:   "c1",
		ChannelName: channel,
		AuthorID:    "u1",
		AuthorTag:   authorTag,
		Content:     content,
	}
}

func TestEvaluate(t *testing.T) {
	cfg := Snapshot{
		CommandChannel: "bot-commands",
		Prefixes:       []string{"!", ";;"},
		Tags:           []string{"musicfan#1234"},
	}

	tests := []struct {
		name string
		msg  *gateway.Message
		cfg  Snapshot
		want Verdict
	}{
		{
			name: "own message ignored",
			msg: &gateway.Message{
				AuthorID: selfID, ChannelName: "general", Content: "!ping",
			},
			cfg:  cfg,
			want: VerdictIgnore,
		},
		{
			name: "admin marker defers to processor",
			msg:  msgIn("general", "admin#0001", ",,mark"),
			cfg:  cfg,
			want: VerdictAdmin,
		},
		{
			name: "admin marker wins even in command channel",
			msg:  msgIn("bot-commands", "admin#0001", ",,list"),
			cfg:  cfg,
			want: VerdictAdmin,
		},
		{
			name: "no command channel set is a no-op",
			msg:  msgIn("general", "musicfan#1234", "!play song"),
			cfg:  Snapshot{Prefixes: []string{"!"}, Tags: []string{"musicfan#1234"}},
			want: VerdictIgnore,
		},
		{
			name: "prefix command outside command channel relocates",
			msg:  msgIn("general", "random#9999", "!ping"),
			cfg:  cfg,
			want: VerdictRelocate,
		},
		{
			name: "second prefix also relocates",
			msg:  msgIn("general", "random#9999", ";;skip"),
			cfg:  cfg,
			want: VerdictRelocate,
		},
		{
			name: "prefix command inside command channel stays",
			msg:  msgIn("bot-commands", "random#9999", "!ping"),
			cfg:  cfg,
			want: VerdictIgnore,
		},
		{
			name: "tagged user relocated regardless of prefix",
			msg:  msgIn("general", "musicfan#1234", "hello everyone"),
			cfg:  cfg,
			want: VerdictRelocate,
		},
		{
			name: "tagged user in command channel always ignored",
			msg:  msgIn("bot-commands", "musicfan#1234", "!play song"),
			cfg:  cfg,
			want: VerdictIgnore,
		},
		{
			name: "plain chat from untagged user ignored",
			msg:  msgIn("general", "random#9999", "hello everyone"),
			cfg:  cfg,
			want: VerdictIgnore,
		},
		{
			name: "tag match is exact, not partial",
			msg:  msgIn("general", "musicfan#12345", "hello"),
			cfg:  cfg,
			want: VerdictIgnore,
		},
		{
			name: "prefix match is starts-with, not contains",
			msg:  msgIn("general", "random#9999", "say !ping"),
			cfg:  cfg,
			want: VerdictIgnore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.msg, selfID, marker, tt.cfg)
			assert.Equal(t, tt.want, got)

			// Pure function: a second classification agrees
			assert.Equal(t, got, Evaluate(tt.msg, selfID, marker, tt.cfg))
		})
	}
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "ignore", VerdictIgnore.String())
	assert.Equal(t, "admin", VerdictAdmin.String())
	assert.Equal(t, "relocate", VerdictRelocate.String())
}

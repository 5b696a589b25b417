package slack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMentionCommand(t *testing.T) {
	tests := []struct {
		text string
		want Command
	}{
		{"<@U123ABC> status", CommandStatus},
		{"<@U123ABC> Status please", CommandStatus},
		{"<@U123ABC> sync now", CommandSyncNow},
		{"<@U123ABC> SYNC NOW!", CommandSyncNow},
		{"<@U123ABC> run sync right now", CommandSyncNow},
		{"<@U123ABC> help", CommandHelp},
		{"<@U123ABC>", CommandHelp},
		{"<@U123ABC> what do you do", CommandHelp},
		{"status", CommandStatus},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseMentionCommand(tt.text), tt.text)
	}
}

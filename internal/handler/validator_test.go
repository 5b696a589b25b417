package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStruct_SlackChannel(t *testing.T) {
	v := GetValidator()

	tests := []struct {
		channelID string
		valid     bool
	}{
		{"C0123456789", true},
		{"G0123456789", true},
		{"D0123456789", true},
		{"U0123456789", false},
		{"C12", false},
	}

	for _, tt := range tests {
		t.Run(tt.channelID, func(t *testing.T) {
			err := v.ValidateStruct(ConfigRequest{ChannelID: tt.channelID, DatabaseID: "db"})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestFormatValidationError(t *testing.T) {
	v := GetValidator()

	err := v.ValidateStruct(ConfigRequest{SyncIntervalMinutes: 999})
	require.Error(t, err)

	fields := FormatValidationError(err)
	assert.Equal(t, "This field is required", fields["channelid"])
	assert.Equal(t, "This field is required", fields["databaseid"])
	assert.Contains(t, fields["syncintervalminutes"], "at most")
}

func TestFormatValidationError_NonValidatorError(t *testing.T) {
	fields := FormatValidationError(assert.AnError)
	assert.Equal(t, "Invalid request format", fields["error"])
}

func TestFormatValidationError_Nil(t *testing.T) {
	assert.Nil(t, FormatValidationError(nil))
}

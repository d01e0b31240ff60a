package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level   string
		format  string
		wantErr bool
	}{
		{"", "", false},
		{"debug", FormatConsole, false},
		{"WARN", FormatJSON, false},
		{"error", "", false},
		{"loud", "", true},
		{"info", "xml", true},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			log, err := New(tt.level, tt.format)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, log)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, log)
			log.Debugw("test message", "key", "value")
		})
	}
}

func TestNop(t *testing.T) {
	log := Nop()
	require.NotNil(t, log)
	log.Infow("discarded")
}

package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/scheduler/internal/config"
)

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud", Format: "json", OutputPath: "stderr"}, "api-server")
	assert.Error(t, err)
}

func TestNew_BuildsBothFormats(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		t.Run(format, func(t *testing.T) {
			log, err := New(config.LogConfig{Level: "debug", Format: format, OutputPath: "stderr"}, "api-server")
			require.NoError(t, err)
			log.Debug("logger smoke test")
			_ = log.Sync()
		})
	}
}

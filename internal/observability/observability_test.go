package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func saveLoggers(t *testing.T) {
	t.Helper()
	origCLI := CLILogger
	origServer := ServerLogger
	origLevel := level.Level()
	t.Cleanup(func() {
		CLILogger = origCLI
		ServerLogger = origServer
		level.SetLevel(origLevel)
	})
}

func TestInit(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"structured profile", Config{Level: "info", Profile: ProfileStructured}, false},
		{"console profile", Config{Level: "debug", Profile: ProfileConsole}, false},
		{"empty profile defaults to structured", Config{Level: "warn"}, false},
		{"unknown level falls back to info", Config{Level: "chatty", Profile: ProfileStructured}, false},
		{"unknown profile rejected", Config{Level: "info", Profile: "xml"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saveLoggers(t)

			err := Init(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.NotNil(t, CLILogger)
			assert.NotNil(t, ServerLogger)
		})
	}
}

func TestInit_SetsLevel(t *testing.T) {
	saveLoggers(t)

	require.NoError(t, Init(Config{Level: "error", Profile: ProfileStructured}))
	assert.Equal(t, zapcore.ErrorLevel, level.Level())

	require.NoError(t, Init(Config{Level: "debug", Profile: ProfileStructured}))
	assert.Equal(t, zapcore.DebugLevel, level.Level())
}

func TestSetLevel(t *testing.T) {
	saveLoggers(t)

	require.NoError(t, Init(Config{Level: "info", Profile: ProfileStructured}))

	SetLevel("debug")
	assert.Equal(t, zapcore.DebugLevel, level.Level())

	// Unknown level is ignored
	SetLevel("nonsense")
	assert.Equal(t, zapcore.DebugLevel, level.Level())
}

func TestSync_BeforeInit(t *testing.T) {
	saveLoggers(t)

	// Must not panic with the nop loggers
	assert.NotPanics(t, func() { Sync() })
}

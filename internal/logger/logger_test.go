package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestInitialize(t *testing.T) {
	originalLog := Log
	defer func() { Log = originalLog }()

	tests := []struct {
		level   string
		wantErr bool
	}{
		{level: "debug"},
		{level: "info"},
		{level: "warn"},
		{level: "error"},
		{level: "dpanic"},
		{level: "panic"},
		{level: "fatal"},
		{level: "verbose", wantErr: true},
		{level: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("level "+tt.level, func(t *testing.T) {
			err := Initialize(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.NotNil(t, Log)
			assert.NotPanics(t, func() {
				Log.Infow("logger ready", "level", tt.level)
			})
		})
	}
}

func TestInitialize_FailureKeepsPreviousLogger(t *testing.T) {
	originalLog := Log
	defer func() { Log = originalLog }()

	assert.NoError(t, Initialize("info"))
	before := Log

	assert.Error(t, Initialize("not-a-level"))
	assert.Same(t, before, Log, "a failed Initialize must not replace the logger")
}

func TestLog_UsableBeforeInitialize(t *testing.T) {
	originalLog := Log
	defer func() { Log = originalLog }()

	// The package default is a no-op sugared logger, so packages may log
	// before main wires the real one.
	assert.NotNil(t, Log)
	assert.IsType(t, &zap.SugaredLogger{}, Log)
	assert.NotPanics(t, func() {
		Log.Errorw("pre-init message", "ok", true)
	})
}

func TestSync_DoesNotPanic(t *testing.T) {
	originalLog := Log
	defer func() { Log = originalLog }()

	assert.NoError(t, Initialize("info"))
	assert.NotPanics(t, Sync)
}

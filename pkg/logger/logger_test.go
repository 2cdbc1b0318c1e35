package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNew_DebugFlag(t *testing.T) {
	log := New("dev", true)
	assert.True(t, log.Desugar().Core().Enabled(zapcore.DebugLevel))

	log = New("dev", false)
	assert.False(t, log.Desugar().Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Desugar().Core().Enabled(zapcore.InfoLevel))
}

func TestNew_Prod(t *testing.T) {
	log := New("prod", false)
	assert.False(t, log.Desugar().Core().Enabled(zapcore.DebugLevel))
}

package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	l, err := New("warn", false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	l, err = New("debug", true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	_, err = New("loud", false)
	assert.ErrorContains(t, err, `level "loud"`)
}

func TestLogger(t *testing.T) {
	assert.NotNil(t, Logger())

	prev := Logger()
	t.Cleanup(func() { SetLogger(prev) })

	l := zap.NewExample()
	SetLogger(l)
	assert.Same(t, l, Logger())
}

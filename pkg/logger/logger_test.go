package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	log, err := New(Options{Level: "debug", Format: FormatConsole, Service: "wellness-hub"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.DebugLevel))

	log, err = New(DefaultOptions())
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zap.DebugLevel))

	_, err = New(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestRedactEmail(t *testing.T) {
	redacted := RedactEmail("Asha@X.edu")
	assert.Regexp(t, `^[0-9a-f]{12}@x\.edu$`, redacted)
	assert.NotContains(t, redacted, "asha")
	assert.Equal(t, redacted, RedactEmail(" asha@x.edu "))
	assert.Len(t, RedactEmail("no-at-sign"), 12)
}

func TestContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	log := zap.NewExample()
	ctx := WithContext(context.Background(), log)
	assert.Same(t, log, FromContext(ctx))
}

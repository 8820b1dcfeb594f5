package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keysound/pianorecd/sdk/contracts"
)

func TestFieldBuildersReturnSetFields(t *testing.T) {
	log := NewLogger()
	fields := []contracts.Field{
		log.Field().String("source", "24:0"),
		log.Field().Int("frames", 12),
		log.Field().Error("error", errors.New("boom")),
		log.Field().Bool("kernel", true),
		log.Field().Uint8("velocity", 100),
	}
	for _, f := range fields {
		zf, ok := f.(*zapField)
		require.True(t, ok)
		assert.True(t, zf.set)
	}
}

func TestToZapFieldsSkipsEmptyBuilder(t *testing.T) {
	log := NewLogger()
	// A bare Field() is the builder itself, not a populated field.
	out := toZapFields([]contracts.Field{log.Field()})
	assert.Empty(t, out)
}

func TestSetLevelAndLogDoNotPanic(t *testing.T) {
	log := NewLogger()
	log.SetLevel(contracts.DebugLevel)
	log.Debug("debug message", log.Field().Int("n", 1))
	log.SetLevel(contracts.ErrorLevel)
	log.Info("suppressed")
	log.Error("error message")
}

func TestSetDestinationFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.log")
	log := NewLogger()
	log.SetDestination(contracts.FileLog, path)
	log.Info("hello from file sink")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from file sink")
}

package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerWritesKeyValues(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	Set(zap.New(core).Sugar())
	t.Cleanup(func() { Set(nil) })

	Info("decision_made", "user_id", "U-1", "exploration", true)
	Debug("bandit_debug", "candidates", 3)

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "decision_made", entries[0].Message)
		assert.Equal(t, "U-1", entries[0].ContextMap()["user_id"])
		assert.Equal(t, true, entries[0].ContextMap()["exploration"])
		assert.Equal(t, int64(3), entries[1].ContextMap()["candidates"])
	}
}

func TestNopBeforeInit(t *testing.T) {
	Set(nil)
	assert.NotPanics(t, func() { Warn("nothing", "k", "v") })
}

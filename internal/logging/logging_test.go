package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestLogger_WithCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core)).With("session", "abc")

	log.Warn("change rejected", "position", 2)

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "change rejected", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "abc", fields["session"])
	assert.EqualValues(t, 2, fields["position"])
}

func TestNop_DoesNotPanic(t *testing.T) {
	log := Nop()
	log.Info("ignored", "k", "v")
	log.Debug("ignored")
	log.Error("ignored")
}

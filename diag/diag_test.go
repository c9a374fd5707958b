package diag_test

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/emersion/go-smtpauth/diag"
)

type record struct {
	level   diag.Level
	message string
}

func collect(records *[]record) diag.Sink {
	return func(level diag.Level, message string) {
		*records = append(*records, record{level, message})
	}
}

func TestSender_minLevel(t *testing.T) {
	s := diag.NewSender("test")
	var all, warnings []record
	s.Subscribe(collect(&all), diag.LevelInfo)
	s.Subscribe(collect(&warnings), diag.LevelWarning)

	s.Publish(diag.LevelInfo, "hello")
	s.Publishf(diag.LevelWarning, "uh oh %d", 42)

	assert.Equal(t, []record{{diag.LevelInfo, "hello"}, {diag.LevelWarning, "uh oh 42"}}, all)
	assert.Equal(t, []record{{diag.LevelWarning, "uh oh 42"}}, warnings)
}

func TestSender_unsubscribe(t *testing.T) {
	s := diag.NewSender("test")
	var records []record
	unsubscribe := s.Subscribe(collect(&records), diag.LevelInfo)
	s.Publish(diag.LevelInfo, "one")
	unsubscribe()
	unsubscribe()
	s.Publish(diag.LevelInfo, "two")
	assert.Equal(t, []record{{diag.LevelInfo, "one"}}, records)
}

func TestSender_chain(t *testing.T) {
	upstream := diag.NewSender("PLAIN")
	downstream := diag.NewSender("smtpauth")
	var records []record
	downstream.Subscribe(collect(&records), diag.LevelInfo)

	unsubscribe := upstream.Subscribe(downstream.Chain(upstream.Name()), diag.LevelInfo)
	upstream.Publish(diag.LevelWarning, "bad credentials")
	unsubscribe()
	upstream.Publish(diag.LevelWarning, "dropped")

	assert.Equal(t, []record{{diag.LevelWarning, "PLAIN: bad credentials"}}, records)
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "INFO", diag.LevelInfo.String())
	assert.Equal(t, "WARNING", diag.LevelWarning.String())
	assert.Equal(t, "ERROR", diag.LevelError.String())
	assert.Equal(t, "WARNING", diag.Level(7).String())
}

func TestLoggerSink(t *testing.T) {
	var buf bytes.Buffer
	sink := diag.LoggerSink(log.New(&buf, "", 0))
	sink(diag.LevelWarning, "server said no")
	assert.Equal(t, "[WARNING] server said no\n", buf.String())
}

func TestZapSink(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := diag.ZapSink(zap.New(core))

	sink(diag.LevelInfo, "info")
	sink(diag.LevelWarning, "warn")
	sink(diag.LevelError, "error")

	entries := logs.AllUntimed()
	if assert.Len(t, entries, 3) {
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
		assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
		assert.Equal(t, "warn", entries[1].Message)
	}
}

func TestLoggerSink_typedNil(t *testing.T) {
	var logger *log.Logger
	sink := diag.LoggerSink(logger)
	assert.NotPanics(t, func() {
		sink(diag.LevelInfo, "falls back to the default logger")
	})
}

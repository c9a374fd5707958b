// Package diag implements a small diagnostics publish/subscribe facility.
//
// Components own a Sender and publish leveled messages to it. Observers
// subscribe with a minimum level and get back a function that cancels the
// subscription. Senders can be chained so that messages published by one
// component are forwarded into another.
package diag

import (
	"fmt"
	"log"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// Level is the importance of a diagnostic message.
type Level int

const (
	LevelInfo    Level = 0
	LevelWarning Level = 5
	LevelError   Level = 10
)

func (lvl Level) String() string {
	switch {
	case lvl >= LevelError:
		return "ERROR"
	case lvl >= LevelWarning:
		return "WARNING"
	default:
		return "INFO"
	}
}

// Sink receives diagnostic messages.
type Sink func(level Level, message string)

type subscription struct {
	sink     Sink
	minLevel Level
}

// Sender fans out diagnostic messages to its subscribers.
//
// The zero value is not usable, use NewSender.
type Sender struct {
	name string

	mutex  sync.Mutex
	nextID uint64
	subs   map[uint64]subscription
}

// NewSender creates a new sender.
func NewSender(name string) *Sender {
	return &Sender{
		name: name,
		subs: make(map[uint64]subscription),
	}
}

// Name returns the name of the sender.
func (s *Sender) Name() string {
	return s.name
}

// Subscribe registers sink for messages at minLevel or above.
//
// The returned function cancels the subscription. Calling it more than once
// is harmless.
func (s *Sender) Subscribe(sink Sink, minLevel Level) (unsubscribe func()) {
	s.mutex.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = subscription{sink: sink, minLevel: minLevel}
	s.mutex.Unlock()

	return func() {
		s.mutex.Lock()
		delete(s.subs, id)
		s.mutex.Unlock()
	}
}

// Publish sends a message to every subscriber interested in level.
func (s *Sender) Publish(level Level, message string) {
	// Sinks may subscribe or unsubscribe, don't hold the lock while calling
	// them.
	s.mutex.Lock()
	sinks := make([]Sink, 0, len(s.subs))
	for _, sub := range s.subs {
		if level >= sub.minLevel {
			sinks = append(sinks, sub.sink)
		}
	}
	s.mutex.Unlock()

	for _, sink := range sinks {
		sink(level, message)
	}
}

// Publishf formats a message and publishes it.
func (s *Sender) Publishf(level Level, format string, args ...interface{}) {
	s.Publish(level, fmt.Sprintf(format, args...))
}

// Chain returns a sink which republishes messages through s. If prefix is
// not empty, messages are prefixed with it, usually the name of the upstream
// sender.
func (s *Sender) Chain(prefix string) Sink {
	return func(level Level, message string) {
		if prefix != "" {
			message = prefix + ": " + message
		}
		s.Publish(level, message)
	}
}

// Logger is the printf-style logger accepted by LoggerSink. *log.Logger
// implements it.
type Logger interface {
	Printf(format string, args ...interface{})
}

// LoggerSink returns a sink writing messages to logger. A nil logger, including
// a nil *log.Logger, means log.Default().
func LoggerSink(logger Logger) Sink {
	if isNilLogger(logger) {
		logger = log.Default()
	}
	return func(level Level, message string) {
		logger.Printf("[%v] %v", level, message)
	}
}

// ZapSink returns a sink writing messages to logger at the matching zap
// level.
func ZapSink(logger *zap.Logger) Sink {
	return func(level Level, message string) {
		switch {
		case level >= LevelError:
			logger.Error(message, zap.Int("level", int(level)))
		case level >= LevelWarning:
			logger.Warn(message, zap.Int("level", int(level)))
		default:
			logger.Info(message, zap.Int("level", int(level)))
		}
	}
}

func isNilLogger(logger Logger) bool {
	if logger == nil {
		return true
	}
	v := reflect.ValueOf(logger)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Func, reflect.Chan, reflect.Slice:
		return v.IsNil()
	}
	return false
}

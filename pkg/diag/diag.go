// Package diag provides the diagnostics sink threaded through the importer
// and the validator. Every message is forwarded to a zap logger and kept in
// memory so callers can inspect warnings after an import.
package diag

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Entry is one recorded diagnostic.
type Entry struct {
	Level   zapcore.Level
	Logger  string
	Message string
	Fields  map[string]any
}

func (e Entry) String() string {
	if e.Logger == "" {
		return fmt.Sprintf("%s: %s", e.Level.CapitalString(), e.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Level.CapitalString(), e.Logger, e.Message)
}

type record struct {
	mu      sync.Mutex
	entries []Entry
}

// Sink records diagnostics and forwards them to a zap logger.
type Sink struct {
	log  *zap.Logger
	name string
	rec  *record
}

// New returns a sink writing to log. A nil logger only records.
func New(log *zap.Logger) *Sink {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sink{log: log, rec: &record{}}
}

// Discard returns a sink that only records.
func Discard() *Sink {
	return New(nil)
}

// Named returns a child sink sharing the same record.
func (s *Sink) Named(name string) *Sink {
	full := name
	if s.name != "" {
		full = s.name + "." + name
	}
	return &Sink{log: s.log.Named(name), name: full, rec: s.rec}
}

// Logger exposes the underlying zap logger.
func (s *Sink) Logger() *zap.Logger {
	return s.log
}

func (s *Sink) add(lvl zapcore.Level, msg string, fields []zap.Field) {
	e := Entry{Level: lvl, Logger: s.name, Message: msg}
	if len(fields) > 0 {
		enc := zapcore.NewMapObjectEncoder()
		for _, f := range fields {
			f.AddTo(enc)
		}
		e.Fields = enc.Fields
	}

	s.rec.mu.Lock()
	s.rec.entries = append(s.rec.entries, e)
	s.rec.mu.Unlock()

	if ce := s.log.Check(lvl, msg); ce != nil {
		ce.Write(fields...)
	}
}

// Debug records a debug message.
func (s *Sink) Debug(msg string, fields ...zap.Field) { s.add(zapcore.DebugLevel, msg, fields) }

// Info records an info message.
func (s *Sink) Info(msg string, fields ...zap.Field) { s.add(zapcore.InfoLevel, msg, fields) }

// Warn records a warning.
func (s *Sink) Warn(msg string, fields ...zap.Field) { s.add(zapcore.WarnLevel, msg, fields) }

// Error records a recoverable error. Errors never abort an import.
func (s *Sink) Error(msg string, fields ...zap.Field) { s.add(zapcore.ErrorLevel, msg, fields) }

// Entries returns a copy of everything recorded so far.
func (s *Sink) Entries() []Entry {
	s.rec.mu.Lock()
	defer s.rec.mu.Unlock()
	return append([]Entry(nil), s.rec.entries...)
}

// AtLevel returns the entries recorded at exactly lvl.
func (s *Sink) AtLevel(lvl zapcore.Level) []Entry {
	var out []Entry
	for _, e := range s.Entries() {
		if e.Level == lvl {
			out = append(out, e)
		}
	}
	return out
}

// Warnings returns the recorded warnings.
func (s *Sink) Warnings() []Entry { return s.AtLevel(zapcore.WarnLevel) }

// Errors returns the recorded errors.
func (s *Sink) Errors() []Entry { return s.AtLevel(zapcore.ErrorLevel) }

// Count returns how many entries were recorded at lvl.
func (s *Sink) Count(lvl zapcore.Level) int { return len(s.AtLevel(lvl)) }

// Reset drops all recorded entries.
func (s *Sink) Reset() {
	s.rec.mu.Lock()
	s.rec.entries = nil
	s.rec.mu.Unlock()
}

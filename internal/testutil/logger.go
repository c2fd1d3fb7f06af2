// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"sync"

	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
)

// Entry is one captured log call.
type Entry struct {
	Level   string
	Logger  string
	Message string
	Fields  []logging.Field
}

// Field returns the value of key, searching the entry's own fields and then
// those inherited through With.
func (e Entry) Field(key string) (interface{}, bool) {
	for i := len(e.Fields) - 1; i >= 0; i-- {
		if e.Fields[i].Key == key {
			return e.Fields[i].Value, true
		}
	}
	return nil, false
}

type sink struct {
	mu      sync.Mutex
	entries []Entry
}

// RecordingLogger implements logging.Logger and keeps every entry in memory.
// Children created with With or Named share the parent's buffer.
type RecordingLogger struct {
	sink   *sink
	name   string
	fields []logging.Field
}

var _ logging.Logger = (*RecordingLogger)(nil)

func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{sink: &sink{}}
}

func (r *RecordingLogger) log(level, msg string, fields []logging.Field) {
	all := make([]logging.Field, 0, len(r.fields)+len(fields))
	all = append(all, r.fields...)
	all = append(all, fields...)
	r.sink.mu.Lock()
	defer r.sink.mu.Unlock()
	r.sink.entries = append(r.sink.entries, Entry{Level: level, Logger: r.name, Message: msg, Fields: all})
}

func (r *RecordingLogger) Debug(msg string, fields ...logging.Field) { r.log("debug", msg, fields) }
func (r *RecordingLogger) Info(msg string, fields ...logging.Field)  { r.log("info", msg, fields) }
func (r *RecordingLogger) Warn(msg string, fields ...logging.Field)  { r.log("warn", msg, fields) }
func (r *RecordingLogger) Error(msg string, fields ...logging.Field) { r.log("error", msg, fields) }

// Fatal records at fatal level.  It does not exit.
func (r *RecordingLogger) Fatal(msg string, fields ...logging.Field) { r.log("fatal", msg, fields) }

func (r *RecordingLogger) With(fields ...logging.Field) logging.Logger {
	child := *r
	child.fields = append(append([]logging.Field{}, r.fields...), fields...)
	return &child
}

func (r *RecordingLogger) Named(name string) logging.Logger {
	child := *r
	if r.name == "" {
		child.name = name
	} else {
		child.name = r.name + "." + name
	}
	return &child
}

func (r *RecordingLogger) WithContext(context.Context) logging.Logger { return r }

// Entries returns a copy of everything logged so far.
func (r *RecordingLogger) Entries() []Entry {
	r.sink.mu.Lock()
	defer r.sink.mu.Unlock()
	out := make([]Entry, len(r.sink.entries))
	copy(out, r.sink.entries)
	return out
}

// Has reports whether msg was logged at level.
func (r *RecordingLogger) Has(level, msg string) bool {
	_, ok := r.Find(level, msg)
	return ok
}

// Find returns the first entry logged at level with message msg.
func (r *RecordingLogger) Find(level, msg string) (Entry, bool) {
	for _, e := range r.Entries() {
		if e.Level == level && e.Message == msg {
			return e, true
		}
	}
	return Entry{}, false
}

// Reset drops all captured entries.
func (r *RecordingLogger) Reset() {
	r.sink.mu.Lock()
	defer r.sink.mu.Unlock()
	r.sink.entries = nil
}

package transform

import (
	"encoding/json"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/collabmesh/collabmesh/core"
	"github.com/collabmesh/collabmesh/logging"
)

// DefaultWindowSize is the number of trailing log events inspected when
// adjusting an operation.
const DefaultWindowSize = 10

// Options configures an Engine.
type Options struct {
	// WindowSize bounds how far back in the session log the engine looks for
	// concurrent operations.
	WindowSize int

	// Logger receives debug records of applied adjustments. Defaults to NoOp.
	Logger logging.Logger
}

// Engine adjusts edit operations against a session's recent history and
// records the result as a new operation-kind event, making it visible to
// future transforms from other users. It never reorders or rewrites history.
type Engine struct {
	log    core.EventLog
	opts   Options
	logger logging.Logger
}

// New creates a transform engine reading from and appending to the given log.
func New(log core.EventLog, optFns ...func(o *Options)) *Engine {
	opts := Options{WindowSize: DefaultWindowSize, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Engine{log: log, opts: opts, logger: logger}
}

// WithWindowSize overrides the transform lookback window.
func WithWindowSize(n int) func(o *Options) {
	return func(o *Options) { o.WindowSize = n }
}

// WithLogger sets the logger used for adjustment records.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// Transform adjusts the operation payload against concurrent operations in
// the session's recent window, appends the adjusted operation to the log as
// an operation-kind event authored by userID, and returns that event.
//
// The caller is responsible for serializing Transform with other mutations of
// the same session so the window read and the append cannot interleave with
// concurrent appends.
func (e *Engine) Transform(sessionID, userID string, op json.RawMessage) core.Event {
	window := e.log.Recent(sessionID, e.opts.WindowSize)
	adjusted := Adjust(op, window, userID)
	ev := core.NewEvent(sessionID, userID, core.KindOperation, adjusted)
	e.log.Append(ev)
	e.logger.Debug("operation transformed",
		"session_id", sessionID,
		"user_id", userID,
		"event_id", ev.ID,
	)
	return ev
}

// Adjust computes the causally-adjusted form of an operation payload given a
// window of recently appended events. Only operation-kind events authored by
// a different user than userID participate. The input payload is opaque JSON;
// fields other than "position" are carried through untouched, so callers may
// attach arbitrary metadata to operations.
//
// Rules (applied against the operation's original position, shifts summed):
//   - a concurrent insert at a position <= the operation's position shifts it
//     forward by the inserted text's length (in runes)
//   - a concurrent delete at a position strictly less than the operation's
//     position shifts it backward by the deleted length
//   - the result is clamped at zero
//
// Delete operations keep their length unchanged; overlapping delete ranges
// are not split. Payloads that are not inserts or deletes are returned as-is.
// The function is deterministic: identical windows and input always produce
// identical output.
func Adjust(op json.RawMessage, window []core.Event, userID string) json.RawMessage {
	opType := gjson.GetBytes(op, "type").String()
	if opType != string(core.OpInsert) && opType != string(core.OpDelete) {
		return op
	}

	position := int(gjson.GetBytes(op, "position").Int())
	adjusted := position

	for _, ev := range window {
		if ev.Kind != core.KindOperation || ev.UserID == userID {
			continue
		}
		concType := gjson.GetBytes(ev.Payload, "type").String()
		concPos := int(gjson.GetBytes(ev.Payload, "position").Int())
		switch concType {
		case string(core.OpInsert):
			if concPos <= position {
				adjusted += utf8.RuneCountInString(gjson.GetBytes(ev.Payload, "text").String())
			}
		case string(core.OpDelete):
			if concPos < position {
				adjusted -= int(gjson.GetBytes(ev.Payload, "length").Int())
			}
		}
	}

	if adjusted < 0 {
		adjusted = 0
	}
	if adjusted == position {
		return op
	}

	out, err := sjson.SetBytes(op, "position", adjusted)
	if err != nil {
		// op carried a numeric position, so patching it back cannot fail.
		return op
	}
	return out
}

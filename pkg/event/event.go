// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package event defines the progress events every batch job emits.
package event

import (
	"fmt"
	"iter"
	"sync"

	"gitlab.com/tozd/go/errors"
)

// 📊 Kind classifies an event
type Kind int

const (
	KindSuccess Kind = iota
	KindWarning
	KindError
	KindEnd
)

// String returns a string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindWarning:
		return "warning"
	case KindError:
		return "error"
	case KindEnd:
		return "end"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case KindSuccess, KindWarning, KindError, KindEnd:
		return []byte(k.String()), nil
	default:
		return nil, errors.Errorf("invalid event kind %d", int(k))
	}
}

// ParseKind parses the textual form of a Kind
func ParseKind(s string) (Kind, error) {
	switch s {
	case "success":
		return KindSuccess, nil
	case "warning":
		return KindWarning, nil
	case "error":
		return KindError, nil
	case "end":
		return KindEnd, nil
	default:
		return 0, errors.Errorf("unknown event kind %q", s)
	}
}

// 📝 Event is a single progress message from a job
type Event struct {
	Kind    Kind
	Message string
	// Err carries the underlying cause for warning and error events
	Err error
}

// Success creates a success event
func Success(format string, args ...any) Event {
	return Event{Kind: KindSuccess, Message: fmt.Sprintf(format, args...)}
}

// Warning creates a warning event caused by err (which may be nil)
func Warning(err error, format string, args ...any) Event {
	return Event{Kind: KindWarning, Message: fmt.Sprintf(format, args...), Err: err}
}

// Error creates an error event caused by err
func Error(err error, format string, args ...any) Event {
	return Event{Kind: KindError, Message: fmt.Sprintf(format, args...), Err: err}
}

// End creates the terminal event of a stream
func End() Event {
	return Event{Kind: KindEnd}
}

// IsEnd reports whether e terminates its stream
func (e Event) IsEnd() bool {
	return e.Kind == KindEnd
}

func (e Event) String() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Message
}

// 🎯 Sink consumes events in the order they are produced
type Sink interface {
	Emit(e Event)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(e Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// 📦 Recorder is a Sink that keeps every event it receives
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Collect drains seq into a slice
func Collect(seq iter.Seq[Event]) []Event {
	var out []Event
	for e := range seq {
		out = append(out, e)
	}
	return out
}

// Drain forwards every event of seq to sink
func Drain(seq iter.Seq[Event], sink Sink) {
	for e := range seq {
		sink.Emit(e)
	}
}

// Count returns how many events in events have the given kind
func Count(events []Event, kind Kind) int {
	n := 0
	for _, e := range events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

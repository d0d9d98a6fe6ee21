package ai

import (
	"iter"
	"strings"
)

// ProduceFunc feeds fragments to yield until the response is exhausted, yield
// returns false, or a failure occurs. It owns the underlying connection and
// must release it before returning. The returned error is the typed failure
// behind any sentinel fragment the producer emitted, or nil.
type ProduceFunc func(yield func(string) bool) error

// TextStream is a lazy, single-pass, forward-only sequence of text fragments
// read from a streaming chat response. Nothing is sent to the backend until
// the first fragment is requested.
//
// Lifecycle: open (first pull) → produce fragments → close. The connection is
// released when the sequence is exhausted, when a range loop over Iter() is
// broken, or when Close is called. A TextStream must be used by a single
// goroutine.
type TextStream struct {
	produce ProduceFunc
	err     error
	used    bool
	closed  bool

	next    func() (string, bool)
	stop    func()
	onClose []func()
}

// NewTextStream wraps a producer in a TextStream.
func NewTextStream(produce ProduceFunc) *TextStream {
	return &TextStream{produce: produce}
}

// NewFragmentStream returns a TextStream over fixed fragments. Empty fragments
// are dropped, matching the guarantee of streams read from a backend.
func NewFragmentStream(fragments ...string) *TextStream {
	return NewTextStream(func(yield func(string) bool) error {
		for _, fragment := range fragments {
			if fragment == "" {
				continue
			}
			if !yield(fragment) {
				return nil
			}
		}
		return nil
	})
}

// Iter returns the fragment sequence for use with range-over-func loops.
// The sequence can be ranged over once; later calls yield nothing.
//
// Example:
//
//	for fragment := range stream.Iter() {
//	    fmt.Print(fragment)
//	}
func (s *TextStream) Iter() iter.Seq[string] {
	return func(yield func(string) bool) {
		if s.used || s.closed {
			return
		}
		s.used = true

		s.err = s.produce(func(fragment string) bool {
			if fragment == "" {
				return true
			}
			return yield(fragment)
		})
	}
}

// Next returns the next fragment, pulling from the backend as needed. The
// boolean is false once the stream is exhausted or closed.
func (s *TextStream) Next() (string, bool) {
	if s.closed {
		return "", false
	}
	if s.next == nil {
		s.next, s.stop = iter.Pull(s.Iter())
	}

	fragment, ok := s.next()
	if !ok {
		s.Close()
	}
	return fragment, ok
}

// OnClose registers release to run when Close is called. Release functions
// run after the producer has stopped, in registration order, and must be safe
// to call even when the producer already released the same resource; a stream
// closed before its first pull never runs the producer at all.
func (s *TextStream) OnClose(release func()) *TextStream {
	s.onClose = append(s.onClose, release)
	return s
}

// Close abandons the stream and releases the underlying connection. It is safe
// to call more than once and after the stream has been drained.
func (s *TextStream) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if s.stop != nil {
		s.stop()
	}
	for _, release := range s.onClose {
		release()
	}
}

// Collect drains the stream and returns all fragments concatenated in order.
// A stream already read partly with Next is drained from where it stopped.
func (s *TextStream) Collect() string {
	var builder strings.Builder
	if s.next != nil {
		for fragment, ok := s.Next(); ok; fragment, ok = s.Next() {
			builder.WriteString(fragment)
		}
		return builder.String()
	}

	for fragment := range s.Iter() {
		builder.WriteString(fragment)
	}
	return builder.String()
}

// Err returns the transport or protocol failure that ended the stream, if
// any. The same failure has already been surfaced in-band as a final
// fragment; Err lets callers branch on its type with errors.As. It is only
// meaningful once the stream has finished.
func (s *TextStream) Err() error {
	return s.err
}

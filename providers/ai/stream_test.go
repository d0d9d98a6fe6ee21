package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trackingProducer returns a producer over fragments that records whether it
// ran and whether its deferred cleanup executed.
func trackingProducer(fragments []string, failWith error, started, released *bool) ProduceFunc {
	return func(yield func(string) bool) error {
		*started = true
		defer func() { *released = true }()

		for _, fragment := range fragments {
			if !yield(fragment) {
				return nil
			}
		}
		return failWith
	}
}

// ========== Iter ==========

func TestTextStream_Iter_YieldsInOrderAndDropsEmpty(t *testing.T) {
	stream := NewFragmentStream("Hello", "", " ", "world", "")

	var got []string
	for fragment := range stream.Iter() {
		got = append(got, fragment)
	}

	assert.Equal(t, []string{"Hello", " ", "world"}, got)
	assert.NoError(t, stream.Err())
}

func TestTextStream_Iter_IsSinglePass(t *testing.T) {
	stream := NewFragmentStream("a", "b")

	assert.Equal(t, "ab", stream.Collect())
	assert.Equal(t, "", stream.Collect(), "second pass must not replay fragments")
}

func TestTextStream_Iter_BreakReleasesProducer(t *testing.T) {
	var started, released bool
	stream := NewTextStream(trackingProducer([]string{"one", "two", "three"}, nil, &started, &released))

	for fragment := range stream.Iter() {
		assert.Equal(t, "one", fragment)
		break
	}

	assert.True(t, started)
	assert.True(t, released, "breaking out of the loop must release the connection")
}

// ========== Next / Close ==========

func TestTextStream_Next_PullsLazily(t *testing.T) {
	var started, released bool
	stream := NewTextStream(trackingProducer([]string{"x", "y"}, nil, &started, &released))

	assert.False(t, started, "no work before the first pull")

	fragment, ok := stream.Next()
	require.True(t, ok)
	assert.Equal(t, "x", fragment)

	fragment, ok = stream.Next()
	require.True(t, ok)
	assert.Equal(t, "y", fragment)

	_, ok = stream.Next()
	assert.False(t, ok)
	assert.True(t, released)
}

func TestTextStream_Close_BeforeFirstPullNeverStarts(t *testing.T) {
	var started, released bool
	stream := NewTextStream(trackingProducer([]string{"x"}, nil, &started, &released))

	stream.Close()
	stream.Close()

	_, ok := stream.Next()
	assert.False(t, ok)
	assert.Equal(t, "", stream.Collect())
	assert.False(t, started)
}

func TestTextStream_Close_MidStreamReleases(t *testing.T) {
	var started, released bool
	stream := NewTextStream(trackingProducer([]string{"x", "y", "z"}, nil, &started, &released))

	_, ok := stream.Next()
	require.True(t, ok)

	stream.Close()
	assert.True(t, released)

	_, ok = stream.Next()
	assert.False(t, ok)
}

func TestTextStream_OnClose_RunsWhenClosedBeforeFirstPull(t *testing.T) {
	var started, released bool
	var order []string
	stream := NewTextStream(trackingProducer([]string{"x"}, nil, &started, &released)).
		OnClose(func() { order = append(order, "first") }).
		OnClose(func() { order = append(order, "second") })

	stream.Close()
	stream.Close()

	assert.False(t, started)
	assert.Equal(t, []string{"first", "second"}, order, "release hooks run once, in order")
}

// ========== Collect ==========

func TestTextStream_Collect_AfterPartialNext(t *testing.T) {
	var started, released bool
	stream := NewTextStream(trackingProducer([]string{"a", "b", "c"}, nil, &started, &released))

	fragment, ok := stream.Next()
	require.True(t, ok)
	assert.Equal(t, "a", fragment)

	assert.Equal(t, "bc", stream.Collect())
	assert.True(t, released, "draining through Collect must finish the producer")

	_, ok = stream.Next()
	assert.False(t, ok)
}

// ========== Err ==========

func TestTextStream_Err_ReportsProducerFailure(t *testing.T) {
	failure := &TransportError{Op: "stream_chat", URL: "http://localhost", Err: errors.New("connection refused")}
	var started, released bool
	stream := NewTextStream(trackingProducer([]string{"partial"}, failure, &started, &released))

	assert.Equal(t, "partial", stream.Collect())

	err := stream.Err()
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
	assert.False(t, IsProtocolError(err))
}

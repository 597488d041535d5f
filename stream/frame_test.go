package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertexvis/stream-go/channel"
)

func depthFrame(seq uint64, correlationID string, depth []byte) *channel.Frame {
	f := &channel.Frame{
		SequenceNumber:     seq,
		FrameCorrelationID: correlationID,
		ImagePayload:       []byte{0xff},
	}
	if depth != nil {
		f.DepthBuffer = &channel.DepthBuffer{CorrelationID: correlationID, Payload: depth}
	}
	return f
}

func TestMergeFrameCarriesElidedDepthBuffer(t *testing.T) {
	prev := depthFrame(1, "corr-a", []byte{1, 2, 3})
	next := depthFrame(2, "corr-a", nil)

	merged, carried := mergeFrame(prev, next)
	require.NotNil(t, merged)
	assert.True(t, carried)
	assert.Equal(t, uint64(2), merged.SequenceNumber)
	require.NotNil(t, merged.DepthBuffer)
	assert.Equal(t, []byte{1, 2, 3}, merged.DepthBuffer.Payload)
}

func TestMergeFrameAcceptsNewDepthBuffer(t *testing.T) {
	prev := depthFrame(1, "corr-a", []byte{1})
	next := depthFrame(2, "corr-b", []byte{9})

	merged, carried := mergeFrame(prev, next)
	assert.False(t, carried)
	require.NotNil(t, merged.DepthBuffer)
	assert.Equal(t, []byte{9}, merged.DepthBuffer.Payload)
}

func TestMergeFrameDropsStaleDepthOnCorrelationChange(t *testing.T) {
	prev := depthFrame(1, "corr-a", []byte{1})
	next := &channel.Frame{
		SequenceNumber:     2,
		FrameCorrelationID: "corr-b",
		ImagePayload:       []byte{0xff},
		DepthBuffer:        &channel.DepthBuffer{CorrelationID: "corr-b"},
	}

	merged, carried := mergeFrame(prev, next)
	assert.False(t, carried)
	assert.Empty(t, merged.DepthBuffer.Payload)
}

func TestMergeFrameWithoutPrevious(t *testing.T) {
	next := depthFrame(1, "corr-a", nil)

	merged, carried := mergeFrame(nil, next)
	assert.False(t, carried)
	assert.Same(t, next, merged)
}

func TestMergeFrameNilNextKeepsPrevious(t *testing.T) {
	prev := depthFrame(1, "corr-a", []byte{1})

	merged, carried := mergeFrame(prev, nil)
	assert.False(t, carried)
	assert.Same(t, prev, merged)
}

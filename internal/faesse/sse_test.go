package faesse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseField(t *testing.T) {
	f, v, ok := parseField("data: hello")
	require.True(t, ok)
	assert.Equal(t, "data", f)
	assert.Equal(t, "hello", v)

	f, v, ok = parseField("data:hello")
	require.True(t, ok)
	assert.Equal(t, "data", f)
	assert.Equal(t, "hello", v)

	f, v, ok = parseField("data:")
	require.True(t, ok)
	assert.Equal(t, "", v)
	_ = f

	f, v, ok = parseField(`data: {"key":"value"}`)
	require.True(t, ok)
	assert.Equal(t, `{"key":"value"}`, v)

	_, _, ok = parseField("nodatahere")
	assert.False(t, ok)
}

func TestEventIsDone(t *testing.T) {
	assert.True(t, Event{Data: "[DONE]"}.IsDone())
	assert.True(t, Event{Data: " [DONE] "}.IsDone())
	assert.False(t, Event{Data: `{"text":"hello"}`}.IsDone())
}

func TestParseSingleEvent(t *testing.T) {
	events := ParseText("data: hello\n\n")
	require.Len(t, events, 1)
	assert.Equal(t, "hello", events[0].Data)
	assert.Empty(t, events[0].EventType)
	assert.Empty(t, events[0].ID)
}

func TestParseMultipleEvents(t *testing.T) {
	events := ParseText("data: first\n\ndata: second\n\n")
	require.Len(t, events, 2)
	assert.Equal(t, "first", events[0].Data)
	assert.Equal(t, "second", events[1].Data)
}

func TestParseEventWithType(t *testing.T) {
	events := ParseText("event: message\ndata: hello\n\n")
	require.Len(t, events, 1)
	assert.Equal(t, "message", events[0].EventType)
	assert.Equal(t, "hello", events[0].Data)
}

func TestParseEventWithID(t *testing.T) {
	events := ParseText("id: 42\ndata: hello\n\n")
	require.Len(t, events, 1)
	assert.Equal(t, "42", events[0].ID)
}

func TestParseMultiLineData(t *testing.T) {
	events := ParseText("data: line1\ndata: line2\ndata: line3\n\n")
	require.Len(t, events, 1)
	assert.Equal(t, "line1\nline2\nline3", events[0].Data)
}

func TestParseCommentsIgnored(t *testing.T) {
	events := ParseText(": this is a comment\ndata: hello\n\n")
	require.Len(t, events, 1)
	assert.Equal(t, "hello", events[0].Data)
}

func TestParseDoneSentinel(t *testing.T) {
	events := ParseText(`data: {"text":"hello"}` + "\n\ndata: [DONE]\n\n")
	require.Len(t, events, 2)
	assert.False(t, events[0].IsDone())
	assert.True(t, events[1].IsDone())
}

func TestParseEmptyLinesBetweenEvents(t *testing.T) {
	events := ParseText("\n\ndata: hello\n\n\n\ndata: world\n\n")
	assert.Len(t, events, 2)
}

func TestParseEmptyInput(t *testing.T) {
	assert.Empty(t, ParseText(""))
}

func TestParseCommentsOnly(t *testing.T) {
	assert.Empty(t, ParseText(": comment1\n: comment2\n\n"))
}

func TestParseTrailingEventWithoutEmptyLine(t *testing.T) {
	events := ParseText("data: hello")
	require.Len(t, events, 1)
	assert.Equal(t, "hello", events[0].Data)
}

func TestParseUnknownFieldsIgnored(t *testing.T) {
	events := ParseText("retry: 5000\ndata: hello\n\n")
	require.Len(t, events, 1)
	assert.Equal(t, "hello", events[0].Data)
}

func TestIncrementalSingleChunk(t *testing.T) {
	p := NewLineParser()
	events := p.Push([]byte("data: hello\n\n"))
	require.Len(t, events, 1)
	assert.Equal(t, "hello", events[0].Data)
}

func TestIncrementalInvalidUTF8ReplacedWithReplacementChar(t *testing.T) {
	p := NewLineParser()
	chunk := append([]byte("data: bad"), 0xFF, 0xFE)
	chunk = append(chunk, []byte("byte\n\n")...)
	events := p.Push(chunk)
	require.Len(t, events, 1)
	assert.Equal(t, "bad��byte", events[0].Data)
}

func TestIncrementalSplitAcrossChunks(t *testing.T) {
	p := NewLineParser()
	events1 := p.Push([]byte("data: hel"))
	assert.Empty(t, events1)

	events2 := p.Push([]byte("lo\n\n"))
	require.Len(t, events2, 1)
	assert.Equal(t, "hello", events2[0].Data)
}

func TestIncrementalMultipleEventsAcrossChunks(t *testing.T) {
	p := NewLineParser()
	events1 := p.Push([]byte("data: first\n\ndata: sec"))
	require.Len(t, events1, 1)
	assert.Equal(t, "first", events1[0].Data)

	events2 := p.Push([]byte("ond\n\n"))
	require.Len(t, events2, 1)
	assert.Equal(t, "second", events2[0].Data)
}

func TestIncrementalFlushTrailingEvent(t *testing.T) {
	p := NewLineParser()
	events := p.Push([]byte("data: trailing"))
	assert.Empty(t, events)

	flushed, ok := p.Flush()
	require.True(t, ok)
	assert.Equal(t, "trailing", flushed.Data)
}

func TestIncrementalFlushEmpty(t *testing.T) {
	p := NewLineParser()
	_, ok := p.Flush()
	assert.False(t, ok)
}

func TestIncrementalCRLFHandling(t *testing.T) {
	p := NewLineParser()
	events := p.Push([]byte("data: hello\r\n\r\n"))
	require.Len(t, events, 1)
	assert.Equal(t, "hello", events[0].Data)
}

func TestIncrementalEventTypePreserved(t *testing.T) {
	p := NewLineParser()
	events := p.Push([]byte("event: delta\ndata: content\n\n"))
	require.Len(t, events, 1)
	assert.Equal(t, "delta", events[0].EventType)
	assert.Equal(t, "content", events[0].Data)
}

func TestIncrementalDoneSentinel(t *testing.T) {
	p := NewLineParser()
	events := p.Push([]byte("data: [DONE]\n\n"))
	require.Len(t, events, 1)
	assert.True(t, events[0].IsDone())
}

// Chunking must not affect the result: parse_sse_text(concat(chunks))
// equals the concatenation of push(chunks[i]) outputs for any chunking.
func TestRoundTripChunkingInvariance(t *testing.T) {
	full := "event: a\ndata: one\n\ndata: two\nevent: b\n\ndata: [DONE]\n\n"
	whole := ParseText(full)

	chunkSizes := []int{1, 3, 7, 50}
	for _, size := range chunkSizes {
		p := NewLineParser()
		var got []Event
		for i := 0; i < len(full); i += size {
			end := i + size
			if end > len(full) {
				end = len(full)
			}
			got = append(got, p.Push([]byte(full[i:end]))...)
		}
		if flushed, ok := p.Flush(); ok {
			got = append(got, flushed)
		}
		require.Equal(t, whole, got, "chunk size %d", size)
	}
}

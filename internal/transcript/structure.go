package transcript

import (
	"fmt"
	"math"
	"strings"
)

// Policy controls how consecutive segments are grouped into blocks.
type Policy struct {
	// GapThreshold starts a new block when the silence between one segment's
	// end and the next segment's start is at least this many seconds.
	// The boundary rule is "gap >= threshold splits". Zero disables
	// gap-based splitting.
	GapThreshold float64

	// MaxBlockDuration splits a block before it would span more than this
	// many seconds of audio. Zero disables the limit.
	MaxBlockDuration float64

	// BreakOnSpeaker starts a new block whenever the speaker label changes.
	BreakOnSpeaker bool

	// TimestampEvery injects an inline [h:mm:ss] marker into the rendered
	// block text each time the audio crosses a multiple of this many
	// seconds. Zero disables markers.
	TimestampEvery float64
}

// DefaultPolicy matches the behavior of the transcript formatter this tool
// grew out of: five-second pauses break blocks, markers every minute.
func DefaultPolicy() Policy {
	return Policy{
		GapThreshold:   5.0,
		BreakOnSpeaker: true,
		TimestampEvery: 60.0,
	}
}

// Block is one structured note destined for the planner document. It groups
// consecutive segments and records the timestamp anchor used to deep-link
// back into the archived audio.
type Block struct {
	// Key is the stable identifier used for duplicate detection across runs:
	// "<recording name>#<index>".
	Key string

	// Index is the zero-based position of the block within the recording.
	Index int

	// Anchor is the first segment's start offset in seconds.
	Anchor float64

	// End is the last segment's end offset in seconds.
	End float64

	// Speaker is the block's speaker label, if the service provided one.
	Speaker string

	// Text is the rendered block content: segment texts joined by single
	// spaces, with inline timestamp markers per the policy.
	Text string

	// Segments are the raw segments the block was built from, unmodified.
	Segments []Segment
}

// BlockKey builds the stable duplicate-detection identifier for a block.
func BlockKey(recording string, index int) string {
	return fmt.Sprintf("%s#%d", recording, index)
}

// Group converts an ordered segment sequence into an ordered block sequence.
// It is a pure, deterministic transformation: no segment is lost, duplicated,
// or reordered, and an empty input yields an empty output.
func Group(recording string, segments []Segment, p Policy) []Block {
	if len(segments) == 0 {
		return nil
	}

	var blocks []Block
	start := 0
	for i := 1; i <= len(segments); i++ {
		if i < len(segments) && !splitBefore(segments, start, i, p) {
			continue
		}
		blocks = append(blocks, buildBlock(recording, len(blocks), segments[start:i], p))
		start = i
	}
	return blocks
}

// splitBefore decides whether segment i opens a new block given the current
// block started at index start.
func splitBefore(segments []Segment, start, i int, p Policy) bool {
	prev, cur := segments[i-1], segments[i]

	if p.GapThreshold > 0 && cur.Start-prev.End >= p.GapThreshold {
		return true
	}
	if p.BreakOnSpeaker && cur.Speaker != prev.Speaker {
		return true
	}
	if p.MaxBlockDuration > 0 && cur.End-segments[start].Start > p.MaxBlockDuration {
		return true
	}
	return false
}

// buildBlock renders one block from a run of segments.
func buildBlock(recording string, index int, segments []Segment, p Policy) Block {
	var sb strings.Builder
	nextMarker := math.Inf(1)
	if p.TimestampEvery > 0 {
		// First marker strictly after the block anchor, so a block never
		// opens with a marker.
		nextMarker = (math.Floor(segments[0].Start/p.TimestampEvery) + 1) * p.TimestampEvery
	}

	for _, s := range segments {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		if s.Start >= nextMarker {
			sb.WriteString(FormatOffset(s.Start))
			sb.WriteByte(' ')
			nextMarker = (math.Floor(s.Start/p.TimestampEvery) + 1) * p.TimestampEvery
		}
		sb.WriteString(s.Text)
	}

	// Copy the run so callers can't alias the input slice.
	segs := make([]Segment, len(segments))
	copy(segs, segments)

	return Block{
		Key:      BlockKey(recording, index),
		Index:    index,
		Anchor:   segments[0].Start,
		End:      segments[len(segments)-1].End,
		Speaker:  segments[0].Speaker,
		Text:     sb.String(),
		Segments: segs,
	}
}

// FormatOffset renders a second offset as an inline [h:mm:ss] marker.
// Fractional seconds are floored, matching how the audio player seek
// parameter is built.
func FormatOffset(seconds float64) string {
	total := int(math.Floor(seconds))
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("[%d:%02d:%02d]", h, m, s)
}

// ConcatText joins the raw segment texts of a block sequence with single
// spaces, in order. Used to verify that structuring preserves the full
// transcript.
func ConcatText(blocks []Block) string {
	var parts []string
	for _, b := range blocks {
		for _, s := range b.Segments {
			parts = append(parts, s.Text)
		}
	}
	return strings.Join(parts, " ")
}

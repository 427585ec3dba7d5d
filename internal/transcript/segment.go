package transcript

import (
	"encoding/json"
	"fmt"

	"vnotes/internal/errors"
)

// Segment is one timed unit of recognized speech returned by the
// transcription service. Segments are immutable once parsed and are kept in
// chronological order.
type Segment struct {
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence,omitempty"`
	Speaker    string  `json:"speaker,omitempty"`
}

// Transcript is the parsed result document of a finished transcription job.
type Transcript struct {
	Language string    `json:"language"`
	Duration float64   `json:"duration"`
	Segments []Segment `json:"segments"`
}

// ParseResult decodes and validates a raw result document. Segment order is
// taken as chronological; a document whose timings are inconsistent is
// rejected rather than silently reordered.
func ParseResult(data []byte) (*Transcript, error) {
	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("parse transcript: %w", err))
	}

	prevEnd := 0.0
	for i, s := range t.Segments {
		if s.Start < 0 || s.End < s.Start {
			return nil, errors.NewInternal(
				fmt.Errorf("transcript segment %d has invalid timing [%g, %g]", i, s.Start, s.End))
		}
		if s.Start < prevEnd {
			return nil, errors.NewInternal(
				fmt.Errorf("transcript segment %d starts before segment %d ends", i, i-1))
		}
		prevEnd = s.End
	}

	// Some services omit the total duration; fall back to the last offset.
	if t.Duration == 0 && len(t.Segments) > 0 {
		t.Duration = t.Segments[len(t.Segments)-1].End
	}

	return &t, nil
}

// Empty reports whether the service recognized no speech at all.
func (t *Transcript) Empty() bool {
	for _, s := range t.Segments {
		if s.Text != "" {
			return false
		}
	}
	return true
}

package note

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"vnotes/internal/errors"
)

// Status enumerates the pipeline stages a voice note moves through.
// Values are spaced so intermediate stages can be added without renumbering.
type Status int

const (
	StatusIngress     Status = 0  // waiting in the ingress directory
	StatusArchived    Status = 10 // moved into the local archive
	StatusUploaded    Status = 20 // stored in the object storage bucket
	StatusTranscribed Status = 30 // transcription job finished, raw transcript attached
	StatusSynced      Status = 40 // structured blocks written to the planner page
	StatusEvicted     Status = 50 // no speech detected, removed from the pipeline
)

// String returns the lowercase stage name used in CLI output and the DB.
func (s Status) String() string {
	switch s {
	case StatusIngress:
		return "ingress"
	case StatusArchived:
		return "archived"
	case StatusUploaded:
		return "uploaded"
	case StatusTranscribed:
		return "transcribed"
	case StatusSynced:
		return "synced"
	case StatusEvicted:
		return "evicted"
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// VoiceNote tracks a single recording through the pipeline.
type VoiceNote struct {
	// Name is the original filename, e.g. "240115_groceries.mp3".
	// It doubles as the DB key and the object storage key suffix.
	Name string

	// Path is the current location of the audio file on disk.
	Path string

	// Status is the last completed pipeline stage.
	Status Status

	// ObjectKey is the object storage key once uploaded (empty before).
	ObjectKey string

	// JobName is the transcription job identifier once submitted (empty before).
	JobName string

	// TranscriptJSON holds the raw transcript document returned by the
	// transcription service. Stored verbatim so a note can be re-structured
	// without re-running the job.
	TranscriptJSON string

	// CreatedAt and UpdatedAt are Unix timestamps maintained by the store.
	CreatedAt int64
	UpdatedAt int64
}

// Date derives the recording date from the filename prefix.
// Filenames follow the "YYMMDD_title.mp3" convention; the time of day is
// pinned to noon so timezone arithmetic never shifts the day.
func (n *VoiceNote) Date() (time.Time, error) {
	prefix, _, ok := strings.Cut(n.Name, "_")
	if !ok || len(prefix) != 6 {
		return time.Time{}, errors.NewInvalidRequest(
			fmt.Sprintf("filename %q does not start with a YYMMDD_ date prefix", n.Name))
	}

	yy, err1 := strconv.Atoi(prefix[:2])
	mm, err2 := strconv.Atoi(prefix[2:4])
	dd, err3 := strconv.Atoi(prefix[4:6])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, errors.NewInvalidRequest(
			fmt.Sprintf("filename %q has a non-numeric date prefix", n.Name))
	}
	if mm < 1 || mm > 12 || dd < 1 || dd > 31 {
		return time.Time{}, errors.NewInvalidRequest(
			fmt.Sprintf("filename %q encodes an impossible date", n.Name))
	}

	return time.Date(2000+yy, time.Month(mm), dd, 12, 0, 0, 0, time.UTC), nil
}

// HasTranscript reports whether a raw transcript is attached.
func (n *VoiceNote) HasTranscript() bool {
	return n.TranscriptJSON != ""
}

package ops

import (
	"context"

	"vnotes/internal/db"
	"vnotes/internal/errors"
	"vnotes/internal/note"
)

// RemoveInput identifies the note to stop tracking.
type RemoveInput struct {
	File string
}

// RemoveOutput confirms the removal.
type RemoveOutput struct {
	File    string `json:"file"`
	Removed bool   `json:"removed"`
}

// Remove drops a note's tracking row. The archived audio and any journal
// blocks already synced are left in place.
func Remove(_ context.Context, s *Services, input RemoveInput) (*RemoveOutput, error) {
	if input.File == "" {
		return nil, errors.NewInvalidRequest("file is required")
	}
	if err := db.Delete(s.DB, input.File); err != nil {
		return nil, err
	}
	return &RemoveOutput{File: input.File, Removed: true}, nil
}

// ResetInput identifies the note to roll back.
type ResetInput struct {
	File string
}

// ResetOutput reports the stage the note was rolled back to.
type ResetOutput struct {
	File   string `json:"file"`
	Status string `json:"status"`
}

// Reset discards a note's transcript and job so the next run transcribes
// it again. Only notes that made it past upload can be reset.
func Reset(_ context.Context, s *Services, input ResetInput) (*ResetOutput, error) {
	if input.File == "" {
		return nil, errors.NewInvalidRequest("file is required")
	}
	n, err := db.Get(s.DB, input.File)
	if err != nil {
		return nil, err
	}
	if n.Status < note.StatusUploaded {
		return nil, errors.NewInvalidRequest("note has not been uploaded yet: " + n.Name)
	}

	n.JobName = ""
	n.TranscriptJSON = ""
	n.Status = note.StatusUploaded
	if err := db.Save(s.DB, n); err != nil {
		return nil, err
	}
	return &ResetOutput{File: n.Name, Status: n.Status.String()}, nil
}

// AttachInput binds an externally created transcription job to a note.
type AttachInput struct {
	File    string
	JobName string
}

// AttachOutput reports the attach result.
type AttachOutput struct {
	File    string `json:"file"`
	JobName string `json:"job_name"`
	Status  string `json:"status"`
}

// Attach adopts a transcription job that was started outside the pipeline,
// waits for it, and stores its transcript on the note.
func Attach(ctx context.Context, s *Services, input AttachInput) (*AttachOutput, error) {
	if input.File == "" || input.JobName == "" {
		return nil, errors.NewInvalidRequest("file and job name are required")
	}
	n, err := db.Get(s.DB, input.File)
	if err != nil {
		return nil, err
	}
	if n.Status < note.StatusUploaded {
		return nil, errors.NewInvalidRequest("note has not been uploaded yet: " + n.Name)
	}

	t, err := s.Transcriber.Await(ctx, input.JobName)
	if err != nil {
		return nil, err
	}
	n.JobName = input.JobName
	if err := storeTranscript(s, n, t); err != nil {
		return nil, err
	}
	return &AttachOutput{File: n.Name, JobName: n.JobName, Status: n.Status.String()}, nil
}

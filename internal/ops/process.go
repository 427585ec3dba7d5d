package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"vnotes/internal/db"
	"vnotes/internal/errors"
	"vnotes/internal/note"
	"vnotes/internal/planner"
	"vnotes/internal/transcript"
)

// ProcessInput identifies the note to run through the pipeline.
type ProcessInput struct {
	// File is the note filename (base name, not a path).
	File string
}

// ProcessOutput reports how far the pipeline advanced.
type ProcessOutput struct {
	File    string `json:"file"`
	Status  string `json:"status"`
	JobName string `json:"job_name,omitempty"`
	Evicted bool   `json:"evicted,omitempty"`
	PageID  string `json:"page_id,omitempty"`
	Blocks  int    `json:"blocks,omitempty"`
	Created int    `json:"created,omitempty"`
	Updated int    `json:"updated,omitempty"`
}

// Process advances one note through every remaining pipeline stage:
// archive, upload, transcribe, sync. Each stage transition is persisted
// before the next stage starts, so an interrupted run resumes where it
// stopped. Notes already synced or evicted are left alone.
func Process(ctx context.Context, s *Services, input ProcessInput) (*ProcessOutput, error) {
	if input.File == "" {
		return nil, errors.NewInvalidRequest("file is required")
	}
	name := filepath.Base(input.File)

	n, err := db.Get(s.DB, name)
	if errors.Is(err, errors.ErrNotFound) {
		n, err = adopt(s, name)
	}
	if err != nil {
		return nil, err
	}

	out := &ProcessOutput{File: n.Name}

	if n.Status == note.StatusIngress {
		if err := archive(s, n); err != nil {
			return nil, err
		}
	}
	if n.Status == note.StatusArchived {
		if err := upload(ctx, s, n); err != nil {
			return nil, err
		}
	}
	if n.Status == note.StatusUploaded {
		if err := transcribeNote(ctx, s, n); err != nil {
			return nil, err
		}
	}
	if n.Status == note.StatusEvicted {
		out.Evicted = true
	}
	if n.Status == note.StatusTranscribed {
		result, blocks, err := syncNote(ctx, s, n)
		if err != nil {
			return nil, err
		}
		out.PageID = result.PageID
		out.Blocks = blocks
		out.Created = result.Created
		out.Updated = result.Updated
	}

	out.Status = n.Status.String()
	out.JobName = n.JobName
	return out, nil
}

// adopt starts tracking a file sitting in the ingress directory.
func adopt(s *Services, name string) (*note.VoiceNote, error) {
	path := filepath.Join(s.Cfg.IngressDir, name)
	if _, err := os.Stat(path); err != nil {
		return nil, errors.NewNotFound(name)
	}
	n := &note.VoiceNote{Name: name, Path: path, Status: note.StatusIngress}
	if _, err := n.Date(); err != nil {
		return nil, err
	}
	if err := db.Insert(s.DB, n); err != nil {
		return nil, err
	}
	s.logf("tracking %s", name)
	return n, nil
}

// archive moves the audio file out of the ingress directory into the
// archive. If an archived copy already exists the ingress duplicate is
// dropped.
func archive(s *Services, n *note.VoiceNote) error {
	dest := filepath.Join(s.Cfg.ArchiveDir, n.Name)
	if _, err := os.Stat(dest); err == nil {
		s.logf("%s already archived, removing ingress copy", n.Name)
		if err := os.Remove(n.Path); err != nil && !os.IsNotExist(err) {
			return errors.NewInternal(err)
		}
	} else if err := os.Rename(n.Path, dest); err != nil {
		return errors.NewInternal(err)
	}
	n.Path = dest
	n.Status = note.StatusArchived
	return db.Save(s.DB, n)
}

// upload sends the archived audio to object storage under the note's
// filename. A failed attempt is retried once with a fresh reader.
func upload(ctx context.Context, s *Services, n *note.VoiceNote) error {
	key := n.Name
	if err := uploadFile(ctx, s, key, n.Path); err != nil {
		s.logf("upload of %s failed, retrying: %v", key, err)
		if err := uploadFile(ctx, s, key, n.Path); err != nil {
			return err
		}
	}
	s.logf("uploaded %s", key)
	n.ObjectKey = key
	n.Status = note.StatusUploaded
	return db.Save(s.DB, n)
}

func uploadFile(ctx context.Context, s *Services, key, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.NewUpload(key, err)
	}
	defer f.Close()
	return s.Uploader.Upload(ctx, key, f)
}

// transcribeNote submits the uploaded audio for transcription, waits for
// the job, and stores the transcript. The job name is persisted before
// polling starts so a later run (or note attach) can pick the job back up.
// An empty transcript evicts the note from the pipeline.
func transcribeNote(ctx context.Context, s *Services, n *note.VoiceNote) error {
	if n.JobName == "" {
		jobName, err := s.Transcriber.Submit(ctx, mediaURI(s, n.ObjectKey))
		if err != nil {
			return err
		}
		n.JobName = jobName
		if err := db.Save(s.DB, n); err != nil {
			return err
		}
		s.logf("submitted job %s for %s", jobName, n.Name)
	}

	t, err := s.Transcriber.Await(ctx, n.JobName)
	if err != nil {
		return err
	}
	return storeTranscript(s, n, t)
}

// storeTranscript persists a fetched transcript and moves the note to the
// transcribed stage, or evicts it when there is nothing to say.
func storeTranscript(s *Services, n *note.VoiceNote, t *transcript.Transcript) error {
	if t.Empty() {
		s.logf("%s produced an empty transcript, evicting", n.Name)
		n.Status = note.StatusEvicted
		return db.Save(s.DB, n)
	}
	data, err := json.Marshal(t)
	if err != nil {
		return errors.NewInternal(err)
	}
	n.TranscriptJSON = string(data)
	n.Status = note.StatusTranscribed
	return db.Save(s.DB, n)
}

// syncNote structures the stored transcript and upserts the result into
// the note's daily journal page.
func syncNote(ctx context.Context, s *Services, n *note.VoiceNote) (*planner.SyncResult, int, error) {
	date, err := n.Date()
	if err != nil {
		return nil, 0, err
	}
	t, err := transcript.ParseResult([]byte(n.TranscriptJSON))
	if err != nil {
		return nil, 0, err
	}
	blocks := transcript.Group(n.Name, t.Segments, s.policy())

	result, err := planner.Sync(ctx, s.Planner, planner.SyncInput{
		Recording:       n.Name,
		ObjectKey:       n.ObjectKey,
		AudioLinkPrefix: s.Cfg.AudioLinkPrefix,
		Date:            date,
		Blocks:          blocks,
	})
	if err != nil {
		return nil, 0, err
	}
	s.logf("synced %s: %d created, %d updated", n.Name, result.Created, result.Updated)

	n.Status = note.StatusSynced
	if err := db.Save(s.DB, n); err != nil {
		return nil, 0, err
	}
	return result, len(blocks), nil
}

// mediaURI addresses the uploaded audio for the transcription service.
func mediaURI(s *Services, key string) string {
	return fmt.Sprintf("%s/%s/%s", s.Cfg.StorageURL, s.Cfg.StorageBucket, key)
}

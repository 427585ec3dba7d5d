package ops

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vnotes/internal/db"
	"vnotes/internal/errors"
	"vnotes/internal/note"
)

// syncedNote runs a note all the way through the pipeline.
func syncedNote(t *testing.T, s *Services, tr *fakeTranscriber, name string) {
	t.Helper()
	writeIngress(t, s, name)
	tr.next = groceriesTranscript()
	_, err := Process(context.Background(), s, ProcessInput{File: name})
	require.NoError(t, err)
}

func TestRemove(t *testing.T) {
	s, _, tr, _ := testServices(t)
	syncedNote(t, s, tr, "240115_a.mp3")

	out, err := Remove(context.Background(), s, RemoveInput{File: "240115_a.mp3"})
	require.NoError(t, err)
	require.True(t, out.Removed)

	_, err = db.Get(s.DB, "240115_a.mp3")
	require.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = Remove(context.Background(), s, RemoveInput{File: "240115_a.mp3"})
	require.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestResetRollsBackToUploaded(t *testing.T) {
	s, _, tr, _ := testServices(t)
	syncedNote(t, s, tr, "240115_a.mp3")

	out, err := Reset(context.Background(), s, ResetInput{File: "240115_a.mp3"})
	require.NoError(t, err)
	require.Equal(t, "uploaded", out.Status)

	n, err := db.Get(s.DB, "240115_a.mp3")
	require.NoError(t, err)
	require.Equal(t, note.StatusUploaded, n.Status)
	require.Empty(t, n.JobName)
	require.False(t, n.HasTranscript())

	// The next run re-transcribes and re-syncs without a second upload.
	up := s.Uploader.(*fakeUploader)
	res, err := Process(context.Background(), s, ProcessInput{File: "240115_a.mp3"})
	require.NoError(t, err)
	require.Equal(t, "synced", res.Status)
	require.Equal(t, "job-2", res.JobName)
	require.Len(t, up.keys, 1)
	require.Equal(t, 0, res.Created)
	require.Equal(t, 2, res.Updated)
}

func TestResetRequiresUpload(t *testing.T) {
	s, _, _, _ := testServices(t)
	writeIngress(t, s, "240115_a.mp3")
	n := &note.VoiceNote{Name: "240115_a.mp3", Status: note.StatusIngress}
	require.NoError(t, db.Insert(s.DB, n))

	_, err := Reset(context.Background(), s, ResetInput{File: "240115_a.mp3"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestAttachAdoptsExternalJob(t *testing.T) {
	s, _, tr, _ := testServices(t)
	n := &note.VoiceNote{
		Name:      "240115_a.mp3",
		Status:    note.StatusUploaded,
		ObjectKey: "240115_a.mp3",
	}
	require.NoError(t, db.Insert(s.DB, n))
	tr.jobs["job-manual"] = groceriesTranscript()

	out, err := Attach(context.Background(), s, AttachInput{
		File:    "240115_a.mp3",
		JobName: "job-manual",
	})
	require.NoError(t, err)
	require.Equal(t, "transcribed", out.Status)
	require.Equal(t, "job-manual", out.JobName)

	got, err := db.Get(s.DB, "240115_a.mp3")
	require.NoError(t, err)
	require.Equal(t, note.StatusTranscribed, got.Status)
	require.True(t, got.HasTranscript())
}

func TestAttachUnknownJob(t *testing.T) {
	s, _, _, _ := testServices(t)
	n := &note.VoiceNote{Name: "240115_a.mp3", Status: note.StatusUploaded}
	require.NoError(t, db.Insert(s.DB, n))

	_, err := Attach(context.Background(), s, AttachInput{
		File:    "240115_a.mp3",
		JobName: "job-missing",
	})
	require.True(t, errors.Is(err, errors.ErrTranscription))
}

func TestStatusCountsAndPending(t *testing.T) {
	s, _, tr, _ := testServices(t)
	syncedNote(t, s, tr, "240115_done.mp3")

	waiting := &note.VoiceNote{Name: "240116_waiting.mp3", Status: note.StatusUploaded}
	require.NoError(t, db.Insert(s.DB, waiting))
	evicted := &note.VoiceNote{Name: "240117_quiet.mp3", Status: note.StatusEvicted}
	require.NoError(t, db.Insert(s.DB, evicted))

	out, err := Status(context.Background(), s)
	require.NoError(t, err)
	require.Equal(t, 3, out.Total)
	require.Equal(t, 1, out.Counts["synced"])
	require.Equal(t, 1, out.Counts["uploaded"])
	require.Equal(t, 1, out.Counts["evicted"])
	require.Equal(t, []string{"240116_waiting.mp3"}, out.Pending)
}

func TestPlanCreatesDailyPage(t *testing.T) {
	s, _, _, pl := testServices(t)

	date := time.Date(2024, time.March, 9, 12, 0, 0, 0, time.UTC)
	out, err := Plan(context.Background(), s, PlanInput{Date: date})
	require.NoError(t, err)
	require.Equal(t, "Personal Journal 2024/3/9", out.Title)

	fp := pl.pageByTitle("Personal Journal 2024/3/9")
	require.NotNil(t, fp)
	require.Equal(t, fp.page.ID, out.PageID)
	require.Len(t, fp.children, 4)

	// Planning the same day again reuses the page.
	again, err := Plan(context.Background(), s, PlanInput{Date: date})
	require.NoError(t, err)
	require.Equal(t, out.PageID, again.PageID)
}

func TestShowFormats(t *testing.T) {
	s, _, tr, _ := testServices(t)
	syncedNote(t, s, tr, "240115_a.mp3")

	text, err := Show(context.Background(), s, ShowInput{File: "240115_a.mp3"})
	require.NoError(t, err)
	require.Equal(t, "text", text.Format)
	require.Contains(t, text.Content, "[0:00:00] Buy milk and eggs")
	require.Contains(t, text.Content, "[0:00:10] Call the dentist")

	md, err := Show(context.Background(), s, ShowInput{File: "240115_a.mp3", Format: "markdown"})
	require.NoError(t, err)
	require.Contains(t, md.Content, "# 240115_a.mp3")
	require.Contains(t, md.Content,
		"[[0:00:10]](https://audio.example.com/240115_a.mp3#t=10)")

	html, err := Show(context.Background(), s, ShowInput{File: "240115_a.mp3", Format: "html"})
	require.NoError(t, err)
	require.Contains(t, html.Content, "<h1")
	require.Contains(t, html.Content, `href="https://audio.example.com/240115_a.mp3#t=10"`)
}

func TestShowRequiresTranscript(t *testing.T) {
	s, _, _, _ := testServices(t)
	n := &note.VoiceNote{Name: "240115_a.mp3", Status: note.StatusUploaded}
	require.NoError(t, db.Insert(s.DB, n))

	_, err := Show(context.Background(), s, ShowInput{File: "240115_a.mp3"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = Show(context.Background(), s, ShowInput{File: "240199_never.mp3"})
	require.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestShowRejectsUnknownFormat(t *testing.T) {
	s, _, tr, _ := testServices(t)
	syncedNote(t, s, tr, "240115_a.mp3")

	_, err := Show(context.Background(), s, ShowInput{File: "240115_a.mp3", Format: "pdf"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

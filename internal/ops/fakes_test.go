package ops

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"vnotes/internal/config"
	"vnotes/internal/db"
	"vnotes/internal/errors"
	"vnotes/internal/planner"
	"vnotes/internal/transcript"
)

// testServices builds a Services over a throwaway database and directory
// tree, with fakes for every external system.
func testServices(t *testing.T) (*Services, *fakeUploader, *fakeTranscriber, *fakePlanner) {
	t.Helper()
	base := t.TempDir()

	dbh, err := db.Init(base)
	require.NoError(t, err)
	t.Cleanup(func() { dbh.Close() })

	cfg := &config.Config{
		BaseDir:         base,
		IngressDir:      base + "/ingress",
		ArchiveDir:      base + "/archive",
		AudioLinkPrefix: "https://audio.example.com",
		StorageBucket:   "voice-notes",
		StorageURL:      "https://storage.example.com",
		GapThreshold:    5.0,
		TimestampEvery:  60.0,
	}
	require.NoError(t, mkdirs(cfg.IngressDir, cfg.ArchiveDir))

	up := &fakeUploader{}
	tr := &fakeTranscriber{jobs: make(map[string]*transcript.Transcript)}
	pl := newFakePlanner()
	pl.addPage("Personal Journals by Month")

	s := &Services{DB: dbh, Cfg: cfg, Uploader: up, Transcriber: tr, Planner: pl}
	return s, up, tr, pl
}

func mkdirs(dirs ...string) error {
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// fakeUploader records uploads and can be told to fail the first attempts.
type fakeUploader struct {
	keys      []string
	failFirst int
}

func (f *fakeUploader) Upload(_ context.Context, key string, r io.Reader) error {
	if _, err := io.ReadAll(r); err != nil {
		return errors.NewUpload(key, err)
	}
	if f.failFirst > 0 {
		f.failFirst--
		return errors.NewUpload(key, fmt.Errorf("connection reset"))
	}
	f.keys = append(f.keys, key)
	return nil
}

// fakeTranscriber hands out sequential job names and canned transcripts.
type fakeTranscriber struct {
	jobs       map[string]*transcript.Transcript
	next       *transcript.Transcript
	submitErr  error
	awaitErr   error
	submits    []string
	awaits     []string
	jobCounter int
}

func (f *fakeTranscriber) Submit(_ context.Context, mediaURI string) (string, error) {
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.submits = append(f.submits, mediaURI)
	f.jobCounter++
	name := fmt.Sprintf("job-%d", f.jobCounter)
	f.jobs[name] = f.next
	return name, nil
}

func (f *fakeTranscriber) Await(_ context.Context, jobName string) (*transcript.Transcript, error) {
	if f.awaitErr != nil {
		return nil, f.awaitErr
	}
	f.awaits = append(f.awaits, jobName)
	t, ok := f.jobs[jobName]
	if !ok {
		return nil, errors.NewTranscription(jobName, "job does not exist")
	}
	return t, nil
}

// fakePlanner is an in-memory stand-in for the document service.
type fakePlanner struct {
	pages  map[string]*fakePage
	nextID int
}

type fakePage struct {
	page     planner.Page
	children []planner.Block
}

func newFakePlanner() *fakePlanner {
	return &fakePlanner{pages: make(map[string]*fakePage)}
}

func (f *fakePlanner) addPage(title string, children ...planner.Block) string {
	f.nextID++
	id := fmt.Sprintf("page-%d", f.nextID)

	p := planner.Page{ID: id}
	p.Properties.Title.Title = []planner.RichText{planner.PlainText(title)}

	stored := make([]planner.Block, len(children))
	for i, c := range children {
		f.nextID++
		c.ID = fmt.Sprintf("block-%d", f.nextID)
		stored[i] = c
	}
	f.pages[id] = &fakePage{page: p, children: stored}
	return id
}

func (f *fakePlanner) SearchPages(_ context.Context, query string) ([]planner.Page, error) {
	var results []planner.Page
	for _, fp := range f.pages {
		if strings.Contains(fp.page.PlainTitle(), query) {
			results = append(results, fp.page)
		}
	}
	return results, nil
}

func (f *fakePlanner) CreatePage(_ context.Context, parentID, title string, children []planner.Block) (*planner.Page, error) {
	if _, ok := f.pages[parentID]; !ok {
		return nil, errors.NewSync("parent page not found: " + parentID)
	}
	id := f.addPage(title, children...)
	page := f.pages[id].page
	return &page, nil
}

func (f *fakePlanner) ListChildren(_ context.Context, blockID string) ([]planner.Block, error) {
	fp, ok := f.pages[blockID]
	if !ok {
		return nil, errors.NewSync("page not found: " + blockID)
	}
	out := make([]planner.Block, len(fp.children))
	copy(out, fp.children)
	return out, nil
}

func (f *fakePlanner) AppendChildren(_ context.Context, blockID string, children []planner.Block) error {
	fp, ok := f.pages[blockID]
	if !ok {
		return errors.NewSync("page not found: " + blockID)
	}
	for _, c := range children {
		f.nextID++
		c.ID = fmt.Sprintf("block-%d", f.nextID)
		fp.children = append(fp.children, c)
	}
	return nil
}

func (f *fakePlanner) UpdateBlock(_ context.Context, blockID string, block planner.Block) error {
	for _, fp := range f.pages {
		for i := range fp.children {
			if fp.children[i].ID == blockID {
				block.ID = blockID
				fp.children[i] = block
				return nil
			}
		}
	}
	return errors.NewSync("block not found: " + blockID)
}

func (f *fakePlanner) pageByTitle(title string) *fakePage {
	for _, fp := range f.pages {
		if fp.page.PlainTitle() == title {
			return fp
		}
	}
	return nil
}

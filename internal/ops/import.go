package ops

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"vnotes/internal/db"
	"vnotes/internal/errors"
	"vnotes/internal/note"
)

// ImportOutput summarizes an import run.
type ImportOutput struct {
	// Discovered are the ingress files newly tracked this run.
	Discovered []string `json:"discovered"`
	// Synced are the notes that reached the synced stage this run.
	Synced []string `json:"synced"`
	// Evicted are the notes dropped for having an empty transcript.
	Evicted []string `json:"evicted"`
	// Failed maps note names to the error that stopped them. A failure
	// never aborts the run; the remaining notes are still processed.
	Failed map[string]string `json:"failed,omitempty"`
}

// ImportAll discovers new recordings in the ingress directory and drives
// every unfinished note through the pipeline. Notes are processed in
// filename order, which is chronological under the date-prefix naming.
func ImportAll(ctx context.Context, s *Services) (*ImportOutput, error) {
	discovered, err := discover(s)
	if err != nil {
		return nil, err
	}

	notes, err := db.List(s.DB)
	if err != nil {
		return nil, err
	}

	out := &ImportOutput{
		Discovered: discovered,
		Synced:     []string{},
		Evicted:    []string{},
	}
	for _, n := range notes {
		if n.Status == note.StatusSynced || n.Status == note.StatusEvicted {
			continue
		}
		res, err := Process(ctx, s, ProcessInput{File: n.Name})
		if err != nil {
			s.logf("processing %s failed: %v", n.Name, err)
			if out.Failed == nil {
				out.Failed = make(map[string]string)
			}
			out.Failed[n.Name] = err.Error()
			continue
		}
		if res.Evicted {
			out.Evicted = append(out.Evicted, n.Name)
		} else {
			out.Synced = append(out.Synced, n.Name)
		}
	}
	return out, nil
}

// discover tracks every .mp3 in the ingress directory that is not yet
// known. Files already tracked and archived are ingress leftovers; their
// duplicate copy is removed.
func discover(s *Services) ([]string, error) {
	entries, err := os.ReadDir(s.Cfg.IngressDir)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".mp3") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	discovered := []string{}
	for _, name := range names {
		existing, err := db.Get(s.DB, name)
		if err == nil {
			if existing.Status > note.StatusIngress {
				s.logf("%s already tracked, removing ingress copy", name)
				if err := os.Remove(filepath.Join(s.Cfg.IngressDir, name)); err != nil {
					return nil, errors.NewInternal(err)
				}
			}
			continue
		}
		if !errors.Is(err, errors.ErrNotFound) {
			return nil, err
		}

		n := &note.VoiceNote{
			Name:   name,
			Path:   filepath.Join(s.Cfg.IngressDir, name),
			Status: note.StatusIngress,
		}
		if _, err := n.Date(); err != nil {
			s.logf("skipping %s: %v", name, err)
			continue
		}
		if err := db.Insert(s.DB, n); err != nil {
			return nil, err
		}
		s.logf("tracking %s", name)
		discovered = append(discovered, name)
	}
	return discovered, nil
}

package ops

import (
	"context"

	"vnotes/internal/db"
	"vnotes/internal/note"
)

// StatusOutput summarizes the pipeline's tracked notes.
type StatusOutput struct {
	Total int `json:"total"`
	// Counts maps stage names to the number of notes sitting in them.
	Counts map[string]int `json:"counts"`
	// Pending lists notes that have not finished the pipeline, oldest first.
	Pending []string `json:"pending"`
}

// Status reports how many notes sit in each pipeline stage and which
// notes still have work left.
func Status(_ context.Context, s *Services) (*StatusOutput, error) {
	counts, err := db.CountByStatus(s.DB)
	if err != nil {
		return nil, err
	}

	out := &StatusOutput{
		Counts:  make(map[string]int, len(counts)),
		Pending: []string{},
	}
	for status, count := range counts {
		out.Counts[status.String()] = count
		out.Total += count
	}

	notes, err := db.List(s.DB)
	if err != nil {
		return nil, err
	}
	for _, n := range notes {
		if n.Status != note.StatusSynced && n.Status != note.StatusEvicted {
			out.Pending = append(out.Pending, n.Name)
		}
	}
	return out, nil
}

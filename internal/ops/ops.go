// Package ops implements the CLI operations. Each operation takes an Input
// struct, talks to the external services through the capability interfaces
// bundled in Services, and returns an Output struct for JSON rendering.
package ops

import (
	"database/sql"
	"log"

	"vnotes/internal/config"
	"vnotes/internal/planner"
	"vnotes/internal/storage"
	"vnotes/internal/transcribe"
	"vnotes/internal/transcript"
)

// Services bundles the capabilities the operations need. Entry points build
// it from real clients; tests inject fakes.
type Services struct {
	DB          *sql.DB
	Cfg         *config.Config
	Uploader    storage.Uploader
	Transcriber transcribe.Requester
	Planner     planner.API
	Log         *log.Logger
}

// logf logs a progress line if a logger is configured.
func (s *Services) logf(format string, args ...any) {
	if s.Log != nil {
		s.Log.Printf(format, args...)
	}
}

// policy derives the segment grouping policy from configuration.
func (s *Services) policy() transcript.Policy {
	p := transcript.DefaultPolicy()
	p.GapThreshold = s.Cfg.GapThreshold
	p.TimestampEvery = s.Cfg.TimestampEvery
	return p
}

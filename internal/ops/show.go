package ops

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"vnotes/internal/db"
	"vnotes/internal/errors"
	"vnotes/internal/storage"
	"vnotes/internal/transcript"
)

// ShowInput selects the note and rendering format.
type ShowInput struct {
	File string
	// Format is one of "text", "markdown", "html".
	Format string
}

// ShowOutput carries the rendered note.
type ShowOutput struct {
	File    string `json:"file"`
	Format  string `json:"format"`
	Content string `json:"content"`
}

// Show renders a note's structured transcript. The blocks are the same
// ones the synchronizer writes to the journal, so the output previews
// exactly what a sync would produce.
func Show(_ context.Context, s *Services, input ShowInput) (*ShowOutput, error) {
	if input.File == "" {
		return nil, errors.NewInvalidRequest("file is required")
	}
	if input.Format == "" {
		input.Format = "text"
	}

	n, err := db.Get(s.DB, input.File)
	if err != nil {
		return nil, err
	}
	if !n.HasTranscript() {
		return nil, errors.NewInvalidRequest("note has no transcript yet: " + n.Name)
	}

	t, err := transcript.ParseResult([]byte(n.TranscriptJSON))
	if err != nil {
		return nil, err
	}
	blocks := transcript.Group(n.Name, t.Segments, s.policy())

	var content string
	switch input.Format {
	case "text":
		content = renderText(blocks)
	case "markdown":
		content = renderMarkdown(s, n.Name, n.ObjectKey, blocks)
	case "html":
		md := renderMarkdown(s, n.Name, n.ObjectKey, blocks)
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(md), &buf); err != nil {
			return nil, errors.NewInternal(err)
		}
		content = buf.String()
	default:
		return nil, errors.NewInvalidRequest("unknown format: " + input.Format)
	}

	return &ShowOutput{File: n.Name, Format: input.Format, Content: content}, nil
}

// renderText writes one line per block, prefixed with its anchor offset.
func renderText(blocks []transcript.Block) string {
	var b strings.Builder
	for _, blk := range blocks {
		b.WriteString(transcript.FormatOffset(blk.Anchor))
		b.WriteByte(' ')
		if blk.Speaker != "" {
			b.WriteString(blk.Speaker)
			b.WriteString(": ")
		}
		b.WriteString(blk.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

// renderMarkdown writes a titled list, each block's anchor linking into
// the archived audio.
func renderMarkdown(s *Services, name, objectKey string, blocks []transcript.Block) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", name)
	for _, blk := range blocks {
		link := storage.AudioLink(s.Cfg.AudioLinkPrefix, objectKey, blk.Anchor)
		fmt.Fprintf(&b, "- [%s](%s)", transcript.FormatOffset(blk.Anchor), link)
		if blk.Speaker != "" {
			fmt.Fprintf(&b, " **%s:**", blk.Speaker)
		}
		fmt.Fprintf(&b, " %s\n", blk.Text)
	}
	return b.String()
}

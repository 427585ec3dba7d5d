package planner

import (
	"context"
	"strings"
	"time"

	"vnotes/internal/storage"
	"vnotes/internal/transcript"
)

// markerPrefix and markerSuffix delimit the stable block identifier embedded
// in every voice-note block. The marker is a code-styled span at the start
// of the paragraph, so repeated runs can recognize their own blocks.
const (
	markerPrefix = "[rec:"
	markerSuffix = "]"
)

// SyncInput carries one structured recording into the planner document.
type SyncInput struct {
	// Recording is the note filename; it seeds every block's marker key.
	Recording string
	// ObjectKey addresses the archived audio in object storage.
	ObjectKey string
	// AudioLinkPrefix is the configured URL prefix for audio deep links.
	AudioLinkPrefix string
	// Date selects the daily journal page.
	Date time.Time
	// Blocks is the structured note content, in order.
	Blocks []transcript.Block
}

// SyncResult reports what the synchronizer did.
type SyncResult struct {
	PageID  string `json:"page_id"`
	Created int    `json:"created"`
	Updated int    `json:"updated"`
}

// Sync upserts the recording's blocks into its daily journal page. Blocks
// are matched by their embedded marker key: matches are updated in place,
// the rest are appended. Running Sync twice with the same input leaves the
// page with the same block count as running it once.
func Sync(ctx context.Context, api API, in SyncInput) (*SyncResult, error) {
	pageID, err := EnsureDailyPage(ctx, api, in.Date)
	if err != nil {
		return nil, err
	}

	existing, err := api.ListChildren(ctx, pageID)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]string, len(existing))
	for _, b := range existing {
		if key := ExtractBlockKey(b); key != "" {
			byKey[key] = b.ID
		}
	}

	result := &SyncResult{PageID: pageID}
	var pending []Block
	for _, tb := range in.Blocks {
		rendered := renderNoteBlock(in, tb)
		if id, ok := byKey[tb.Key]; ok {
			if err := api.UpdateBlock(ctx, id, rendered); err != nil {
				return nil, err
			}
			result.Updated++
			continue
		}
		pending = append(pending, rendered)
	}

	if err := api.AppendChildren(ctx, pageID, pending); err != nil {
		return nil, err
	}
	result.Created = len(pending)

	return result, nil
}

// renderNoteBlock converts one structured note block into a document
// paragraph: marker, linked timestamp anchor, optional speaker label, text.
func renderNoteBlock(in SyncInput, tb transcript.Block) Block {
	link := storage.AudioLink(in.AudioLinkPrefix, in.ObjectKey, tb.Anchor)

	spans := []RichText{
		CodeText(markerPrefix + tb.Key + markerSuffix),
		PlainText(" "),
		LinkText(transcript.FormatOffset(tb.Anchor), link),
		PlainText(" "),
	}
	if tb.Speaker != "" {
		spans = append(spans, BoldText(tb.Speaker+": "))
	}
	spans = append(spans, PlainText(tb.Text))

	return NewParagraph(spans...)
}

// ExtractBlockKey returns the marker key of a voice-note block, or "" if the
// block was not written by this tool.
func ExtractBlockKey(b Block) string {
	spans := b.richText()
	if len(spans) == 0 {
		return ""
	}

	first := spans[0]
	if !first.Annotations.Code {
		return ""
	}
	text := first.PlainText
	if text == "" {
		text = first.Text.Content
	}
	if !strings.HasPrefix(text, markerPrefix) || !strings.HasSuffix(text, markerSuffix) {
		return ""
	}
	return text[len(markerPrefix) : len(text)-len(markerSuffix)]
}

package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"vnotes/internal/db"
	"vnotes/internal/errors"
	"vnotes/internal/note"
	"vnotes/internal/ops"
	"vnotes/internal/transcript"
)

// Handlers holds the dependencies the tool handlers need.
type Handlers struct {
	services *ops.Services
}

// NewHandlers creates a Handlers instance.
func NewHandlers(s *ops.Services) *Handlers {
	return &Handlers{services: s}
}

// FetchRequest represents the arguments for note_fetch.
type FetchRequest struct {
	File              string `json:"file"`
	IncludeTranscript bool   `json:"include_transcript,omitempty"`
}

// noteView is the wire shape of a tracked note.
type noteView struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	ObjectKey string `json:"object_key,omitempty"`
	JobName   string `json:"job_name,omitempty"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// blockView is the wire shape of one structured transcript block.
type blockView struct {
	Key     string  `json:"key"`
	Anchor  float64 `json:"anchor"`
	Speaker string  `json:"speaker,omitempty"`
	Text    string  `json:"text"`
}

func viewOf(n *note.VoiceNote) noteView {
	return noteView{
		Name:      n.Name,
		Status:    n.Status.String(),
		ObjectKey: n.ObjectKey,
		JobName:   n.JobName,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

// HandleList handles note_list.
func (h *Handlers) HandleList(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := db.List(h.services.DB)
	if err != nil {
		return errorResult(err), nil
	}

	views := make([]noteView, len(notes))
	for i, n := range notes {
		views[i] = viewOf(n)
	}
	return successResult(map[string]any{"notes": views})
}

// HandleFetch handles note_fetch.
func (h *Handlers) HandleFetch(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FetchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.File == "" {
		return errorResult(errors.NewInvalidRequest("file is required")), nil
	}

	n, err := db.Get(h.services.DB, input.File)
	if err != nil {
		return errorResult(err), nil
	}

	result := map[string]any{"note": viewOf(n)}
	if input.IncludeTranscript && n.HasTranscript() {
		t, err := transcript.ParseResult([]byte(n.TranscriptJSON))
		if err != nil {
			return errorResult(err), nil
		}
		policy := transcript.DefaultPolicy()
		policy.GapThreshold = h.services.Cfg.GapThreshold
		policy.TimestampEvery = h.services.Cfg.TimestampEvery

		blocks := transcript.Group(n.Name, t.Segments, policy)
		views := make([]blockView, len(blocks))
		for i, b := range blocks {
			views[i] = blockView{Key: b.Key, Anchor: b.Anchor, Speaker: b.Speaker, Text: b.Text}
		}
		result["blocks"] = views
	}
	return successResult(result)
}

// HandleStatus handles note_status.
func (h *Handlers) HandleStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := ops.Status(ctx, h.services)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// errorResult creates an MCP error result from any error.
// Internal error details are not exposed to avoid leaking paths or SQL.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if perr, ok := err.(*errors.PipelineError); ok {
		errorObj := map[string]any{
			"code":    perr.Code,
			"message": perr.Message,
		}
		if perr.Code != errors.ErrInternal && perr.Details != nil {
			errorObj["details"] = perr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}

package mcp

import "github.com/mark3labs/mcp-go/mcp"

var listToolDef = mcp.NewTool("note_list",
	mcp.WithDescription("List tracked voice notes with their pipeline stage, oldest first."),
)

var fetchToolDef = mcp.NewTool("note_fetch",
	mcp.WithDescription("Fetch one tracked voice note, optionally with its structured transcript blocks."),
	mcp.WithString("file",
		mcp.Required(),
		mcp.Description("Note filename, e.g. 240115_groceries.mp3"),
	),
	mcp.WithBoolean("include_transcript",
		mcp.Description("Include the structured transcript blocks if the note has been transcribed"),
	),
)

var statusToolDef = mcp.NewTool("note_status",
	mcp.WithDescription("Summarize the pipeline: per-stage counts and the notes with work left."),
)

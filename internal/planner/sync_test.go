package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"vnotes/internal/transcript"
)

func grocerySyncInput() SyncInput {
	segs := []transcript.Segment{
		{Text: "Buy milk", Start: 0.0, End: 1.2},
		{Text: "and eggs", Start: 1.3, End: 2.0},
		{Text: "Call mom", Start: 10.0, End: 11.5},
	}
	blocks := transcript.Group("240115_groceries.mp3", segs, transcript.Policy{GapThreshold: 5.0})

	return SyncInput{
		Recording:       "240115_groceries.mp3",
		ObjectKey:       "240115_groceries.mp3",
		AudioLinkPrefix: "https://cdn.example.com/audio/",
		Date:            testDate,
		Blocks:          blocks,
	}
}

func TestSync_AppendsToFreshPage(t *testing.T) {
	api := newFakeAPI()
	api.addPage("Personal Journals by Month")

	result, err := Sync(context.Background(), api, grocerySyncInput())
	require.NoError(t, err)
	require.Equal(t, 2, result.Created)
	require.Zero(t, result.Updated)

	daily := api.pageByTitle("Personal Journal 2024/1/15")
	require.NotNil(t, daily)
	// 4 template blocks + 2 note blocks.
	require.Len(t, daily.children, 6)

	first := daily.children[4]
	require.Equal(t, "240115_groceries.mp3#0", ExtractBlockKey(first))
	require.Contains(t, first.PlainContent(), "Buy milk and eggs")

	// Anchor links back into the archived audio with a seek offset.
	second := daily.children[5]
	link := second.Paragraph.RichText[2]
	require.Equal(t, "https://cdn.example.com/audio/240115_groceries.mp3#t=10", link.Href)
	require.Equal(t, "[0:00:10]", link.Text.Content)
}

func TestSync_SecondRunIsIdempotent(t *testing.T) {
	api := newFakeAPI()
	api.addPage("Personal Journals by Month")
	in := grocerySyncInput()

	first, err := Sync(context.Background(), api, in)
	require.NoError(t, err)
	require.Equal(t, 2, first.Created)

	daily := api.pageByTitle("Personal Journal 2024/1/15")
	countAfterFirst := len(daily.children)

	second, err := Sync(context.Background(), api, in)
	require.NoError(t, err)
	require.Zero(t, second.Created)
	require.Equal(t, 2, second.Updated)

	// The idempotency invariant: no duplicate blocks on re-run.
	require.Len(t, daily.children, countAfterFirst)
}

func TestSync_UpdatesChangedBlockInPlace(t *testing.T) {
	api := newFakeAPI()
	api.addPage("Personal Journals by Month")
	in := grocerySyncInput()

	_, err := Sync(context.Background(), api, in)
	require.NoError(t, err)

	// Restructure with different text for the second block.
	in.Blocks[1].Text = "Call mom about dinner"
	_, err = Sync(context.Background(), api, in)
	require.NoError(t, err)

	daily := api.pageByTitle("Personal Journal 2024/1/15")
	require.Len(t, daily.children, 6)
	require.Contains(t, daily.children[5].PlainContent(), "Call mom about dinner")
}

func TestSync_IgnoresForeignBlocks(t *testing.T) {
	// Hand-written page content without markers must never be matched or
	// touched.
	api := newFakeAPI()
	api.addPage("Personal Journal 2024/1/15",
		NewParagraph(PlainText("my own notes")),
		NewParagraph(CodeText("just code, not a marker")),
	)

	in := grocerySyncInput()
	result, err := Sync(context.Background(), api, in)
	require.NoError(t, err)
	require.Equal(t, 2, result.Created)
	require.Zero(t, api.updateCalls)

	daily := api.pageByTitle("Personal Journal 2024/1/15")
	require.Equal(t, "my own notes", daily.children[0].PlainContent())
}

func TestSync_EmptyBlockList(t *testing.T) {
	api := newFakeAPI()
	api.addPage("Personal Journals by Month")

	in := grocerySyncInput()
	in.Blocks = nil

	result, err := Sync(context.Background(), api, in)
	require.NoError(t, err)
	require.Zero(t, result.Created)
	require.Zero(t, result.Updated)

	// The page itself is still created so the day's journal exists.
	require.NotNil(t, api.pageByTitle("Personal Journal 2024/1/15"))
}

func TestSync_SpeakerLabelRendered(t *testing.T) {
	api := newFakeAPI()
	api.addPage("Personal Journals by Month")

	segs := []transcript.Segment{
		{Text: "hello", Start: 0, End: 1, Speaker: "S0"},
	}
	in := grocerySyncInput()
	in.Blocks = transcript.Group(in.Recording, segs, transcript.DefaultPolicy())

	_, err := Sync(context.Background(), api, in)
	require.NoError(t, err)

	daily := api.pageByTitle("Personal Journal 2024/1/15")
	note := daily.children[len(daily.children)-1]
	require.Contains(t, note.PlainContent(), "S0: hello")
}

func TestExtractBlockKey(t *testing.T) {
	tests := []struct {
		name  string
		block Block
		want  string
	}{
		{
			name:  "marker block",
			block: NewParagraph(CodeText("[rec:240115_a.mp3#2]"), PlainText(" text")),
			want:  "240115_a.mp3#2",
		},
		{
			name:  "code span without marker shape",
			block: NewParagraph(CodeText("ls -la")),
			want:  "",
		},
		{
			name:  "plain paragraph",
			block: NewParagraph(PlainText("[rec:240115_a.mp3#2]")),
			want:  "",
		},
		{
			name:  "empty block",
			block: Block{Type: TypeParagraph, Paragraph: &Paragraph{}},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ExtractBlockKey(tt.block))
		})
	}
}

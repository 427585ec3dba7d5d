package planner

import (
	"context"
	"fmt"
	"strings"

	"vnotes/internal/errors"
)

// fakeAPI is an in-memory document service used to test page resolution and
// the synchronizer without network access. Search is deliberately loose
// (substring match), as the real endpoint is.
type fakeAPI struct {
	pages  map[string]*fakePage
	nextID int

	searchCalls int
	createCalls int
	updateCalls int
}

type fakePage struct {
	page     Page
	children []Block
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{pages: make(map[string]*fakePage)}
}

// addPage seeds a page and returns its ID.
func (f *fakeAPI) addPage(title string, children ...Block) string {
	f.nextID++
	id := fmt.Sprintf("page-%d", f.nextID)

	p := Page{ID: id}
	p.Properties.Title.Title = []RichText{PlainText(title)}

	stored := make([]Block, len(children))
	for i, c := range children {
		f.nextID++
		c.ID = fmt.Sprintf("block-%d", f.nextID)
		stored[i] = c
	}

	f.pages[id] = &fakePage{page: p, children: stored}
	return id
}

func (f *fakeAPI) SearchPages(_ context.Context, query string) ([]Page, error) {
	f.searchCalls++
	var results []Page
	for _, fp := range f.pages {
		if strings.Contains(fp.page.PlainTitle(), query) {
			results = append(results, fp.page)
		}
	}
	return results, nil
}

func (f *fakeAPI) CreatePage(_ context.Context, parentID, title string, children []Block) (*Page, error) {
	f.createCalls++
	if _, ok := f.pages[parentID]; !ok {
		return nil, errors.NewSync("parent page not found: " + parentID)
	}
	id := f.addPage(title, children...)
	page := f.pages[id].page
	return &page, nil
}

func (f *fakeAPI) ListChildren(_ context.Context, blockID string) ([]Block, error) {
	fp, ok := f.pages[blockID]
	if !ok {
		return nil, errors.NewSync("page not found: " + blockID)
	}
	out := make([]Block, len(fp.children))
	copy(out, fp.children)
	return out, nil
}

func (f *fakeAPI) AppendChildren(_ context.Context, blockID string, children []Block) error {
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

func (f *fakeAPI) UpdateBlock(_ context.Context, blockID string, block Block) error {
	f.updateCalls++
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

// pageByTitle finds a seeded or created page for assertions.
func (f *fakeAPI) pageByTitle(title string) *fakePage {
	for _, fp := range f.pages {
		if fp.page.PlainTitle() == title {
			return fp
		}
	}
	return nil
}

package ops

import (
	"context"
	"time"

	"vnotes/internal/planner"
)

// PlanInput selects the journal day to prepare.
type PlanInput struct {
	Date time.Time
}

// PlanOutput reports the prepared daily page.
type PlanOutput struct {
	PageID string `json:"page_id"`
	Title  string `json:"title"`
}

// Plan makes sure the daily journal page for the given date exists,
// creating it (and its monthly parent) from the template if needed.
func Plan(ctx context.Context, s *Services, input PlanInput) (*PlanOutput, error) {
	pageID, err := planner.EnsureDailyPage(ctx, s.Planner, input.Date)
	if err != nil {
		return nil, err
	}
	return &PlanOutput{
		PageID: pageID,
		Title:  planner.DailyPageTitle(input.Date),
	}, nil
}

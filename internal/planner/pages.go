package planner

import (
	"context"
	"fmt"
	"time"

	"vnotes/internal/errors"
)

// Journal page naming. The top-level index page must already exist in the
// document; monthly and daily pages are created beneath it on demand.
const indexPageTitle = "Personal Journals by Month"

// MonthlyPageTitle returns the title of the monthly index page for a date.
// Months and days are unpadded, e.g. "Personal Journal 2024/1".
func MonthlyPageTitle(date time.Time) string {
	return fmt.Sprintf("Personal Journal %d/%d", date.Year(), int(date.Month()))
}

// DailyPageTitle returns the title of the daily journal page for a date,
// e.g. "Personal Journal 2024/1/15".
func DailyPageTitle(date time.Time) string {
	return fmt.Sprintf("Personal Journal %d/%d/%d", date.Year(), int(date.Month()), date.Day())
}

// dailyTemplate is the skeleton every new day page starts with. Voice-note
// blocks are appended after these sections.
func dailyTemplate() []Block {
	return []Block{
		NewHeading1("Agenda"),
		NewToDo("Plan your day"),
		NewHeading1("General notes"),
		NewHeading1("Voice notes"),
	}
}

// findPageExact searches for a page whose plain title matches exactly.
// The search endpoint matches loosely, so results are filtered here; more
// than one exact match means the journal structure is corrupt and the
// synchronizer must not guess.
func findPageExact(ctx context.Context, api API, title string) (*Page, error) {
	pages, err := api.SearchPages(ctx, title)
	if err != nil {
		return nil, err
	}

	var match *Page
	for i := range pages {
		if pages[i].PlainTitle() != title {
			continue
		}
		if match != nil {
			return nil, errors.NewSync(fmt.Sprintf("multiple pages titled %q", title))
		}
		match = &pages[i]
	}
	return match, nil
}

// EnsureDailyPage resolves the daily journal page for date, creating the
// monthly page and the day page (from the template) as needed. The
// top-level index page is never created automatically: its absence means
// the token points at the wrong workspace.
func EnsureDailyPage(ctx context.Context, api API, date time.Time) (string, error) {
	if daily, err := findPageExact(ctx, api, DailyPageTitle(date)); err != nil {
		return "", err
	} else if daily != nil {
		return daily.ID, nil
	}

	monthly, err := findPageExact(ctx, api, MonthlyPageTitle(date))
	if err != nil {
		return "", err
	}
	if monthly == nil {
		index, err := findPageExact(ctx, api, indexPageTitle)
		if err != nil {
			return "", err
		}
		if index == nil {
			return "", errors.NewSync(fmt.Sprintf("journal index page %q not found", indexPageTitle))
		}
		monthly, err = api.CreatePage(ctx, index.ID, MonthlyPageTitle(date), nil)
		if err != nil {
			return "", err
		}
	}

	daily, err := api.CreatePage(ctx, monthly.ID, DailyPageTitle(date), dailyTemplate())
	if err != nil {
		return "", err
	}
	return daily.ID, nil
}

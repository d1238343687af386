// Package templates renders the HTML served next to the JSON API.
//
// The components live in .templ files; regenerate the _templ.go files with
// `templ generate` after editing them.
package templates

import (
	"fmt"
	"time"

	"github.com/bnema/clipforge/internal/domain"
)

// DashboardData is everything the queue dashboard shows.
type DashboardData struct {
	Jobs        []*domain.Job
	ReviewCount int
	TodayCount  int
	DailyTarget int
}

func publishedSummary(data DashboardData) string {
	return fmt.Sprintf("%d/%d published today", data.TodayCount, data.DailyTarget)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

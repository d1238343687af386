package templates

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/clipforge/internal/domain"
)

func TestDashboard_RendersJobs(t *testing.T) {
	done := time.Date(2026, 5, 2, 10, 30, 0, 0, time.UTC)
	data := DashboardData{
		Jobs: []*domain.Job{
			{
				ID:          "0123456789abcdef",
				Status:      domain.JobStatusFailed,
				CreatedAt:   time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC),
				CompletedAt: &done,
				Error:       `encode "hook" failed <bad>`,
				Payload:     domain.Payload{Mode: domain.ModeMeme, OutputName: "cats"},
			},
		},
		ReviewCount: 3,
		TodayCount:  1,
		DailyTarget: 2,
	}

	var buf bytes.Buffer
	require.NoError(t, Dashboard(data).Render(context.Background(), &buf))
	html := buf.String()

	assert.Contains(t, html, "<code>01234567</code>")
	assert.Contains(t, html, `data-status="failed"`)
	assert.Contains(t, html, `id="job-0123456789abcdef"`)
	assert.Contains(t, html, "3 awaiting review")
	assert.Contains(t, html, "1/2 published today")
	assert.Contains(t, html, "2026-05-02 10:30:00")
	assert.Contains(t, html, "&lt;bad&gt;")
	assert.NotContains(t, html, "<bad>")
}

func TestDashboard_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Dashboard(DashboardData{DailyTarget: 2}).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "No jobs yet.")
	assert.Contains(t, buf.String(), `new EventSource("/api/events")`)
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abc", shortID("abc"))
	assert.Equal(t, "01234567", shortID("0123456789"))
}

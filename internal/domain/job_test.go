package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewJob(t *testing.T) {
	job := NewJob(Payload{Mode: ModeMeme, OutputName: "clip_1"})

	assert.Len(t, job.ID, 36, "ID should be a uuid string")
	assert.Equal(t, JobStatusQueued, job.Status)
	assert.Equal(t, ModeMeme, job.Mode)
	assert.Nil(t, job.CompletedAt)
	assert.Empty(t, job.Error)
	assert.WithinDuration(t, time.Now(), job.CreatedAt, time.Second)

	other := NewJob(Payload{Mode: ModeMeme})
	assert.NotEqual(t, job.ID, other.ID)
}

func TestMode_Valid(t *testing.T) {
	tests := []struct {
		mode      Mode
		valid     bool
		needsClip bool
	}{
		{ModeMeme, true, true},
		{ModeNarration, true, true},
		{ModeCTAOnly, true, false},
		{Mode("slideshow"), false, true},
		{Mode(""), false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.mode.Valid())
			assert.Equal(t, tt.needsClip, tt.mode.NeedsClip())
		})
	}
}

func TestJob_IsTerminal(t *testing.T) {
	tests := []struct {
		status JobStatus
		want   bool
	}{
		{JobStatusQueued, false},
		{JobStatusRendering, false},
		{JobStatusReview, true},
		{JobStatusPublished, true},
		{JobStatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			job := &Job{Status: tt.status}
			assert.Equal(t, tt.want, job.IsTerminal())
		})
	}
}

func TestJobUpdate_Apply(t *testing.T) {
	t.Run("failed update sets error and completion", func(t *testing.T) {
		job := NewJob(Payload{Mode: ModeMeme, OutputName: "a"})
		at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

		FailedUpdate(errors.New("ffmpeg [render] failed"), at).Apply(job)

		assert.Equal(t, JobStatusFailed, job.Status)
		assert.Equal(t, "ffmpeg [render] failed", job.Error)
		assert.NotNil(t, job.CompletedAt)
		assert.Equal(t, at, *job.CompletedAt)
		assert.Equal(t, "a", job.OutputName, "payload must be untouched")
	})

	t.Run("failed update never leaves an empty error", func(t *testing.T) {
		job := NewJob(Payload{Mode: ModeMeme})
		FailedUpdate(errors.New(""), time.Now()).Apply(job)
		assert.NotEmpty(t, job.Error)
	})

	t.Run("status update leaves other fields", func(t *testing.T) {
		job := NewJob(Payload{Mode: ModeMeme})
		StatusUpdate(JobStatusRendering).Apply(job)

		assert.Equal(t, JobStatusRendering, job.Status)
		assert.Nil(t, job.CompletedAt)
	})

	t.Run("output name refinement", func(t *testing.T) {
		job := NewJob(Payload{Mode: ModeMeme, OutputName: "draft"})
		OutputNameUpdate("monday_post").Apply(job)

		assert.Equal(t, "monday_post", job.OutputName)
		assert.Equal(t, JobStatusQueued, job.Status)
	})
}

func TestNextQueued(t *testing.T) {
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	mk := func(id string, status JobStatus, offset time.Duration) *Job {
		return &Job{ID: id, Status: status, CreatedAt: base.Add(offset)}
	}

	tests := []struct {
		name string
		jobs []*Job
		want string
	}{
		{
			name: "empty collection",
			jobs: nil,
			want: "",
		},
		{
			name: "no queued jobs",
			jobs: []*Job{mk("a", JobStatusReview, 0), mk("b", JobStatusFailed, time.Second)},
			want: "",
		},
		{
			name: "earliest queued wins",
			jobs: []*Job{mk("late", JobStatusQueued, 2*time.Second), mk("early", JobStatusQueued, time.Second)},
			want: "early",
		},
		{
			name: "skips non-queued older jobs",
			jobs: []*Job{mk("old", JobStatusRendering, 0), mk("next", JobStatusQueued, time.Second)},
			want: "next",
		},
		{
			name: "ties keep storage order",
			jobs: []*Job{mk("first", JobStatusQueued, 0), mk("second", JobStatusQueued, 0)},
			want: "first",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextQueued(tt.jobs)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestErrors(t *testing.T) {
	cause := errors.New("exit status 1")
	encErr := &EncodeError{Step: "hook", Stderr: "No such file", Err: cause}
	assert.Contains(t, encErr.Error(), "ffmpeg [hook] failed")
	assert.Contains(t, encErr.Error(), "No such file")
	assert.ErrorIs(t, encErr, cause)

	synthErr := &SynthesisError{Provider: "openai", Err: ErrUnknownProvider}
	assert.ErrorIs(t, synthErr, ErrUnknownProvider)
	assert.Contains(t, synthErr.Error(), "openai")

	valErr := &ValidationError{Field: "hook_clip_id", Reason: "required for this mode"}
	assert.Equal(t, "hook_clip_id: required for this mode", valErr.Error())
}

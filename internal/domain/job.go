package domain

import (
	"time"

	"github.com/google/uuid"
)

type Mode string

const (
	ModeMeme      Mode = "meme"
	ModeNarration Mode = "narration"
	ModeCTAOnly   Mode = "cta_only"
)

// Valid reports whether m names one of the composition recipes.
func (m Mode) Valid() bool {
	switch m {
	case ModeMeme, ModeNarration, ModeCTAOnly:
		return true
	}
	return false
}

// NeedsClip reports whether the mode starts from a source clip.
func (m Mode) NeedsClip() bool {
	return m != ModeCTAOnly
}

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRendering JobStatus = "rendering"
	JobStatusReview    JobStatus = "review"
	JobStatusPublished JobStatus = "published"
	JobStatusFailed    JobStatus = "failed"
)

// Payload is the mode-dependent input of a job. It is fixed at creation
// except for OutputName, which a planner may refine later.
type Payload struct {
	Mode          Mode   `json:"mode"`
	HookClipID    string `json:"hook_clip_id"`
	HookCaption   string `json:"hook_caption"`
	BodyScript    string `json:"body_script"`
	BodyAudioFile string `json:"body_audio_file,omitempty"`
	Voice         string `json:"voice"`
	Provider      string `json:"provider"`
	CTATagline    string `json:"cta_tagline"`
	CTASubtitle   string `json:"cta_subtitle"`
	CTAURL        string `json:"cta_url"`
	OutputName    string `json:"output_name"`
	SourceFile    string `json:"source_file"`
	StartSec      int    `json:"start_sec"`
	DurationSec   int    `json:"duration_sec"`
}

type Job struct {
	ID          string     `json:"id"`
	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
	Error       string     `json:"error,omitempty"`
	Payload
}

// NewJob returns a queued job with a fresh id.
func NewJob(p Payload) *Job {
	return &Job{
		ID:        uuid.NewString(),
		Status:    JobStatusQueued,
		CreatedAt: time.Now().UTC(),
		Payload:   p,
	}
}

// IsTerminal reports whether the pipeline is finished with the job.
func (j *Job) IsTerminal() bool {
	switch j.Status {
	case JobStatusReview, JobStatusPublished, JobStatusFailed:
		return true
	}
	return false
}

// JobUpdate is a partial update. Nil fields are left untouched.
type JobUpdate struct {
	Status      *JobStatus
	Error       *string
	CompletedAt *time.Time
	OutputName  *string
}

// Apply copies the set fields of u onto j.
func (u JobUpdate) Apply(j *Job) {
	if u.Status != nil {
		j.Status = *u.Status
	}
	if u.Error != nil {
		j.Error = *u.Error
	}
	if u.CompletedAt != nil {
		t := *u.CompletedAt
		j.CompletedAt = &t
	}
	if u.OutputName != nil {
		j.OutputName = *u.OutputName
	}
}

// StatusUpdate moves a job to status without touching anything else.
func StatusUpdate(status JobStatus) JobUpdate {
	return JobUpdate{Status: &status}
}

// ReviewUpdate marks a successful render.
func ReviewUpdate(at time.Time) JobUpdate {
	status := JobStatusReview
	return JobUpdate{Status: &status, CompletedAt: &at}
}

// FailedUpdate marks a failed render with its reason.
func FailedUpdate(err error, at time.Time) JobUpdate {
	status := JobStatusFailed
	msg := err.Error()
	if msg == "" {
		msg = "render failed"
	}
	return JobUpdate{Status: &status, Error: &msg, CompletedAt: &at}
}

// OutputNameUpdate refines the desired output file name.
func OutputNameUpdate(name string) JobUpdate {
	return JobUpdate{OutputName: &name}
}

// NextQueued returns the earliest-created queued job. Jobs with identical
// creation times keep their storage order.
func NextQueued(jobs []*Job) *Job {
	var next *Job
	for _, j := range jobs {
		if j.Status != JobStatusQueued {
			continue
		}
		if next == nil || j.CreatedAt.Before(next.CreatedAt) {
			next = j
		}
	}
	return next
}

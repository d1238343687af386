package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/bnema/clipforge/internal/domain"
	"github.com/bnema/clipforge/internal/infrastructure/logger"
	"github.com/bnema/clipforge/internal/port"
)

const (
	defaultVoice    = "shimmer"
	defaultProvider = "openai"
	fallbackOutput  = "output"
	clipFreeSeconds = 10
)

// SubmitRequest is a render submission as received from a planner.
type SubmitRequest struct {
	Mode          domain.Mode `json:"mode" validate:"omitempty,oneof=meme narration cta_only"`
	HookClipID    string      `json:"hook_clip_id" validate:"max=200"`
	HookCaption   string      `json:"hook_caption" validate:"max=500"`
	BodyScript    string      `json:"body_script" validate:"max=5000"`
	BodyAudioFile string      `json:"body_audio_file" validate:"max=1024"`
	Voice         string      `json:"voice" validate:"max=64"`
	Provider      string      `json:"provider" validate:"max=64"`
	CTATagline    string      `json:"cta_tagline" validate:"max=120"`
	CTASubtitle   string      `json:"cta_subtitle" validate:"max=120"`
	CTAURL        string      `json:"cta_url" validate:"max=200"`
	OutputName    string      `json:"output_name" validate:"omitempty,max=120,outputname"`
}

// Notifier is woken whenever a job is queued.
type Notifier interface {
	Notify()
}

// JobService validates submissions and manages the job collection.
type JobService struct {
	store    port.JobStore
	clips    port.ClipCatalog
	notifier Notifier
	validate *validator.Validate
	cta      CTAText
}

func NewJobService(store port.JobStore, clips port.ClipCatalog, notifier Notifier, cta CTAText) *JobService {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("outputname", func(fl validator.FieldLevel) bool {
		return ValidOutputName(fl.Field().String())
	})
	v.RegisterStructValidation(validateSubmitRequest, SubmitRequest{})

	return &JobService{
		store:    store,
		clips:    clips,
		notifier: notifier,
		validate: v,
		cta:      cta,
	}
}

func validateSubmitRequest(sl validator.StructLevel) {
	req := sl.Current().Interface().(SubmitRequest)
	mode := req.Mode
	if mode == "" {
		mode = domain.ModeNarration
	}
	if mode.Valid() && mode.NeedsClip() && strings.TrimSpace(req.HookClipID) == "" {
		sl.ReportError(req.HookClipID, "hook_clip_id", "HookClipID", "required_for_mode", string(mode))
	}
	if mode == domain.ModeNarration && strings.TrimSpace(req.BodyScript) == "" && strings.TrimSpace(req.BodyAudioFile) == "" {
		sl.ReportError(req.BodyScript, "body_script", "BodyScript", "required_for_mode", string(mode))
	}
}

// ValidOutputName reports whether name can be used as a file name in the
// review directory.
func ValidOutputName(name string) bool {
	if name == "" || name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return false
	}
	for _, r := range name {
		if r == '/' || r == '\\' || r == ':' || r == '"' || unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// Submit validates req, resolves the hook clip and queues a job.
func (s *JobService) Submit(req SubmitRequest) (*domain.Job, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, toValidationError(err)
	}

	p := domain.Payload{
		Mode:          req.Mode,
		HookClipID:    req.HookClipID,
		HookCaption:   req.HookCaption,
		BodyScript:    req.BodyScript,
		BodyAudioFile: req.BodyAudioFile,
		Voice:         orDefault(req.Voice, defaultVoice),
		Provider:      orDefault(req.Provider, defaultProvider),
		CTATagline:    orDefault(req.CTATagline, s.cta.Tagline),
		CTASubtitle:   orDefault(req.CTASubtitle, s.cta.Subtitle),
		CTAURL:        orDefault(req.CTAURL, s.cta.URL),
		DurationSec:   clipFreeSeconds,
	}
	if p.Mode == "" {
		p.Mode = domain.ModeNarration
	}

	if p.Mode.NeedsClip() {
		clip, err := s.clips.Get(req.HookClipID)
		if err != nil {
			return nil, fmt.Errorf("clip %s: %w", req.HookClipID, err)
		}
		p.SourceFile = clip.SourceFile
		p.StartSec = clip.StartSeconds
		p.DurationSec = clip.DurationSeconds
	}

	p.OutputName = req.OutputName
	if p.OutputName == "" {
		p.OutputName = req.HookClipID
	}
	if !ValidOutputName(p.OutputName) {
		p.OutputName = fallbackOutput
	}

	job, err := s.store.Enqueue(p)
	if err != nil {
		return nil, fmt.Errorf("enqueue: %w", err)
	}
	logger.Info.Printf("queued job %s (mode=%s, output=%s)", job.ID, job.Mode, logger.SanitizeForLog(job.OutputName))

	if s.notifier != nil {
		s.notifier.Notify()
	}
	return job, nil
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &domain.ValidationError{Reason: err.Error()}
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required_for_mode":
		return &domain.ValidationError{Field: field, Reason: "required for mode " + fe.Param()}
	case "oneof":
		return &domain.ValidationError{Field: field, Reason: "must be one of " + fe.Param()}
	case "max":
		return &domain.ValidationError{Field: field, Reason: "must be at most " + fe.Param() + " characters"}
	case "outputname":
		return &domain.ValidationError{Field: field, Reason: "must be a plain file name"}
	default:
		return &domain.ValidationError{Field: field, Reason: "failed " + fe.Tag()}
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func (s *JobService) Get(id string) (*domain.Job, error) {
	return s.store.Get(id)
}

// List returns every job, most recent first.
func (s *JobService) List() ([]*domain.Job, error) {
	jobs, err := s.store.List()
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(jobs)-1; i < j; i, j = i+1, j-1 {
		jobs[i], jobs[j] = jobs[j], jobs[i]
	}
	return jobs, nil
}

// Delete removes a job. A job that is rendering keeps rendering; its result
// is discarded.
func (s *JobService) Delete(id string) error {
	removed, err := s.store.Remove(id)
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrNotFound
	}
	logger.Info.Printf("deleted job %s", id)
	return nil
}

// SetOutputName refines the output name of a job that has not started.
func (s *JobService) SetOutputName(id, name string) (*domain.Job, error) {
	if !ValidOutputName(name) || len(name) > 120 {
		return nil, &domain.ValidationError{Field: "output_name", Reason: "must be a plain file name"}
	}
	job, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.JobStatusQueued {
		return nil, &domain.ValidationError{Field: "output_name", Reason: "job is already " + string(job.Status)}
	}
	return s.store.Update(id, domain.OutputNameUpdate(name))
}

// MarkPublished marks the first job whose output name prefixes filename as
// published. Finding no match is not an error.
func (s *JobService) MarkPublished(filename string) (*domain.Job, error) {
	jobs, err := s.store.List()
	if err != nil {
		return nil, err
	}
	for _, j := range jobs {
		if j.OutputName == "" || !strings.HasPrefix(filename, j.OutputName) {
			continue
		}
		job, err := s.store.Update(j.ID, domain.StatusUpdate(domain.JobStatusPublished))
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return job, err
	}
	return nil, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bnema/clipforge/internal/domain"
	"github.com/bnema/clipforge/internal/infrastructure/logger"
	"github.com/bnema/clipforge/internal/port"
)

// RenderPipeline composes one job into a finished video in the review
// directory.
type RenderPipeline struct {
	encoder port.Encoder
	synth   port.Synthesizer
	events  port.EventPublisher
	cfg     PipelineConfig
}

func NewRenderPipeline(encoder port.Encoder, synth port.Synthesizer, events port.EventPublisher, cfg PipelineConfig) *RenderPipeline {
	return &RenderPipeline{
		encoder: encoder,
		synth:   synth,
		events:  events,
		cfg:     cfg,
	}
}

func (p *RenderPipeline) emit(jobID string, data domain.EventData) {
	p.events.Publish(domain.Event{JobID: jobID, Data: data})
}

func (p *RenderPipeline) step(jobID, step string) {
	p.emit(jobID, domain.ProgressEvent{Step: step, Pct: 0})
}

func (p *RenderPipeline) tmpFile(prefix, jobID string) string {
	return filepath.Join(p.cfg.TmpDir, prefix+"_"+jobID+".mp4")
}

// Run renders job and returns the path of the file placed in the review
// directory. Intermediate files are removed whatever the outcome.
func (p *RenderPipeline) Run(ctx context.Context, job *domain.Job) (string, error) {
	p.emit(job.ID, domain.StatusEvent{Status: domain.JobStatusRendering, Mode: job.Mode})

	out, err := p.render(ctx, job)
	p.cleanup(job.ID)
	if err != nil {
		p.emit(job.ID, domain.StatusEvent{Status: domain.JobStatusFailed, Error: err.Error()})
		return "", err
	}

	p.emit(job.ID, domain.StatusEvent{Status: domain.JobStatusReview, OutputFile: out})
	return out, nil
}

func (p *RenderPipeline) render(ctx context.Context, job *domain.Job) (string, error) {
	if err := os.MkdirAll(p.cfg.TmpDir, 0755); err != nil {
		return "", fmt.Errorf("create tmp dir: %w", err)
	}

	var (
		rendered string
		err      error
	)
	switch job.Mode {
	case domain.ModeMeme:
		rendered, err = p.renderMeme(job)
	case domain.ModeCTAOnly:
		rendered, err = p.renderCTAOnly(job)
	case domain.ModeNarration:
		rendered, err = p.renderNarration(ctx, job)
	default:
		return "", &domain.ValidationError{Field: "mode", Reason: fmt.Sprintf("unsupported mode %q", job.Mode)}
	}
	if err != nil {
		return "", err
	}

	return p.publishToReview(rendered, job.OutputName)
}

func (p *RenderPipeline) renderMeme(job *domain.Job) (string, error) {
	p.step(job.ID, "render")
	out := p.tmpFile("out", job.ID)
	args := p.cfg.captionedClipArgs(job.SourceFile, job.StartSec, job.DurationSec, job.HookCaption, out)
	if err := p.encoder.Run(args, job.ID, "render"); err != nil {
		return "", err
	}
	return out, nil
}

func (p *RenderPipeline) renderNarration(ctx context.Context, job *domain.Job) (string, error) {
	p.step(job.ID, "hook")
	hook := p.tmpFile("hook", job.ID)
	args := p.cfg.captionedClipArgs(job.SourceFile, job.StartSec, job.DurationSec, job.HookCaption, hook)
	if err := p.encoder.Run(args, job.ID, "hook"); err != nil {
		return "", err
	}

	p.step(job.ID, "tts")
	speech, err := p.voiceTrack(ctx, job)
	if err != nil {
		return "", err
	}
	p.emit(job.ID, domain.ProgressEvent{Step: "tts", Pct: 100})

	p.step(job.ID, "body")
	lines, dropped := p.cfg.subtitleLines(job.BodyScript)
	if dropped > 0 {
		logger.Warn.Printf("job %s: subtitle truncated, %d of %d lines dropped", job.ID, dropped, dropped+len(lines))
	}
	body := p.tmpFile("body", job.ID)
	if err := p.encoder.Run(p.cfg.bodyArgs(lines, speech.AudioFile, speech.Duration, body), job.ID, "body"); err != nil {
		return "", err
	}

	p.step(job.ID, "cta")
	cta, err := p.renderCTACard(job, p.cfg.CTADuration)
	if err != nil {
		return "", err
	}

	p.step(job.ID, "assemble")
	out := p.tmpFile("out", job.ID)
	if err := p.encoder.Run(assembleArgs(hook, body, cta, out), job.ID, "assemble"); err != nil {
		return "", err
	}
	return out, nil
}

func (p *RenderPipeline) renderCTAOnly(job *domain.Job) (string, error) {
	p.step(job.ID, "cta")
	cta, err := p.renderCTACard(job, p.cfg.CTAOnlyDuration)
	if err != nil {
		return "", err
	}
	out := p.tmpFile("out", job.ID)
	if err := os.Rename(cta, out); err != nil {
		return "", fmt.Errorf("stage cta card: %w", err)
	}
	return out, nil
}

// renderCTACard renders the end card and returns the variant with a silent
// audio track so it can be concatenated or published as-is.
func (p *RenderPipeline) renderCTACard(job *domain.Job, d time.Duration) (string, error) {
	card := p.tmpFile("cta", job.ID)
	if err := p.encoder.Run(p.cfg.ctaArgs(p.ctaText(job), d, card), job.ID, "cta"); err != nil {
		return "", err
	}

	withAudio := filepath.Join(p.cfg.TmpDir, "cta_"+job.ID+"_sa.mp4")
	if err := p.encoder.Run(silentAudioArgs(card, d, withAudio), "", "cta"); err != nil {
		return "", err
	}
	return withAudio, nil
}

func (p *RenderPipeline) ctaText(job *domain.Job) CTAText {
	text := CTAText{Tagline: job.CTATagline, Subtitle: job.CTASubtitle, URL: job.CTAURL}
	if text.Tagline == "" {
		text.Tagline = p.cfg.DefaultCTA.Tagline
	}
	if text.Subtitle == "" {
		text.Subtitle = p.cfg.DefaultCTA.Subtitle
	}
	if text.URL == "" {
		text.URL = p.cfg.DefaultCTA.URL
	}
	return text
}

// voiceTrack uses the pre-supplied audio file when it exists and synthesizes
// the script otherwise.
func (p *RenderPipeline) voiceTrack(ctx context.Context, job *domain.Job) (*domain.Speech, error) {
	if job.BodyAudioFile != "" {
		if _, err := os.Stat(job.BodyAudioFile); err == nil {
			d, err := p.encoder.ProbeDuration(job.BodyAudioFile)
			if err != nil {
				return nil, fmt.Errorf("probe voice track: %w", err)
			}
			return &domain.Speech{AudioFile: job.BodyAudioFile, Duration: d}, nil
		}
		logger.Warn.Printf("job %s: audio file %s missing, synthesizing", job.ID, logger.SanitizeForLog(job.BodyAudioFile))
	}
	if p.synth == nil {
		return nil, &domain.SynthesisError{Provider: job.Provider, Err: errors.New("no synthesizer configured")}
	}
	return p.synth.Synthesize(ctx, job.BodyScript, job.Voice, job.Provider)
}

// publishToReview moves the finished file into the review directory so
// readers never observe a partially written video.
func (p *RenderPipeline) publishToReview(src, outputName string) (string, error) {
	if err := os.MkdirAll(p.cfg.ReviewDir, 0755); err != nil {
		return "", fmt.Errorf("create review dir: %w", err)
	}
	dst := filepath.Join(p.cfg.ReviewDir, filepath.Base(outputName)+".mp4")
	if err := moveFile(src, dst); err != nil {
		return "", fmt.Errorf("move output into review: %w", err)
	}
	return dst, nil
}

// moveFile renames src to dst. When a rename is not possible, e.g. across
// devices, the data is copied to a hidden sibling of dst first and renamed
// from there.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	tmp := filepath.Join(filepath.Dir(dst), "."+filepath.Base(dst)+".partial")
	if err := copyFile(src, tmp); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// cleanup removes every intermediate file of jobID.
func (p *RenderPipeline) cleanup(jobID string) {
	matches, err := filepath.Glob(filepath.Join(p.cfg.TmpDir, "*_"+jobID+"*"))
	if err != nil {
		logger.Error.Printf("job %s: cleanup glob: %v", jobID, err)
		return
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn.Printf("job %s: remove %s: %v", jobID, m, err)
		}
	}
}

// Thumbnail extracts a preview frame for clip, reusing a cached one.
func (p *RenderPipeline) Thumbnail(clip *domain.Clip) (string, error) {
	out := filepath.Join(p.cfg.TmpDir, "thumb_"+filepath.Base(clip.ID)+".jpg")
	if _, err := os.Stat(out); err == nil {
		return out, nil
	}
	if err := os.MkdirAll(p.cfg.TmpDir, 0755); err != nil {
		return "", fmt.Errorf("create tmp dir: %w", err)
	}
	if err := p.encoder.RunQuick(thumbnailArgs(clip.SourceFile, clip.StartSeconds, out), "", "thumbnail"); err != nil {
		return "", err
	}
	return out, nil
}

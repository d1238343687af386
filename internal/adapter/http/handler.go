package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bnema/clipforge/internal/adapter/http/templates"
	"github.com/bnema/clipforge/internal/adapter/http/validation"
	"github.com/bnema/clipforge/internal/domain"
	"github.com/bnema/clipforge/internal/infrastructure/logger"
	"github.com/bnema/clipforge/internal/service"
)

const maxJSONBody = 1 << 20

type JobService interface {
	Submit(req service.SubmitRequest) (*domain.Job, error)
	Get(id string) (*domain.Job, error)
	List() ([]*domain.Job, error)
	Delete(id string) error
	SetOutputName(id, name string) (*domain.Job, error)
}

type ReviewService interface {
	ListReview() ([]service.VideoFile, error)
	ListPublished() (*service.PublishedListing, error)
	ReviewPath(filename string) (string, error)
	PublishedPath(filename string) (string, error)
	Approve(filename string) (string, error)
	Reject(filename string) error
}

type ClipService interface {
	Get(id string) (*domain.Clip, error)
	List(source string, minScore int) ([]*domain.Clip, error)
}

type Thumbnailer interface {
	Thumbnail(clip *domain.Clip) (string, error)
}

type IntakeService interface {
	Accept(filename string, r io.Reader) (*service.IntakeReceipt, error)
}

type Handlers struct {
	jobs      JobService
	review    ReviewService
	clips     ClipService
	thumbs    Thumbnailer
	synth     Synthesizer
	intake    IntakeService
	audioDir  string
	maxSizeMB int
}

func NewHandlers(deps Deps) *Handlers {
	return &Handlers{
		jobs:      deps.Jobs,
		review:    deps.Review,
		clips:     deps.Clips,
		thumbs:    deps.Thumbnails,
		synth:     deps.Synthesizer,
		intake:    deps.Intake,
		audioDir:  deps.AudioDir,
		maxSizeMB: deps.MaxUploadSizeMB,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn.Printf("write response: %v", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeError maps domain errors onto status codes. Anything unrecognised is
// logged and reported as a 500 without details.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *domain.ValidationError
		serr *domain.SynthesisError
	)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeDetail(w, http.StatusNotFound, "not found")
	case errors.As(err, &verr):
		writeDetail(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, domain.ErrInvalidName):
		writeDetail(w, http.StatusBadRequest, "invalid file name")
	case errors.Is(err, validation.ErrNotVideo), errors.Is(err, validation.ErrUnsupportedExtension):
		writeDetail(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, domain.ErrUnknownProvider):
		writeDetail(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &serr):
		logger.Error.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		writeDetail(w, http.StatusBadGateway, "speech synthesis failed")
	default:
		logger.Error.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		writeDetail(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (h *Handlers) Dashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := templates.DashboardData{DailyTarget: service.DailyTarget}

		jobs, err := h.jobs.List()
		if err != nil {
			logger.Error.Printf("dashboard list error: %v", err)
		}
		data.Jobs = jobs
		if videos, err := h.review.ListReview(); err == nil {
			data.ReviewCount = len(videos)
		}
		if published, err := h.review.ListPublished(); err == nil {
			data.TodayCount = published.TodayCount
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = templates.Dashboard(data).Render(r.Context(), w)
	}
}

func (h *Handlers) SubmitRender() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req service.SubmitRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		job, err := h.jobs.Submit(req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusAccepted, job)
	}
}

func (h *Handlers) ListQueue() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := h.jobs.List()
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, jobs)
	}
}

func (h *Handlers) GetJob() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := h.jobs.Get(r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, job)
	}
}

func (h *Handlers) DeleteJob() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.jobs.Delete(r.PathValue("id")); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func (h *Handlers) SetOutputName() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			OutputName string `json:"output_name"`
		}
		if !decodeJSON(w, r, &body) {
			return
		}
		job, err := h.jobs.SetOutputName(r.PathValue("id"), strings.TrimSpace(body.OutputName))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, job)
	}
}

func (h *Handlers) ListReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videos, err := h.review.ListReview()
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, videos)
	}
}

func (h *Handlers) ServeReview() http.HandlerFunc {
	return h.serveVideo(h.review.ReviewPath)
}

func (h *Handlers) ApproveReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url, err := h.review.Approve(r.PathValue("filename"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "published": url})
	}
}

func (h *Handlers) RejectReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.review.Reject(r.PathValue("filename")); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func (h *Handlers) ListPublished() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listing, err := h.review.ListPublished()
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, listing)
	}
}

func (h *Handlers) ServePublished() http.HandlerFunc {
	return h.serveVideo(h.review.PublishedPath)
}

func (h *Handlers) serveVideo(resolve func(string) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename := r.PathValue("filename")
		path, err := resolve(filename)
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "video/mp4")
		w.Header().Set("Content-Disposition", validation.ContentDisposition(filename, true))
		http.ServeFile(w, r, path)
	}
}

func (h *Handlers) ListClips() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		minScore := 0
		if v := r.URL.Query().Get("min_score"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				writeDetail(w, http.StatusBadRequest, "min_score must be an integer")
				return
			}
			minScore = n
		}
		clips, err := h.clips.List(r.URL.Query().Get("source"), minScore)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, clips)
	}
}

func (h *Handlers) GetClip() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clip, err := h.clips.Get(r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, clip)
	}
}

// ClipVideo serves the pre-rendered preview of a clip.
func (h *Handlers) ClipVideo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clip, err := h.clips.Get(r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		if clip.RenderedFile == "" || !fileExists(clip.RenderedFile) {
			writeDetail(w, http.StatusNotFound, "no rendered video for this clip")
			return
		}
		w.Header().Set("Content-Type", "video/mp4")
		http.ServeFile(w, r, clip.RenderedFile)
	}
}

func (h *Handlers) ClipThumbnail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clip, err := h.clips.Get(r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		path, err := h.thumbs.Thumbnail(clip)
		if err != nil {
			logger.Error.Printf("thumbnail for clip %s: %v", logger.SanitizeForLog(clip.ID), err)
			writeDetail(w, http.StatusInternalServerError, "thumbnail generation failed")
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		http.ServeFile(w, r, path)
	}
}

type ttsRequest struct {
	Script   string `json:"script"`
	Voice    string `json:"voice"`
	Provider string `json:"provider"`
}

func (h *Handlers) SynthesizeSpeech() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := ttsRequest{Voice: "shimmer", Provider: "openai"}
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Script) == "" {
			writeDetail(w, http.StatusBadRequest, "script is required")
			return
		}
		speech, err := h.synth.Synthesize(r.Context(), req.Script, req.Voice, req.Provider)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, speech)
	}
}

func (h *Handlers) ServeAudio() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename := r.PathValue("filename")
		if filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") ||
			!strings.EqualFold(filepath.Ext(filename), ".mp3") {
			writeError(w, r, domain.ErrInvalidName)
			return
		}
		path := filepath.Join(h.audioDir, filename)
		if !fileExists(path) {
			writeError(w, r, domain.ErrNotFound)
			return
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		http.ServeFile(w, r, path)
	}
}

func (h *Handlers) Intake() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := int64(h.maxSizeMB) * 1024 * 1024
		if r.ContentLength > limit {
			writeDetail(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeDetail(w, http.StatusRequestEntityTooLarge, "file too large")
				return
			}
			writeDetail(w, http.StatusBadRequest, "invalid multipart upload")
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		file, header, err := r.FormFile("file")
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "missing file field")
			return
		}
		defer func() { _ = file.Close() }()

		name, err := validation.UploadName(header.Filename)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if _, err := validation.SniffVideo(file); err != nil {
			writeError(w, r, err)
			return
		}

		receipt, err := h.intake.Accept(name, file)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, receipt)
	}
}

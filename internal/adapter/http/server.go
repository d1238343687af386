package http

import (
	"context"
	"net/http"
	"os"

	"github.com/bnema/clipforge/internal/adapter/http/middleware"
	"github.com/bnema/clipforge/internal/domain"
)

type Synthesizer interface {
	Synthesize(ctx context.Context, script, voice, provider string) (*domain.Speech, error)
}

// Deps are the services the HTTP surface is built on.
type Deps struct {
	Jobs        JobService
	Review      ReviewService
	Clips       ClipService
	Thumbnails  Thumbnailer
	Synthesizer Synthesizer
	Intake      IntakeService
	Events      Subscriber

	AudioDir          string
	MaxUploadSizeMB   int
	AdminPasswordHash string
}

type Server struct {
	mux        *http.ServeMux
	handlers   *Handlers
	sseHandler *SSEHandler
	adminHash  string
	handler    http.Handler
}

func NewServer(deps Deps) *Server {
	s := &Server{
		mux:        http.NewServeMux(),
		handlers:   NewHandlers(deps),
		sseHandler: NewSSEHandler(deps.Events),
		adminHash:  deps.AdminPasswordHash,
	}
	s.registerRoutes()
	s.handler = middleware.CORS(middleware.SecurityHeaders(s.mux))
	return s
}

func (s *Server) admin(next http.HandlerFunc) http.HandlerFunc {
	return AdminOnly(s.adminHash, next)
}

func (s *Server) registerRoutes() {
	h := s.handlers

	s.mux.HandleFunc("GET /{$}", h.Dashboard())

	s.mux.HandleFunc("POST /api/render", h.SubmitRender())
	s.mux.HandleFunc("GET /api/queue", h.ListQueue())
	s.mux.HandleFunc("GET /api/queue/{id}", h.GetJob())
	s.mux.HandleFunc("DELETE /api/queue/{id}", s.admin(h.DeleteJob()))
	s.mux.HandleFunc("PUT /api/queue/{id}/output-name", s.admin(h.SetOutputName()))

	s.mux.HandleFunc("GET /api/events", s.sseHandler.All())
	s.mux.HandleFunc("GET /api/events/{id}", s.sseHandler.Job())

	s.mux.HandleFunc("GET /api/review", h.ListReview())
	s.mux.HandleFunc("GET /api/review/{filename}", h.ServeReview())
	s.mux.HandleFunc("POST /api/review/{filename}/approve", s.admin(h.ApproveReview()))
	s.mux.HandleFunc("POST /api/review/{filename}/reject", s.admin(h.RejectReview()))

	s.mux.HandleFunc("GET /api/published", h.ListPublished())
	s.mux.HandleFunc("GET /api/published/{filename}", h.ServePublished())

	s.mux.HandleFunc("GET /api/clips", h.ListClips())
	s.mux.HandleFunc("GET /api/clips/{id}", h.GetClip())
	s.mux.HandleFunc("GET /api/clips/{id}/video", h.ClipVideo())
	s.mux.HandleFunc("GET /api/clips/{id}/thumbnail", h.ClipThumbnail())

	s.mux.HandleFunc("POST /api/tts", h.SynthesizeSpeech())
	s.mux.HandleFunc("GET /api/audio/{filename}", h.ServeAudio())

	s.mux.HandleFunc("POST /api/intake", h.Intake())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/bnema/clipforge/internal/infrastructure/logger"
	"github.com/bnema/clipforge/internal/service"
)

type Subscriber interface {
	SubscribeAll() *service.Subscription
	Subscribe(jobID string) *service.Subscription
}

type SSEHandler struct {
	bus Subscriber
}

func NewSSEHandler(bus Subscriber) *SSEHandler {
	return &SSEHandler{bus: bus}
}

// All streams every event on the bus.
func (h *SSEHandler) All() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.stream(w, r, h.bus.SubscribeAll())
	}
}

// Job streams the events of the job named in the path. Unknown ids are not
// rejected: a client may connect before the job exists.
func (h *SSEHandler) Job() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.stream(w, r, h.bus.Subscribe(r.PathValue("id")))
	}
}

func (h *SSEHandler) stream(w http.ResponseWriter, r *http.Request, sub *service.Subscription) {
	defer sub.Close()

	rc := http.NewResponseController(w)
	// Streams outlive the server write timeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		logger.Warn.Printf("sse: clear write deadline: %v", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	for {
		msg, err := sub.Next(ctx)
		if err != nil {
			return
		}
		if _, err := w.Write(msg.Bytes()); err != nil {
			return
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/clipforge/internal/adapter/storage/jsonfile"
	"github.com/bnema/clipforge/internal/domain"
	"github.com/bnema/clipforge/internal/port/mocks"
	"github.com/bnema/clipforge/internal/service"
)

type thumbFunc func(*domain.Clip) (string, error)

func (f thumbFunc) Thumbnail(c *domain.Clip) (string, error) { return f(c) }

type testEnv struct {
	server       *Server
	bus          *service.EventBus
	clips        *mocks.ClipCatalogMock
	synth        *mocks.SynthesizerMock
	intake       *service.IntakeService
	reviewDir    string
	publishedDir string
	audioDir     string
	inboxDir     string
}

func newTestEnv(t *testing.T, adminHash string) *testEnv {
	t.Helper()
	root := t.TempDir()
	env := &testEnv{
		bus:          service.NewEventBus(service.WithKeepAlive(time.Hour)),
		clips:        mocks.NewClipCatalogMock(t),
		synth:        mocks.NewSynthesizerMock(t),
		reviewDir:    filepath.Join(root, "review"),
		publishedDir: filepath.Join(root, "published"),
		audioDir:     filepath.Join(root, "tmp"),
		inboxDir:     filepath.Join(root, "inbox"),
	}
	for _, d := range []string{env.reviewDir, env.publishedDir, env.audioDir, env.inboxDir} {
		require.NoError(t, os.MkdirAll(d, 0755))
	}

	store, err := jsonfile.NewStore(root)
	require.NoError(t, err)

	jobs := service.NewJobService(store, env.clips, nil, service.CTAText{Tagline: "t", Subtitle: "s", URL: "u"})
	env.intake = service.NewIntakeService(env.inboxDir, "", env.bus)
	env.server = NewServer(Deps{
		Jobs:   jobs,
		Review: service.NewReviewService(env.reviewDir, env.publishedDir, jobs),
		Clips:  env.clips,
		Thumbnails: thumbFunc(func(c *domain.Clip) (string, error) {
			path := filepath.Join(env.audioDir, "thumb_"+c.ID+".jpg")
			return path, os.WriteFile(path, []byte{0xFF, 0xD8, 0xFF}, 0644)
		}),
		Synthesizer:       env.synth,
		Intake:            env.intake,
		Events:            env.bus,
		AudioDir:          env.audioDir,
		MaxUploadSizeMB:   1,
		AdminPasswordHash: adminHash,
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestServer_SubmitRender(t *testing.T) {
	env := newTestEnv(t, "")
	env.clips.EXPECT().Get("clip-1").Return(&domain.Clip{ID: "clip-1", SourceFile: "/v/a.mp4", StartSeconds: 5, DurationSeconds: 7}, nil).Once()

	rec := env.do(t, http.MethodPost, "/api/render", `{"mode":"meme","hook_clip_id":"clip-1","hook_caption":"hi"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	job := decodeBody[domain.Job](t, rec)
	assert.Equal(t, domain.JobStatusQueued, job.Status)
	assert.Equal(t, "clip-1", job.OutputName)
	assert.Equal(t, 7, job.DurationSec)

	rec = env.do(t, http.MethodGet, "/api/queue", "")
	require.Equal(t, http.StatusOK, rec.Code)
	jobs := decodeBody[[]domain.Job](t, rec)
	require.Len(t, jobs, 1)
	assert.Equal(t, job.ID, jobs[0].ID)
}

func TestServer_SubmitErrors(t *testing.T) {
	env := newTestEnv(t, "")
	env.clips.EXPECT().Get("ghost").Return(nil, domain.ErrNotFound).Once()

	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "bad json", body: `{`, code: http.StatusBadRequest},
		{name: "unknown mode", body: `{"mode":"opera"}`, code: http.StatusBadRequest},
		{name: "missing clip id", body: `{"mode":"meme"}`, code: http.StatusBadRequest},
		{name: "unknown clip", body: `{"mode":"narration","hook_clip_id":"ghost","body_script":"hi"}`, code: http.StatusNotFound},
		{name: "narration without script", body: `{"mode":"narration","hook_clip_id":"c1"}`, code: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/render", tt.body)
			assert.Equal(t, tt.code, rec.Code)
			assert.NotEmpty(t, decodeBody[map[string]string](t, rec)["detail"])
		})
	}
}

func TestServer_DeleteAndOutputName(t *testing.T) {
	env := newTestEnv(t, "")
	rec := env.do(t, http.MethodPost, "/api/render", `{"mode":"cta_only","output_name":"draft"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	job := decodeBody[domain.Job](t, rec)

	rec = env.do(t, http.MethodGet, "/api/queue/"+job.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.JobStatusQueued, decodeBody[domain.Job](t, rec).Status)

	rec = env.do(t, http.MethodPut, "/api/queue/"+job.ID+"/output-name", `{"output_name":"monday-post"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "monday-post", decodeBody[domain.Job](t, rec).OutputName)

	rec = env.do(t, http.MethodPut, "/api/queue/"+job.ID+"/output-name", `{"output_name":"../x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/queue/"+job.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[map[string]bool](t, rec)["ok"])

	rec = env.do(t, http.MethodDelete, "/api/queue/"+job.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/queue/"+job.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_AdminRoutesRequireAuth(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	env := newTestEnv(t, hash)

	rec := env.do(t, http.MethodDelete, "/api/queue/abc", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")

	req := httptest.NewRequest(http.MethodDelete, "/api/queue/abc", nil)
	req.SetBasicAuth("admin", "wrong")
	rec = httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/queue/abc", nil)
	req.SetBasicAuth("admin", "hunter2")
	rec = httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Reads stay public.
	rec = env.do(t, http.MethodGet, "/api/queue", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_ReviewFlow(t *testing.T) {
	env := newTestEnv(t, "")
	require.NoError(t, os.WriteFile(filepath.Join(env.reviewDir, "cats.mp4"), bytes.Repeat([]byte{1}, 1024), 0644))

	rec := env.do(t, http.MethodGet, "/api/review", "")
	require.Equal(t, http.StatusOK, rec.Code)
	videos := decodeBody[[]service.VideoFile](t, rec)
	require.Len(t, videos, 1)
	assert.Equal(t, "/api/review/cats.mp4", videos[0].URL)

	rec = env.do(t, http.MethodGet, "/api/review/cats.mp4", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "video/mp4", rec.Header().Get("Content-Type"))
	assert.Equal(t, 1024, rec.Body.Len())

	rec = env.do(t, http.MethodGet, "/api/review/.hidden.mp4", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/review/cats.mp4/approve", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/api/published/cats.mp4", decodeBody[map[string]any](t, rec)["published"])

	rec = env.do(t, http.MethodGet, "/api/published", "")
	require.Equal(t, http.StatusOK, rec.Code)
	listing := decodeBody[service.PublishedListing](t, rec)
	assert.Len(t, listing.Videos, 1)
	assert.Equal(t, 1, listing.TodayCount)
	assert.Equal(t, 2, listing.DailyTarget)

	rec = env.do(t, http.MethodGet, "/api/published/cats.mp4", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/review/cats.mp4/reject", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Clips(t *testing.T) {
	env := newTestEnv(t, "")
	clip := &domain.Clip{ID: "c1", Source: "standup", Score: 7}
	env.clips.EXPECT().List("standup", 5).Return([]*domain.Clip{clip}, nil).Once()
	env.clips.EXPECT().Get("c1").Return(clip, nil).Twice()
	env.clips.EXPECT().Get("nope").Return(nil, domain.ErrNotFound).Once()

	rec := env.do(t, http.MethodGet, "/api/clips?source=standup&min_score=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]domain.Clip](t, rec), 1)

	rec = env.do(t, http.MethodGet, "/api/clips?min_score=high", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/clips/c1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "standup", decodeBody[domain.Clip](t, rec).Source)

	rec = env.do(t, http.MethodGet, "/api/clips/c1/thumbnail", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))

	rec = env.do(t, http.MethodGet, "/api/clips/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_ClipVideo(t *testing.T) {
	env := newTestEnv(t, "")
	rendered := filepath.Join(env.audioDir, "c1.mp4")
	require.NoError(t, os.WriteFile(rendered, []byte("mp4"), 0644))
	env.clips.EXPECT().Get("c1").Return(&domain.Clip{ID: "c1", RenderedFile: rendered}, nil).Once()
	env.clips.EXPECT().Get("c2").Return(&domain.Clip{ID: "c2"}, nil).Once()
	env.clips.EXPECT().Get("c3").Return(&domain.Clip{ID: "c3", RenderedFile: filepath.Join(env.audioDir, "gone.mp4")}, nil).Once()

	rec := env.do(t, http.MethodGet, "/api/clips/c1/video", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "video/mp4", rec.Header().Get("Content-Type"))
	assert.Equal(t, "mp4", rec.Body.String())

	for _, id := range []string{"c2", "c3"} {
		rec = env.do(t, http.MethodGet, "/api/clips/"+id+"/video", "")
		assert.Equal(t, http.StatusNotFound, rec.Code, id)
		assert.NotEmpty(t, decodeBody[map[string]string](t, rec)["detail"])
	}
}

func TestServer_TTSAndAudio(t *testing.T) {
	env := newTestEnv(t, "")
	audio := filepath.Join(env.audioDir, "tts_abc.mp3")
	require.NoError(t, os.WriteFile(audio, []byte("ID3"), 0644))
	env.synth.EXPECT().Synthesize(mock.Anything, "hello", "shimmer", "openai").
		Return(&domain.Speech{AudioFile: audio, Duration: 1.5}, nil).Once()
	env.synth.EXPECT().Synthesize(mock.Anything, "hello", "shimmer", "azure").
		Return(nil, &domain.SynthesisError{Provider: "azure", Err: domain.ErrUnknownProvider}).Once()

	rec := env.do(t, http.MethodPost, "/api/tts", `{"script":"hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	speech := decodeBody[domain.Speech](t, rec)
	assert.Equal(t, 1.5, speech.Duration)

	rec = env.do(t, http.MethodPost, "/api/tts", `{"script":"hello","provider":"azure"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/tts", `{"script":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/audio/tts_abc.mp3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))

	rec = env.do(t, http.MethodGet, "/api/audio/missing.mp3", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/audio/notes.txt", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func multipartUpload(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/intake", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestServer_Intake(t *testing.T) {
	env := newTestEnv(t, "")
	sub := env.bus.SubscribeAll()
	defer sub.Close()
	_, _ = sub.Next(context.Background())

	mp4 := make([]byte, 2048)
	copy(mp4, "\x00\x00\x00\x18ftypisom")

	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, multipartUpload(t, "../standup.mp4", mp4))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env.intake.Wait()

	receipt := decodeBody[service.IntakeReceipt](t, rec)
	assert.True(t, receipt.OK)
	assert.Equal(t, "standup.mp4", receipt.Filename)
	saved, err := os.ReadFile(filepath.Join(env.inboxDir, "standup.mp4"))
	require.NoError(t, err)
	assert.Equal(t, mp4, saved)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	msg, err := sub.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.EventKindIntake, msg.Event.Kind())

	rec = httptest.NewRecorder()
	env.server.ServeHTTP(rec, multipartUpload(t, "fake.mp4", []byte("<html>not a video</html>")))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = httptest.NewRecorder()
	env.server.ServeHTTP(rec, multipartUpload(t, "script.sh", mp4))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = httptest.NewRecorder()
	env.server.ServeHTTP(rec, multipartUpload(t, "big.mp4", make([]byte, 2<<20)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestServer_EventStream(t *testing.T) {
	env := newTestEnv(t, "")
	ts := httptest.NewServer(env.server)
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events/job-42", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "no", resp.Header.Get("X-Accel-Buffering"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": keepalive\n", line)
	_, err = reader.ReadString('\n')
	require.NoError(t, err)

	env.bus.Emit("other-job", domain.ProgressEvent{Step: "hook", Pct: 10})
	env.bus.Emit("job-42", domain.StatusEvent{Status: domain.JobStatusRendering, Mode: domain.ModeMeme})

	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: status\n", line)
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, `data: {"job_id":"job-42","status":"rendering","mode":"meme"}`+"\n", line)

	cancel()
	require.Eventually(t, func() bool { return env.bus.SubscriberCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestServer_Dashboard(t *testing.T) {
	env := newTestEnv(t, "")
	rec := env.do(t, http.MethodPost, "/api/render", `{"mode":"cta_only","output_name":"end-card"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = env.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "end-card")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = env.do(t, http.MethodGet, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

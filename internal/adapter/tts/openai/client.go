package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bnema/clipforge/internal/domain"
	"github.com/bnema/clipforge/internal/infrastructure/logger"
	"github.com/bnema/clipforge/internal/port"
)

const (
	// Provider is the only provider name this client answers to.
	Provider = "openai"

	defaultBaseURL     = "https://api.openai.com"
	defaultModel       = "tts-1"
	defaultHTTPTimeout = 60 * time.Second
	maxErrorBody       = 512
)

var ErrMissingAPIKey = errors.New("tts: api key required")

// DurationProber measures the length of a written audio file.
type DurationProber interface {
	ProbeDuration(path string) (float64, error)
}

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	OutDir  string
}

// Client synthesizes speech with the OpenAI audio API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	prober     DurationProber
}

var _ port.Synthesizer = (*Client)(nil)

type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func NewClient(cfg Config, prober DurationProber, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		prober:     prober,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type speechRequest struct {
	Model          string `json:"model"`
	Voice          string `json:"voice"`
	Input          string `json:"input"`
	ResponseFormat string `json:"response_format"`
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Synthesize renders script with voice into an mp3 in the output directory.
// Any failure is returned as a *domain.SynthesisError.
func (c *Client) Synthesize(ctx context.Context, script, voice, provider string) (*domain.Speech, error) {
	if provider == "" {
		provider = Provider
	}
	if provider != Provider {
		return nil, &domain.SynthesisError{Provider: provider, Err: domain.ErrUnknownProvider}
	}
	speech, err := c.synthesize(ctx, script, voice)
	if err != nil {
		return nil, &domain.SynthesisError{Provider: provider, Err: err}
	}
	return speech, nil
}

func (c *Client) synthesize(ctx context.Context, script, voice string) (*domain.Speech, error) {
	script = strings.TrimSpace(script)
	if script == "" {
		return nil, errors.New("script is empty")
	}
	if c.cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	body, err := json.Marshal(speechRequest{
		Model:          c.cfg.Model,
		Voice:          voice,
		Input:          script,
		ResponseFormat: "mp3",
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/audio/speech", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &httpStatusError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	if err := os.MkdirAll(c.cfg.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(c.cfg.OutDir, "tts_"+uuid.NewString()[:8]+".mp3")
	if err := writeAudio(path, resp.Body); err != nil {
		return nil, err
	}

	duration, err := c.prober.ProbeDuration(path)
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("probe audio: %w", err)
	}
	logger.Info.Printf("synthesized %.1fs of speech (voice=%s) into %s", duration, logger.SanitizeForLog(voice), filepath.Base(path))
	return &domain.Speech{AudioFile: path, Duration: duration}, nil
}

func writeAudio(path string, r io.Reader) error {
	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create audio file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write audio: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write audio: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write audio: %w", err)
	}
	return nil
}

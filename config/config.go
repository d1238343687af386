package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreBackendJSON   = "json"
	StoreBackendSQLite = "sqlite"
)

type Config struct {
	Port            int
	Domain          string
	DataDir         string
	StoreBackend    string
	MaxUploadSizeMB int
	LogLevel        string

	FFmpegPath  string
	FFprobePath string
	FontPath    string
	LogoPath    string

	ClipsFile         string
	MarketingClipsDir string
	AnalyzeCommand    string

	CTATagline  string
	CTASubtitle string
	CTAURL      string

	PollInterval     time.Duration
	CTADuration      time.Duration
	CTAOnlyDuration  time.Duration
	MaxSubtitleLines int

	OpenAIAPIKey string
	TTSBaseURL   string
	TTSModel     string

	AdminPasswordHash string
}

// Load reads the configuration from the environment. A .env file in the
// working directory, or the one named by ENV_FILE, is applied first without
// overriding variables that are already set.
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	port, err := strconv.Atoi(getEnv("PORT", "7890"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	maxUploadSizeMB, err := strconv.Atoi(getEnv("MAX_UPLOAD_SIZE_MB", "500"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_SIZE_MB: %w", err)
	}

	maxSubtitleLines, err := strconv.Atoi(getEnv("MAX_SUBTITLE_LINES", "6"))
	if err != nil || maxSubtitleLines < 1 {
		return nil, fmt.Errorf("invalid MAX_SUBTITLE_LINES: must be a positive integer")
	}

	pollInterval, err := getDuration("POLL_INTERVAL", 2*time.Second)
	if err != nil {
		return nil, err
	}
	ctaDuration, err := getDuration("CTA_DURATION", 5*time.Second)
	if err != nil {
		return nil, err
	}
	ctaOnlyDuration, err := getDuration("CTA_ONLY_DURATION", 8*time.Second)
	if err != nil {
		return nil, err
	}

	backend := getEnv("STORE_BACKEND", StoreBackendJSON)
	if backend != StoreBackendJSON && backend != StoreBackendSQLite {
		return nil, fmt.Errorf("invalid STORE_BACKEND %q: want %q or %q", backend, StoreBackendJSON, StoreBackendSQLite)
	}

	dataDir := getEnv("DATA_DIR", "./studio")

	return &Config{
		Port:            port,
		Domain:          getEnv("DOMAIN", "localhost:7890"),
		DataDir:         dataDir,
		StoreBackend:    backend,
		MaxUploadSizeMB: maxUploadSizeMB,
		LogLevel:        getEnv("LOG_LEVEL", "info"),

		FFmpegPath:  getEnv("FFMPEG_PATH", "ffmpeg"),
		FFprobePath: getEnv("FFPROBE_PATH", "ffprobe"),
		FontPath:    getEnv("FONT_PATH", "/usr/share/fonts/truetype/msttcorefonts/Impact.ttf"),
		LogoPath:    getEnv("LOGO_PATH", filepath.Join(dataDir, "brand", "logo.png")),

		ClipsFile:         getEnv("CLIPS_FILE", filepath.Join(dataDir, "clips.json")),
		MarketingClipsDir: getEnv("MARKETING_CLIPS_DIR", filepath.Join(dataDir, "marketing_clips")),
		AnalyzeCommand:    os.Getenv("ANALYZE_COMMAND"),

		CTATagline:  getEnv("CTA_TAGLINE", "Try CrowdListen now"),
		CTASubtitle: getEnv("CTA_SUBTITLE", "the PM for AI Agents"),
		CTAURL:      getEnv("CTA_URL", "crowdlisten.com"),

		PollInterval:     pollInterval,
		CTADuration:      ctaDuration,
		CTAOnlyDuration:  ctaOnlyDuration,
		MaxSubtitleLines: maxSubtitleLines,

		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		TTSBaseURL:   getEnv("TTS_BASE_URL", "https://api.openai.com"),
		TTSModel:     getEnv("TTS_MODEL", "tts-1"),

		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
	}, nil
}

func (c *Config) TmpDir() string       { return filepath.Join(c.DataDir, "tmp") }
func (c *Config) ReviewDir() string    { return filepath.Join(c.DataDir, "review") }
func (c *Config) PublishedDir() string { return filepath.Join(c.DataDir, "published") }
func (c *Config) InboxDir() string     { return filepath.Join(c.DataDir, "inbox") }

// EnsureDirectories creates every runtime directory the studio writes to.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.DataDir, c.TmpDir(), c.ReviewDir(), c.PublishedDir(), c.InboxDir(), c.MarketingClipsDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration accepts Go duration strings ("1500ms") or plain seconds ("5").
func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("invalid %s: must be positive", key)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return d, nil
}

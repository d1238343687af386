package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/clipforge/config"
	catalogjson "github.com/bnema/clipforge/internal/adapter/catalog/jsonfile"
	"github.com/bnema/clipforge/internal/adapter/encoder/ffmpeg"
	HTTPAdapter "github.com/bnema/clipforge/internal/adapter/http"
	"github.com/bnema/clipforge/internal/adapter/tts/openai"
	"github.com/bnema/clipforge/internal/infrastructure/logger"
	"github.com/bnema/clipforge/internal/service"
)

const shutdownTimeout = 30 * time.Second

// newHTTPServer returns a server whose request contexts are cancelled when
// Shutdown starts, so open event streams end instead of holding it up.
func newHTTPServer(addr string, handler http.Handler) *http.Server {
	baseCtx, cancelRequests := context.WithCancel(context.Background())
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	srv.RegisterOnShutdown(cancelRequests)
	return srv
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the render worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func pipelineConfig(cfg *config.Config) service.PipelineConfig {
	pc := service.DefaultPipelineConfig()
	pc.MaxSubtitleLines = cfg.MaxSubtitleLines
	pc.CTADuration = cfg.CTADuration
	pc.CTAOnlyDuration = cfg.CTAOnlyDuration
	pc.DefaultCTA = ctaText(cfg)
	pc.FontPath = cfg.FontPath
	pc.LogoPath = cfg.LogoPath
	pc.TmpDir = cfg.TmpDir()
	pc.ReviewDir = cfg.ReviewDir()
	return pc
}

func ctaText(cfg *config.Config) service.CTAText {
	return service.CTAText{Tagline: cfg.CTATagline, Subtitle: cfg.CTASubtitle, URL: cfg.CTAURL}
}

func serve(parent context.Context, cfg *config.Config) error {
	logger.Info.Printf("starting clipforge on port %d, data=%s, store=%s", cfg.Port, cfg.DataDir, cfg.StoreBackend)

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore()

	bus := service.NewEventBus()
	runner := ffmpeg.NewRunner(cfg.FFmpegPath, cfg.FFprobePath, bus)
	tts := openai.NewClient(openai.Config{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.TTSBaseURL,
		Model:   cfg.TTSModel,
		OutDir:  cfg.TmpDir(),
	}, runner)
	if cfg.OpenAIAPIKey == "" {
		logger.Warn.Printf("OPENAI_API_KEY is not set, narration jobs without audio will fail")
	}

	pipeline := service.NewRenderPipeline(runner, tts, bus, pipelineConfig(cfg))
	processor := service.NewQueueProcessor(store, pipeline, cfg.PollInterval)

	catalog := catalogjson.NewCatalog(cfg.ClipsFile)
	jobs := service.NewJobService(store, catalog, processor, ctaText(cfg))
	review := service.NewReviewService(cfg.ReviewDir(), cfg.PublishedDir(), jobs)
	intake := service.NewIntakeService(cfg.MarketingClipsDir, cfg.AnalyzeCommand, bus)

	if cfg.AdminPasswordHash == "" {
		logger.Warn.Printf("ADMIN_PASSWORD_HASH is not set, admin routes are open")
	}
	server := HTTPAdapter.NewServer(HTTPAdapter.Deps{
		Jobs:              jobs,
		Review:            review,
		Clips:             catalog,
		Thumbnails:        pipeline,
		Synthesizer:       tts,
		Intake:            intake,
		Events:            bus,
		AudioDir:          cfg.TmpDir(),
		MaxUploadSizeMB:   cfg.MaxUploadSizeMB,
		AdminPasswordHash: cfg.AdminPasswordHash,
	})

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	processor.Start(ctx)

	addr := fmt.Sprintf(":%d", cfg.Port)
	httpServer := newHTTPServer(addr, server)

	errCh := make(chan error, 1)
	go func() {
		logger.Info.Printf("server listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		stop()
		<-processor.Done()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}
	logger.Info.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error.Printf("http shutdown error: %v", err)
	}

	// The worker finishes the job it is rendering before it returns.
	<-processor.Done()
	intake.Wait()
	logger.Info.Printf("shutdown complete")
	return nil
}

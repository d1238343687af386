package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bnema/clipforge/internal/domain"
	"github.com/bnema/clipforge/internal/infrastructure/logger"
)

const DailyTarget = 2

type VideoFile struct {
	Filename  string    `json:"filename"`
	SizeMB    float64   `json:"size_mb"`
	CreatedAt time.Time `json:"created_at"`
	URL       string    `json:"url"`
}

type PublishedListing struct {
	Videos      []VideoFile `json:"videos"`
	TodayCount  int         `json:"today_count"`
	DailyTarget int         `json:"daily_target"`
}

// JobPublisher marks the job behind an approved file as published.
type JobPublisher interface {
	MarkPublished(filename string) (*domain.Job, error)
}

// ReviewService manages finished videos awaiting approval and the published
// archive.
type ReviewService struct {
	reviewDir    string
	publishedDir string
	jobs         JobPublisher
	now          func() time.Time
}

func NewReviewService(reviewDir, publishedDir string, jobs JobPublisher) *ReviewService {
	return &ReviewService{
		reviewDir:    reviewDir,
		publishedDir: publishedDir,
		jobs:         jobs,
		now:          time.Now,
	}
}

// checkVideoName rejects anything but a plain, visible .mp4 file name.
func checkVideoName(filename string) error {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") ||
		strings.ContainsAny(filename, `/\`) || !strings.EqualFold(filepath.Ext(filename), ".mp4") {
		return domain.ErrInvalidName
	}
	return nil
}

func resolveVideo(dir, filename string) (string, error) {
	if err := checkVideoName(filename); err != nil {
		return "", err
	}
	path := filepath.Join(dir, filename)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	if info.IsDir() {
		return "", domain.ErrNotFound
	}
	return path, nil
}

func listVideos(dir, urlPrefix string) ([]VideoFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []VideoFile{}, nil
		}
		return nil, err
	}

	videos := make([]VideoFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || checkVideoName(e.Name()) != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		videos = append(videos, VideoFile{
			Filename:  e.Name(),
			SizeMB:    domain.FormatSizeMB(info.Size()),
			CreatedAt: info.ModTime().UTC(),
			URL:       urlPrefix + e.Name(),
		})
	}
	sort.SliceStable(videos, func(i, j int) bool {
		return videos[i].CreatedAt.After(videos[j].CreatedAt)
	})
	return videos, nil
}

// ListReview returns the videos awaiting review, newest first.
func (s *ReviewService) ListReview() ([]VideoFile, error) {
	return listVideos(s.reviewDir, "/api/review/")
}

// ListPublished returns the published archive with today's count.
func (s *ReviewService) ListPublished() (*PublishedListing, error) {
	videos, err := listVideos(s.publishedDir, "/api/published/")
	if err != nil {
		return nil, err
	}
	y, m, d := s.now().UTC().Date()
	today := 0
	for _, v := range videos {
		vy, vm, vd := v.CreatedAt.Date()
		if vy == y && vm == m && vd == d {
			today++
		}
	}
	return &PublishedListing{Videos: videos, TodayCount: today, DailyTarget: DailyTarget}, nil
}

func (s *ReviewService) ReviewPath(filename string) (string, error) {
	return resolveVideo(s.reviewDir, filename)
}

func (s *ReviewService) PublishedPath(filename string) (string, error) {
	return resolveVideo(s.publishedDir, filename)
}

// Approve moves filename into the published archive and returns its URL.
func (s *ReviewService) Approve(filename string) (string, error) {
	src, err := s.ReviewPath(filename)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.publishedDir, 0755); err != nil {
		return "", fmt.Errorf("create published dir: %w", err)
	}
	if err := moveFile(src, filepath.Join(s.publishedDir, filename)); err != nil {
		return "", fmt.Errorf("publish %s: %w", filename, err)
	}

	if s.jobs != nil {
		job, err := s.jobs.MarkPublished(filename)
		switch {
		case err != nil:
			logger.Warn.Printf("approved %s but could not update its job: %v", logger.SanitizeForLog(filename), err)
		case job != nil:
			logger.Info.Printf("job %s published as %s", job.ID, logger.SanitizeForLog(filename))
		}
	}
	return "/api/published/" + filename, nil
}

// Reject deletes filename from the review directory.
func (s *ReviewService) Reject(filename string) error {
	path, err := s.ReviewPath(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("reject %s: %w", filename, err)
	}
	logger.Info.Printf("rejected %s", logger.SanitizeForLog(filename))
	return nil
}

package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/bnema/clipforge/internal/domain"
	"github.com/bnema/clipforge/internal/infrastructure/logger"
	"github.com/bnema/clipforge/internal/port"
)

const intakeErrorTail = 300

type IntakeReceipt struct {
	OK       bool   `json:"ok"`
	JobID    string `json:"job_id"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

// IntakeService stores uploaded source videos and runs the clip analysis
// command on them in the background.
type IntakeService struct {
	dir     string
	command []string
	events  port.EventPublisher
	wg      sync.WaitGroup
}

// NewIntakeService stores uploads in dir. command is split on whitespace and
// receives the saved file path as its last argument; an empty command skips
// analysis.
func NewIntakeService(dir, command string, events port.EventPublisher) *IntakeService {
	return &IntakeService{
		dir:     dir,
		command: strings.Fields(command),
		events:  events,
	}
}

// Accept saves the upload as filename and starts the analysis.
func (s *IntakeService) Accept(filename string, r io.Reader) (*IntakeReceipt, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return nil, domain.ErrInvalidName
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("create intake dir: %w", err)
	}

	dest := filepath.Join(s.dir, filename)
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return nil, fmt.Errorf("save upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return nil, fmt.Errorf("save upload: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		_ = os.Remove(tmp.Name())
		return nil, fmt.Errorf("save upload: %w", err)
	}

	id := uuid.NewString()
	s.emit(id, domain.IntakeEvent{Status: domain.IntakeAnalyzing, Filename: filename})
	logger.Info.Printf("intake %s: saved %s", id, logger.SanitizeForLog(filename))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.analyze(id, filename, dest)
	}()

	return &IntakeReceipt{OK: true, JobID: id, Filename: filename, Path: dest}, nil
}

// Wait blocks until every running analysis has finished.
func (s *IntakeService) Wait() {
	s.wg.Wait()
}

func (s *IntakeService) analyze(id, filename, path string) {
	if len(s.command) == 0 {
		s.emit(id, domain.IntakeEvent{Status: domain.IntakeDone, Filename: filename})
		return
	}

	args := append(append([]string{}, s.command[1:]...), path)
	cmd := exec.CommandContext(context.Background(), s.command[0], args...)
	cmd.Dir = filepath.Dir(s.dir)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := tail(stderr.String(), intakeErrorTail)
		if msg == "" {
			msg = err.Error()
		}
		logger.Error.Printf("intake %s: analysis failed: %s", id, logger.SanitizeForLog(msg))
		s.emit(id, domain.IntakeEvent{Status: domain.IntakeFailed, Filename: filename, Error: msg})
		return
	}
	logger.Info.Printf("intake %s: analysis done", id)
	s.emit(id, domain.IntakeEvent{Status: domain.IntakeDone, Filename: filename})
}

func (s *IntakeService) emit(id string, ev domain.IntakeEvent) {
	s.events.Publish(domain.Event{JobID: id, Data: ev})
}

// tail returns the last n bytes of s.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

package ffmpeg

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/bnema/clipforge/internal/domain"
	"github.com/bnema/clipforge/internal/infrastructure/logger"
	"github.com/bnema/clipforge/internal/port"
)

var (
	ErrEmptyPath   = errors.New("empty path")
	ErrInvalidPath = errors.New("path contains null byte")
)

// stderrTail is how much of the diagnostic stream an EncodeError keeps.
const stderrTail = 600

var durationRe = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+(?:\.\d+)?)`)

// Runner drives the ffmpeg and ffprobe binaries.
type Runner struct {
	ffmpeg  string
	ffprobe string
	events  port.EventPublisher
}

var _ port.Encoder = (*Runner)(nil)

func NewRunner(ffmpegPath, ffprobePath string, events port.EventPublisher) *Runner {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Runner{ffmpeg: ffmpegPath, ffprobe: ffprobePath, events: events}
}

func validatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if strings.ContainsRune(path, 0) {
		return ErrInvalidPath
	}
	return nil
}

func validateArgs(args []string) error {
	for _, a := range args {
		if strings.ContainsRune(a, 0) {
			return fmt.Errorf("argument %q: %w", a, ErrInvalidPath)
		}
	}
	return nil
}

func (r *Runner) emit(jobID, step string, pct int) {
	if jobID == "" || r.events == nil {
		return
	}
	r.events.Publish(domain.Event{JobID: jobID, Data: domain.ProgressEvent{Step: step, Pct: pct}})
}

// Run executes one encode. Progress is read from ffmpeg's machine-readable
// progress stream on stdout and reported as a percentage of the expected
// duration, which comes from a -t argument or from the sum of the inputs'
// Duration lines.
func (r *Runner) Run(args []string, jobID, step string) error {
	if err := validateArgs(args); err != nil {
		return err
	}

	full := append([]string{"-y", "-progress", "pipe:1", "-nostats"}, args...)
	cmd := exec.Command(r.ffmpeg, full...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stderr: %w", err)
	}

	tracker := newProgress(durationFromArgs(args))
	tail := newTailBuffer(stderrTail)

	logger.Debug.Printf("ffmpeg [%s] %s", step, logger.SanitizeForLog(strings.Join(args, " ")))
	if err := cmd.Start(); err != nil {
		return &domain.EncodeError{Step: step, Stderr: err.Error(), Err: err}
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		scanLines(stderr, func(line string) {
			_, _ = tail.WriteString(line + "\n")
			if secs, ok := parseDurationLine(line); ok {
				tracker.addInput(secs)
			}
		})
	}()

	scanLines(stdout, func(line string) {
		micros, ok := parseOutTime(line)
		if !ok {
			return
		}
		if pct, changed := tracker.advance(micros); changed {
			r.emit(jobID, step, pct)
		}
	})

	wg.Wait()
	if err := cmd.Wait(); err != nil {
		return &domain.EncodeError{Step: step, Stderr: tail.String(), Err: err}
	}

	r.emit(jobID, step, 100)
	return nil
}

// RunQuick executes a short encode without progress parsing.
func (r *Runner) RunQuick(args []string, jobID, step string) error {
	if err := validateArgs(args); err != nil {
		return err
	}

	cmd := exec.Command(r.ffmpeg, append([]string{"-y"}, args...)...)
	tail := newTailBuffer(stderrTail)
	cmd.Stderr = tail
	if err := cmd.Run(); err != nil {
		return &domain.EncodeError{Step: step, Stderr: tail.String(), Err: err}
	}

	r.emit(jobID, step, 100)
	return nil
}

// ProbeDuration returns the container duration of path in seconds.
func (r *Runner) ProbeDuration(path string) (float64, error) {
	if err := validatePath(path); err != nil {
		return 0, err
	}

	cmd := exec.Command(r.ffprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe domain.ProbeResult
	if err := json.Unmarshal(output, &probe); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	secs := probe.Seconds()
	if secs <= 0 {
		return 0, fmt.Errorf("ffprobe reported no duration for %s", path)
	}
	return secs, nil
}

func scanLines(r io.Reader, fn func(string)) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		fn(strings.TrimSpace(scanner.Text()))
	}
	// Drain whatever is left so the process never blocks on a full pipe.
	_, _ = io.Copy(io.Discard, r)
}

// durationFromArgs returns the value of the first parseable -t argument.
func durationFromArgs(args []string) float64 {
	for i := 0; i < len(args)-1; i++ {
		if args[i] != "-t" {
			continue
		}
		if secs, err := strconv.ParseFloat(args[i+1], 64); err == nil && secs > 0 {
			return secs
		}
	}
	return 0
}

// parseOutTime reads an out_time_ms or out_time_us progress line. Both are
// microseconds.
func parseOutTime(line string) (int64, bool) {
	key, value, ok := strings.Cut(line, "=")
	if !ok || (key != "out_time_ms" && key != "out_time_us") {
		return 0, false
	}
	micros, err := strconv.ParseInt(value, 10, 64)
	if err != nil || micros < 0 {
		return 0, false
	}
	return micros, true
}

func parseDurationLine(line string) (float64, bool) {
	m := durationRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	mi, _ := strconv.Atoi(m[2])
	s, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return 0, false
	}
	return float64(h*3600+mi*60) + s, true
}

// progress turns encoded time into a percentage that never decreases and
// stays below 100 until the process has exited.
type progress struct {
	mu    sync.Mutex
	total float64
	fixed bool
	last  int
}

// newProgress starts with a known output duration, or 0 to add up the
// inputs as ffmpeg reports them.
func newProgress(total float64) *progress {
	return &progress{total: total, fixed: total > 0, last: -1}
}

// addInput counts one input's duration towards the total. Multi-input steps
// such as concatenation last as long as all their inputs together.
func (p *progress) addInput(secs float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.fixed && secs > 0 {
		p.total += secs
	}
}

func (p *progress) advance(micros int64) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.total <= 0 {
		return 0, false
	}
	pct := min(int(float64(micros)/1e6/p.total*100), 99)
	if pct <= p.last {
		return p.last, false
	}
	p.last = pct
	return pct, true
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) WriteString(s string) (int, error) {
	return t.Write([]byte(s))
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}

package domain

import "strconv"

// ProbeFormat is the subset of ffprobe's format section we read.
type ProbeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
}

type ProbeResult struct {
	Format ProbeFormat `json:"format"`
}

// Seconds returns the container duration, or 0 when ffprobe reported none.
func (p *ProbeResult) Seconds() float64 {
	return ParseDuration(p.Format.Duration)
}

func ParseDuration(durationStr string) float64 {
	if durationStr == "" || durationStr == "N/A" {
		return 0
	}
	duration, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return 0
	}
	return duration
}

// FormatSizeMB renders a byte count the way the review listing reports it.
func FormatSizeMB(bytes int64) float64 {
	mb := float64(bytes) / 1024 / 1024
	return float64(int64(mb*10+0.5)) / 10
}

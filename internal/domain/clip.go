package domain

// Clip is a catalogued window of a source video.
type Clip struct {
	ID              string `json:"id"`
	Source          string `json:"source"`
	SourceFile      string `json:"source_file"`
	StartSeconds    int    `json:"start_seconds"`
	DurationSeconds int    `json:"duration_seconds"`
	Caption         string `json:"caption"`
	Score           int    `json:"score"`
	RenderedFile    string `json:"rendered_file,omitempty"`
}

// Speech is a synthesized voice track.
type Speech struct {
	AudioFile string  `json:"audio_file"`
	Duration  float64 `json:"duration"`
}

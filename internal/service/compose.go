package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/width"
)

// CTAText is the three-line call-to-action card.
type CTAText struct {
	Tagline  string
	Subtitle string
	URL      string
}

// PipelineConfig holds the layout constants and filesystem locations used
// when composing a video.
type PipelineConfig struct {
	Width           int
	Height          int
	VideoBandHeight int

	MaxFontSize    int
	MinFontSize    int
	CharWidthRatio float64
	CanvasWidth    int
	Border         int
	CaptionWrap    int

	SubtitleWrap     int
	SubtitleFontSize int
	MaxSubtitleLines int

	CTADuration     time.Duration
	CTAOnlyDuration time.Duration
	DefaultCTA      CTAText

	FontPath  string
	LogoPath  string
	TmpDir    string
	ReviewDir string
}

func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Width:            1080,
		Height:           1920,
		VideoBandHeight:  608,
		MaxFontSize:      76,
		MinFontSize:      44,
		CharWidthRatio:   0.50,
		CanvasWidth:      1020,
		Border:           6,
		CaptionWrap:      26,
		SubtitleWrap:     32,
		SubtitleFontSize: 54,
		MaxSubtitleLines: 6,
		CTADuration:      5 * time.Second,
		CTAOnlyDuration:  8 * time.Second,
	}
}

// videoTop is the y offset of the letterboxed source video.
func (c PipelineConfig) videoTop() int {
	return (c.Height - c.VideoBandHeight) / 2
}

var encodeVideoArgs = []string{"-c:v", "libx264", "-crf", "20", "-preset", "fast"}

var encodeAudioArgs = []string{"-c:a", "aac", "-b:a", "128k"}

var faststartArgs = []string{"-movflags", "+faststart"}

// escapeDrawtext makes text safe inside a quoted drawtext value. Straight and
// left single quotes become right single quotes.
func escapeDrawtext(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		"'", "’",
		"‘", "’",
		":", `\:`,
		",", `\,`,
		"%", `\%`,
	)
	return r.Replace(s)
}

// displayWidth counts terminal-style columns: East Asian wide and fullwidth
// runes take two.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

// wrapText splits text on newlines and greedily wraps every segment wider
// than maxCols at word boundaries. Words longer than maxCols are broken.
func wrapText(text string, maxCols int) []string {
	var lines []string
	for _, seg := range strings.Split(text, "\n") {
		if displayWidth(seg) <= maxCols {
			lines = append(lines, seg)
			continue
		}
		lines = append(lines, wrapSegment(seg, maxCols)...)
	}
	return lines
}

func wrapSegment(seg string, maxCols int) []string {
	var lines []string
	var cur strings.Builder
	curW := 0

	flush := func() {
		if curW > 0 {
			lines = append(lines, cur.String())
			cur.Reset()
			curW = 0
		}
	}

	for _, word := range strings.Fields(seg) {
		w := displayWidth(word)
		if w > maxCols {
			flush()
			lines = append(lines, breakWord(word, maxCols)...)
			continue
		}
		need := w
		if curW > 0 {
			need++
		}
		if curW+need > maxCols {
			flush()
			need = w
		}
		if curW > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
		curW += need
	}
	flush()
	return lines
}

func breakWord(word string, maxCols int) []string {
	var chunks []string
	start, w := 0, 0
	for i, r := range word {
		rw := displayWidth(string(r))
		if w+rw > maxCols && w > 0 {
			chunks = append(chunks, word[start:i])
			start, w = i, 0
		}
		w += rw
	}
	if start < len(word) {
		chunks = append(chunks, word[start:])
	}
	return chunks
}

// fontSizeFor picks the largest caption size that fits the longest line on
// the canvas, clamped to the configured range.
func (c PipelineConfig) fontSizeFor(lines []string) int {
	longest := 0
	for _, l := range lines {
		if w := displayWidth(l); w > longest {
			longest = w
		}
	}
	if longest == 0 {
		longest = 1
	}
	size := int(float64(c.CanvasWidth) / (float64(longest) * c.CharWidthRatio))
	return max(c.MinFontSize, min(c.MaxFontSize, size))
}

func (c PipelineConfig) drawtext(text, color string, size, border, y int) string {
	return fmt.Sprintf("drawtext=fontfile='%s':text='%s':fontcolor=%s:fontsize=%d:borderw=%d:bordercolor=black:x=(w-text_w)/2:y=%d",
		c.FontPath, escapeDrawtext(text), color, size, border, y)
}

// captionFilters letterboxes the source into the frame and burns the wrapped
// caption into the band above the video.
func (c PipelineConfig) captionFilters(caption string) string {
	lines := wrapText(caption, c.CaptionWrap)
	fs := c.fontSizeFor(lines)
	lh := fs + 10
	blockY := max((c.videoTop()-len(lines)*lh)/2, 24)

	filters := []string{
		fmt.Sprintf("scale=%d:-2", c.Width),
		fmt.Sprintf("pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black", c.Width, c.Height),
	}
	for i, line := range lines {
		filters = append(filters, c.drawtext(line, "white", fs, c.Border, blockY+i*lh))
	}
	return strings.Join(filters, ",")
}

// captionedClipArgs cuts startSec..startSec+durationSec out of source with the
// caption burned in.
func (c PipelineConfig) captionedClipArgs(source string, startSec, durationSec int, caption, out string) []string {
	args := []string{
		"-ss", strconv.Itoa(startSec),
		"-i", source,
		"-t", strconv.Itoa(durationSec),
		"-vf", c.captionFilters(caption),
	}
	args = append(args, encodeVideoArgs...)
	args = append(args, encodeAudioArgs...)
	args = append(args, faststartArgs...)
	return append(args, out)
}

// subtitleLines wraps script and keeps at most MaxSubtitleLines. The second
// result reports how many lines were dropped.
func (c PipelineConfig) subtitleLines(script string) ([]string, int) {
	lines := wrapText(script, c.SubtitleWrap)
	if len(lines) > c.MaxSubtitleLines {
		return lines[:c.MaxSubtitleLines], len(lines) - c.MaxSubtitleLines
	}
	return lines, 0
}

// bodyArgs renders the narration segment: dark background, translucent logo
// in the top-right corner, subtitles in the lower third and the voice track.
func (c PipelineConfig) bodyArgs(lines []string, audioFile string, audioSeconds float64, out string) []string {
	fs := c.SubtitleFontSize
	lh := fs + 12
	baseY := int(float64(c.Height) * 0.70)

	subs := make([]string, 0, len(lines))
	for i, line := range lines {
		subs = append(subs, c.drawtext(line, "white", fs, 4, baseY+i*lh))
	}

	logo := "[1:v]scale=100:-1,format=rgba,colorchannelmixer=aa=0.4[logo];[0:v][logo]overlay=W-100-16:16[bg_logo]"
	chain := "[bg_logo]copy[v]"
	if len(subs) > 0 {
		chain = "[bg_logo]" + strings.Join(subs, ",") + "[v]"
	}

	args := []string{
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=0x0a0a0a:s=%dx%d:r=30", c.Width, c.Height),
		"-i", c.LogoPath,
		"-i", audioFile,
		"-t", formatSeconds(audioSeconds),
		"-filter_complex", logo + ";" + chain,
		"-map", "[v]", "-map", "2:a",
	}
	args = append(args, encodeVideoArgs...)
	args = append(args, encodeAudioArgs...)
	args = append(args, faststartArgs...)
	return append(args, out)
}

// ctaArgs renders the branded end card: centered logo above three lines of
// text on black.
func (c PipelineConfig) ctaArgs(text CTAText, d time.Duration, out string) []string {
	mid := c.Height / 2
	logoY := mid - 200 - 60

	filter := fmt.Sprintf("[1:v]scale=300:-1,format=rgba[logo];[0:v][logo]overlay=(W-300)/2:%d[bg_logo];[bg_logo]%s,%s,%s[v]",
		logoY,
		c.drawtext(text.Tagline, "white", 52, 4, mid+20),
		c.drawtext(text.Subtitle, "#a5b4fc", 38, 3, mid+90),
		c.drawtext(text.URL, "#cccccc", 32, 2, mid+155),
	)

	args := []string{
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=black:s=%dx%d:r=30", c.Width, c.Height),
		"-i", c.LogoPath,
		"-t", formatSeconds(d.Seconds()),
		"-filter_complex", filter,
		"-map", "[v]",
	}
	args = append(args, encodeVideoArgs...)
	args = append(args, faststartArgs...)
	return append(args, out)
}

func silentAudioArgs(video string, d time.Duration, out string) []string {
	args := []string{
		"-i", video,
		"-f", "lavfi", "-i", "anullsrc=r=44100:cl=stereo",
		"-t", formatSeconds(d.Seconds()),
		"-c:v", "copy",
	}
	args = append(args, encodeAudioArgs...)
	return append(args, "-shortest", out)
}

func assembleArgs(hook, body, cta, out string) []string {
	args := []string{
		"-i", hook, "-i", body, "-i", cta,
		"-filter_complex", "[0:v][0:a][1:v][1:a][2:v][2:a]concat=n=3:v=1:a=1[v][a]",
		"-map", "[v]", "-map", "[a]",
	}
	args = append(args, encodeVideoArgs...)
	args = append(args, encodeAudioArgs...)
	args = append(args, faststartArgs...)
	return append(args, out)
}

func thumbnailArgs(source string, startSec int, out string) []string {
	return []string{
		"-ss", strconv.Itoa(startSec + 2),
		"-i", source,
		"-vframes", "1",
		"-vf", "scale=270:-2",
		"-q:v", "3",
		out,
	}
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}

package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeForLog(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain caption", "when the PM says ship it", "when the PM says ship it"},
		{"empty", "", ""},
		{"newline", "line1\nline2", `line1\nline2`},
		{"crlf", "a\r\nb", `a\r\nb`},
		{"tab", "col1\tcol2", `col1\tcol2`},
		{"null byte", "before\x00after", `before\x00after`},
		{"ansi escape", "\x1b[31mred", `\x1b[31mred`},
		{"delete", "del\x7f", `del\x7f`},
		{"unicode kept", "字幕 café 👋", "字幕 café 👋"},
		{"forged entry", "clip.mp4\nERROR: fake", `clip.mp4\nERROR: fake`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeForLog(tt.input))
		})
	}
}

func TestSanitizeForLog_NoRawControlChars(t *testing.T) {
	for i := 0; i < 0x20; i++ {
		out := SanitizeForLog(string(rune(i)))
		for _, r := range out {
			assert.False(t, r < 0x20, "control char 0x%02x leaked", i)
		}
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "字幕...", Truncate("字幕字幕", 2))
	assert.Equal(t, "keep", Truncate("keep", 0))
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	t.Cleanup(func() { SetLevel("info") })

	SetLevel("debug")
	Debug.SetOutput(&buf)
	Debug.Print("visible")
	assert.Contains(t, buf.String(), "visible")

	SetLevel("info")
	buf.Reset()
	Debug.Print("hidden")
	assert.Empty(t, buf.String())
}

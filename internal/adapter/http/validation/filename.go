package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const maxNameBytes = 255

var ErrUnsupportedExtension = errors.New("unsupported video extension")

var videoExtensions = map[string]bool{
	".mp4":  true,
	".m4v":  true,
	".mov":  true,
	".webm": true,
	".mkv":  true,
	".avi":  true,
}

// UploadName turns a client-supplied file name into a plain name that is safe
// to store in the intake directory. Directory components are discarded,
// separators, quotes and control characters become underscores and leading
// dots are stripped.
func UploadName(name string) (string, error) {
	name = strings.ReplaceAll(name, `\`, "/")
	name = filepath.Base(name)

	var sb strings.Builder
	for _, r := range name {
		if r < 32 || r == 127 || strings.ContainsRune(`"/:`, r) {
			sb.WriteRune('_')
			continue
		}
		sb.WriteRune(r)
	}
	clean := strings.TrimLeft(strings.TrimSpace(sb.String()), ".")

	ext := strings.ToLower(filepath.Ext(clean))
	if !videoExtensions[ext] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}
	base := strings.TrimSuffix(clean, filepath.Ext(clean))
	if strings.Trim(base, "_ ") == "" {
		base = "upload"
	}
	return truncate(base, maxNameBytes-len(ext)) + ext, nil
}

// truncate cuts s to at most n bytes on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// ContentDisposition returns an inline or attachment header value for name.
func ContentDisposition(name string, inline bool) string {
	var sb strings.Builder
	for _, r := range filepath.Base(name) {
		if r < 32 || r == 127 || r == '"' || r == '\\' {
			sb.WriteRune('_')
			continue
		}
		sb.WriteRune(r)
	}
	disposition := "attachment"
	if inline {
		disposition = "inline"
	}
	return fmt.Sprintf(`%s; filename="%s"`, disposition, sb.String())
}

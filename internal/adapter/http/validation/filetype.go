// Package validation checks uploaded source videos and the names they are
// served under.
package validation

import (
	"bytes"
	"errors"
	"io"
	"net/http"
)

var ErrNotVideo = errors.New("file is not a supported video")

var videoMIMETypes = map[string]bool{
	"video/mp4":        true,
	"video/quicktime":  true,
	"video/webm":       true,
	"video/x-matroska": true,
	"video/x-msvideo":  true,
}

const sniffSize = 512

// SniffVideo reads the head of r, detects its container and rewinds r. It
// returns ErrNotVideo for anything outside the source video allowlist.
func SniffVideo(r io.ReadSeeker) (string, error) {
	buf := make([]byte, sniffSize)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	if n == 0 {
		return "", ErrNotVideo
	}

	mime := detectContainer(buf[:n])
	if mime == "" {
		mime = http.DetectContentType(buf[:n])
	}
	if !videoMIMETypes[mime] {
		return mime, ErrNotVideo
	}
	return mime, nil
}

func detectContainer(buf []byte) string {
	if len(buf) < 12 {
		return ""
	}

	// EBML header; the doctype tells WebM from Matroska.
	if bytes.HasPrefix(buf, []byte{0x1A, 0x45, 0xDF, 0xA3}) {
		if bytes.Contains(buf, []byte("webm")) {
			return "video/webm"
		}
		return "video/x-matroska"
	}

	if string(buf[0:4]) == "RIFF" && string(buf[8:12]) == "AVI " {
		return "video/x-msvideo"
	}

	// ISO base media: [size]["ftyp"][brand]
	if string(buf[4:8]) == "ftyp" {
		switch string(buf[8:12]) {
		case "qt  ":
			return "video/quicktime"
		case "M4A ", "M4B ", "M4P ":
			return "audio/mp4"
		default:
			return "video/mp4"
		}
	}
	return ""
}

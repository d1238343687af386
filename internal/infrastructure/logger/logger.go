package logger

import (
	"io"
	"log"
	"os"
	"strings"
)

var (
	Info  *log.Logger
	Error *log.Logger
	Debug *log.Logger
	Warn  *log.Logger
)

const logFlags = log.Ldate | log.Ltime | log.LUTC | log.Lshortfile

func init() {
	Info = log.New(os.Stdout, "INFO: ", logFlags)
	Error = log.New(os.Stdout, "ERROR: ", logFlags)
	Debug = log.New(io.Discard, "DEBUG: ", logFlags)
	Warn = log.New(os.Stdout, "WARN: ", logFlags)
}

// SetLevel enables debug output for "debug" and silences info for "warn"
// and "error". Unknown levels behave like "info".
func SetLevel(level string) {
	Debug.SetOutput(io.Discard)
	Info.SetOutput(os.Stdout)
	Warn.SetOutput(os.Stdout)

	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		Debug.SetOutput(os.Stdout)
	case "warn":
		Info.SetOutput(io.Discard)
	case "error":
		Info.SetOutput(io.Discard)
		Warn.SetOutput(io.Discard)
	}
}

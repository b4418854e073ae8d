package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Namespaces attached to log lines as the "ns" field
const (
	APP        = "APP"
	CHAT       = "CHAT"
	CONFIG     = "CONFIG"
	DOCUMENT   = "DOCUMENT"
	HANDLER    = "HANDLER"
	LLM        = "LLM"
	MIDDLEWARE = "MIDDLEWARE"
	REDIS      = "REDIS"
	SESSION    = "SESSION"
	WEB        = "WEB"
)

func getLogLevel() zerolog.Level {
	level := strings.ToUpper(os.Getenv("LOG_LEVEL"))
	switch level {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func getWriter(out io.Writer) io.Writer {
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "console") {
		return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return out
}

// Init configures the global zerolog logger from LOG_LEVEL and LOG_FORMAT
func Init(out io.Writer) {
	zerolog.SetGlobalLevel(getLogLevel())
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = zerolog.New(getWriter(out)).With().Timestamp().Logger()
}

// For returns the global logger tagged with a namespace
func For(namespace string) *zerolog.Logger {
	l := log.With().Str("ns", namespace).Logger()
	return &l
}

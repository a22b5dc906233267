package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var currentLevel = getLogLevel()

const (
	APP          = "APP"
	CONFIG       = "CONFIG"
	CONVERSATION = "CONVERSATION"
	HANDLER      = "HANDLER"
	MIDDLEWARE   = "MIDDLEWARE"
	PRESET       = "PRESET"
	PROVIDER     = "PROVIDER"
	REDIS        = "REDIS"
	SERVICE      = "SERVICE"
	STREAM       = "STREAM"
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

// Init configures the global zerolog logger. LOG_FORMAT=console switches to
// human readable output, anything else writes JSON lines.
func Init() {
	currentLevel = getLogLevel()

	var out io.Writer = os.Stderr
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "console") {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	SetOutput(out)
}

// SetOutput points the global logger at w, keeping the current level.
func SetOutput(w io.Writer) {
	zerolog.SetGlobalLevel(currentLevel)
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

func event(e *zerolog.Event, namespace, format string, v ...interface{}) {
	e.Str("ns", namespace).Msg(fmt.Sprintf(format, v...))
}

func Debug(namespace, format string, v ...interface{}) {
	event(log.Debug(), namespace, format, v...)
}

func Info(namespace, format string, v ...interface{}) {
	event(log.Info(), namespace, format, v...)
}

func Warn(namespace, format string, v ...interface{}) {
	event(log.Warn(), namespace, format, v...)
}

func Error(namespace, format string, v ...interface{}) {
	event(log.Error(), namespace, format, v...)
}

// Fatal logs and exits the process.
func Fatal(namespace, format string, v ...interface{}) {
	event(log.Fatal(), namespace, format, v...)
}

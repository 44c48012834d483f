// backend-go/pkg/logger/logger.go
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

const serviceName = "pharmacare"

var (
	// Log is the process-wide logger; Setup also installs it as zerolog's log.Logger
	Log zerolog.Logger
)

func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano

	Log = New(os.Stdout, "debug").Level(zerolog.InfoLevel)
}

// New builds a logger for the server mode. Release mode writes JSON lines,
// everything else a colored console.
func New(w io.Writer, mode string) zerolog.Logger {
	if mode != "release" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05.000"}
	}
	return zerolog.New(w).
		With().
		Timestamp().
		Str("service", serviceName).
		Caller().
		Logger()
}

// Setup installs the logger for mode. A non-empty level overrides the mode's
// default of debug, warn (tests) or info.
func Setup(mode, level string) {
	Log = New(os.Stdout, mode)
	log.Logger = Log

	switch {
	case level != "":
		SetLevel(level)
	case mode == "debug":
		apply(zerolog.DebugLevel)
	case mode == "test":
		apply(zerolog.WarnLevel)
	default:
		apply(zerolog.InfoLevel)
	}
}

// SetLevel parses levelStr, falling back to info when it is not a zerolog level
func SetLevel(levelStr string) {
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil || level == zerolog.NoLevel {
		Log.Warn().Str("level", levelStr).Msg("logger: unknown level, using info")
		level = zerolog.InfoLevel
	}
	apply(level)
}

func apply(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
	Log = Log.Level(level)
	log.Logger = Log
}

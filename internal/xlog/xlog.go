// Package xlog provides the leveled logger shared by every pipeline stage.
package xlog

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is the process-wide logger. It starts at info level and writes to
// stderr; Configure adjusts the level from the --verbose CLI flag.
var Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: false}).Level(zerolog.InfoLevel).With().Timestamp().Logger()

// Configure sets the active log level from one of the CLI's verbosity
// names: trace, debug, info, warn, err, critical, off.
func Configure(level string) error {
	switch strings.ToLower(level) {
	case "trace":
		Logger = Logger.Level(zerolog.TraceLevel)
	case "debug":
		Logger = Logger.Level(zerolog.DebugLevel)
	case "info", "":
		Logger = Logger.Level(zerolog.InfoLevel)
	case "warn":
		Logger = Logger.Level(zerolog.WarnLevel)
	case "err":
		Logger = Logger.Level(zerolog.ErrorLevel)
	case "critical":
		Logger = Logger.Level(zerolog.FatalLevel)
	case "off":
		Logger = Logger.Level(zerolog.Disabled)
	default:
		return UnknownLevelError(level)
	}
	return nil
}

// UnknownLevelError is returned by Configure when given a name outside the
// fixed set of verbosity levels.
type UnknownLevelError string

func (e UnknownLevelError) Error() string {
	return "xlog: unknown verbosity level " + string(e)
}

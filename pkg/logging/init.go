package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

const (
	JSON = "json"
	Text = "text"
	Tint = "tint"
)

// Log destination, swappable in tests.
var output io.Writer = os.Stdout

// Initialize installs the process-wide slog handler. The NO_COLOR
// environment variable disables colored output for the tint handler;
// it affects diagnostic formatting only.
func Initialize(loggingType string, logLevelName string) error {
	var logLevel slog.Level
	err := logLevel.UnmarshalText([]byte(logLevelName))
	if err != nil {
		return fmt.Errorf("could not parse log level: %v", err)
	}

	var (
		logHandlerOptions = slog.HandlerOptions{
			AddSource: true,
			Level:     logLevel,
		}
		logHandler slog.Handler
	)

	switch loggingType {
	case JSON:
		logHandler = slog.NewJSONHandler(output, &logHandlerOptions)
	case Text:
		logHandler = slog.NewTextHandler(output, &logHandlerOptions)
	case Tint:
		logHandler = tint.NewHandler(output, &tint.Options{
			AddSource: logHandlerOptions.AddSource,
			Level:     logHandlerOptions.Level,
			NoColor:   os.Getenv("NO_COLOR") != "",
		})
	default:
		return fmt.Errorf("unknown logging type: %s", loggingType)

	}

	slog.SetDefault(slog.New(logHandler))
	slog.Info("logging initialized", "logLevel", logLevel)
	return nil
}

package utils

import (
	"flag"
	"log/slog"
	"os"
	"strings"
)

var (
	logHandlerFlag = flag.String("log_handler_type", "json", "Log handler type: json/text")
	logLevelFlag   = flag.String("log_level", "info", "Log level: debug/info/warn/error")
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// InitLogging configures the default slog logger from the logging flags.
// Note that this method must be called after flag.Parse().
func InitLogging() {
	level, known := logLevels[strings.ToLower(*logLevelFlag)]
	if !known {
		Violation{Module: "log", Type: "unsupported_log_level"}.Raise(
			"Got an unsupported log level.", "logLevel", *logLevelFlag)
		level = slog.LevelInfo
	}

	handlerOptions := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch handlerType := strings.ToLower(*logHandlerFlag); handlerType {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, handlerOptions)
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, handlerOptions)
	default:
		Violation{Module: "log", Type: "unsupported_handler_type"}.Raise(
			"Got an unsupported handler type.", "handlerType", handlerType)
		handler = slog.NewJSONHandler(os.Stdout, handlerOptions)
	}

	// `SetDefault` happens atomically and doesn't panic when called in multiple goroutines.
	slog.SetDefault(slog.New(handler))
	slog.Debug("Log handler configured successfully.", "type", *logHandlerFlag, "logLevel", *logLevelFlag)
}

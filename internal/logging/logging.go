package logging

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// New builds a JSON slog logger. The returned LevelVar allows runtime level
// changes (wired to the config watcher).
func New(level string) (*slog.Logger, *slog.LevelVar, error) {
	lv := new(slog.LevelVar)
	if err := SetLevel(lv, level); err != nil {
		return nil, nil, err
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lv})
	return slog.New(handler), lv, nil
}

// SetLevel parses a level string and applies it to the LevelVar.
func SetLevel(lv *slog.LevelVar, level string) error {
	switch strings.ToLower(level) {
	case "debug":
		lv.Set(slog.LevelDebug)
	case "info", "":
		lv.Set(slog.LevelInfo)
	case "warn", "warning":
		lv.Set(slog.LevelWarn)
	case "error":
		lv.Set(slog.LevelError)
	default:
		return fmt.Errorf("invalid log level %q", level)
	}
	return nil
}

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
)

// OpenLogFile opens (or creates) the log file of the day in dir. A leading
// "~" in dir is expanded to the home directory.
func OpenLogFile(dir, appName string, now time.Time) (*os.File, error) {
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to expand log directory: %w", err)
	}
	if err := os.MkdirAll(expanded, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	name := fmt.Sprintf("%s-%s.log", appName, now.Format("2006-01-02"))
	f, err := os.OpenFile(filepath.Join(expanded, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// SetupFromEnv configures the default logger from the environment. When
// REDMINE_LOG_DIR is set, entries are written to a daily file in that
// directory as well as to w. The returned closer releases the file.
func SetupFromEnv(w io.Writer, appName string) (io.Closer, error) {
	dir := os.Getenv("REDMINE_LOG_DIR")
	if dir == "" {
		SetupLogger(w, LevelFromEnv(), FormatFromEnv())
		return io.NopCloser(nil), nil
	}

	f, err := OpenLogFile(dir, appName, time.Now())
	if err != nil {
		return nil, err
	}
	SetupLogger(io.MultiWriter(w, f), LevelFromEnv(), FormatFromEnv())
	return f, nil
}

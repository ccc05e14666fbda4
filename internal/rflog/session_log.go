package rflog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

const sessionLogPrefix = "RFEncodeSession_"

var clearOnce sync.Once

// EnvLogPath is the environment variable selecting the directory for
// per-session log files (spec §6 "Environment").
const EnvLogPath = "RF_LOG_PATH"

// SessionLogger opens (creating if necessary) a per-session log file named
// RFEncodeSession_<n>_<tid>.log inside the directory named by RF_LOG_PATH,
// and returns a logger that writes to it in addition to the process-wide
// handler. If RF_LOG_PATH is unset, it returns the default component logger.
//
// Old files matching the RFEncodeSession_ prefix are removed once per
// process, the first time a session asks for a log file — this mirrors
// clearing stale rotated logs on first use.
func SessionLogger(sessionIndex int, threadID int) (*slog.Logger, func() error) {
	dir := os.Getenv(EnvLogPath)
	if dir == "" {
		return L("session"), func() error { return nil }
	}

	clearOnce.Do(func() { clearStaleSessionLogs(dir) })

	name := fmt.Sprintf("%s%d_%d.log", sessionLogPrefix, sessionIndex, threadID)
	path := filepath.Join(dir, name)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		L("session").Warn("failed to create RF_LOG_PATH directory", "path", dir, "error", err)
		return L("session"), func() error { return nil }
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		L("session").Warn("failed to open session log file", "path", path, "error", err)
		return L("session"), func() error { return nil }
	}

	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(handler).With(
		slog.String(KeyComponent, "session"),
		slog.Int("sessionIndex", sessionIndex),
		slog.Int("tid", threadID),
	)
	return logger, f.Close
}

// clearStaleSessionLogs removes old RFEncodeSession_*.log files left behind
// by a previous process run, so a fresh process starts with a clean log
// directory (spec §6: "old files with that prefix are cleared on first
// session creation of a process").
func clearStaleSessionLogs(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasPrefix(e.Name(), sessionLogPrefix) {
			continue
		}
		_ = os.Remove(filepath.Join(dir, e.Name()))
	}
}

// parseSessionSuffix extracts the "<n>_<tid>" component of a session log
// file name, used only by tests to verify naming.
func parseSessionSuffix(name string) (int, int, bool) {
	trimmed := strings.TrimPrefix(name, sessionLogPrefix)
	trimmed = strings.TrimSuffix(trimmed, ".log")
	parts := strings.SplitN(trimmed, "_", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	n, err1 := strconv.Atoi(parts[0])
	tid, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return n, tid, true
}

package engine

import (
	"log/slog"
	"strings"
)

// bookmarkFile is the hidden root-level file holding the last-synchronized
// commit id as plain text. Its dot prefix keeps it out of tree scans.
const bookmarkFile = ".gitpress-last-sync"

// readBookmark returns the persisted commit id, or empty when none exists.
func (e *Engine) readBookmark() string {
	if !e.tree.Exists(bookmarkFile) {
		return ""
	}
	data, err := e.tree.Read(bookmarkFile)
	if err != nil {
		e.logger.Warn("bookmark unreadable", slog.String("error", err.Error()))
		return ""
	}
	return strings.TrimSpace(string(data))
}

// writeBookmark persists the commit id. Failure is logged, not fatal: the
// next incremental run will simply cover a wider diff.
func (e *Engine) writeBookmark(commit string) {
	if commit == "" {
		return
	}
	if err := e.tree.Write(bookmarkFile, []byte(commit+"\n")); err != nil {
		e.logger.Warn("bookmark write failed", slog.String("error", err.Error()))
	}
}

package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/hyperjump/docchat/internal/session"
	"github.com/hyperjump/docchat/internal/tui"
	"github.com/hyperjump/docchat/internal/watcher"
)

// newReloadWatcher re-submits the document when it changes on disk and pokes
// the TUI so it picks up the reset history. A failed re-upload surfaces
// through the session's error field like any other upload failure.
func newReloadWatcher(path string, sess *session.Session, p *tea.Program, logger *zap.Logger) *watcher.FileWatcher {
	return watcher.NewFileWatcher(path, func() {
		if err := submitFile(sess, path); err != nil {
			logger.Warn("re-upload failed", zap.String("path", path), zap.Error(err))
		} else {
			logger.Info("document re-uploaded", zap.String("path", path))
		}
		p.Send(tui.FileReloaded())
	}, watcher.WithLogger(logger))
}

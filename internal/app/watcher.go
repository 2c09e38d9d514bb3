package app

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/corey/pddl/internal/domain/workspace"
)

// onFileChanged handles a file create/modify/delete event from the watcher.
// Existing files are re-read and upserted; missing ones are removed along
// with their associations.
func (a *App) onFileChanged(absPath string) {
	uri := a.URIFor(absPath)
	if _, err := os.Stat(absPath); err != nil {
		if _, ok := a.Workspace.GetFileInfo(uri); !ok {
			return
		}
		err := a.Workspace.RemoveFile(uri, workspace.RemoveOptions{RemoveAllReferences: true})
		if err != nil && !errors.Is(err, workspace.ErrUnknownFile) {
			a.log.Warn("Remove failed", slog.String("uri", uri), slog.String("error", err.Error()))
		}
		a.forget(uri)
		return
	}
	a.loadFile(context.Background(), absPath)
}

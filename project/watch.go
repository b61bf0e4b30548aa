package project

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch calls fn with the project, loaded as by Load, every time the file at
// path is written or replaced, until ctx is done. A project that fails to load is
// passed as an error; watching continues. The directory is watched rather
// than the file, as editors often save by renaming a new file over the old
// one.
func Watch(ctx context.Context, path string, minDuration float64, fn func(*Project, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("could not watch %s: %w", path, err)
	}
	name := filepath.Clean(path)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			fn(Load(path, minDuration))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fn(nil, fmt.Errorf("watcher: %w", err))
		case <-ctx.Done():
			return nil
		}
	}
}

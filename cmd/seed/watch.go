package main

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/reedge/reedge-services/api/internal/selection"
)

// watchFixture calls reseed once path has been quiet for the debouncer's
// period after a change. It blocks until ctx is done.
// エディタは保存時にリネームすることがあるため、ファイルではなくディレクトリを監視する。
func watchFixture(ctx context.Context, path string, debounce *selection.Debouncer, logger *zap.SugaredLogger, reseed func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return err
	}
	logger.Infow("シードファイルを監視しています", "path", target)

	defer debounce.Cancel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !fixtureChanged(event, target) {
				continue
			}
			debounce.Trigger(reseed)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("監視エラー", "error", err)
		}
	}
}

func fixtureChanged(event fsnotify.Event, target string) bool {
	name, err := filepath.Abs(event.Name)
	if err != nil || name != target {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

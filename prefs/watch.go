package prefs

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watchSettle is how long Watch waits after the last filesystem event before
// reloading, so a multi-step write is read once it is complete.
const watchSettle = 50 * time.Millisecond

// Watch reloads the document whenever another process replaces it and calls
// onChange with the keys whose values differ from the in-memory copy. Writes
// made through this store produce no callback. Concurrent writers are not
// reconciled: the last document on disk wins.
//
// Watch blocks until ctx is cancelled or the watcher fails.
func (s *FileStore) Watch(ctx context.Context, log *zap.Logger, onChange func(keys []string)) error {
	if log == nil {
		log = zap.NewNop()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory: atomic renames replace the file's inode.
	if err := w.Add(filepath.Dir(s.filePath)); err != nil {
		return err
	}
	name := filepath.Base(s.filePath)

	settle := time.NewTimer(time.Hour)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name || ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
				continue
			}
			settle.Reset(watchSettle)
		case <-settle.C:
			changed, err := s.reload()
			if err != nil {
				log.Warn("preference reload failed", zap.String("path", s.filePath), zap.Error(err))
				continue
			}
			if len(changed) > 0 {
				log.Info("preferences changed on disk", zap.Strings("keys", changed))
				onChange(changed)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("preference watcher error", zap.Error(err))
		}
	}
}

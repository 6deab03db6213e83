//go:build !linux && !darwin

package util

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileWatcher polls modification times where neither inotify nor kqueue is available.
type FileWatcher struct {
	mu       sync.Mutex
	files    map[string]time.Time
	onChange func(string)
}

func NewFileWatcher(onChange func(string)) (*FileWatcher, error) {
	return &FileWatcher{files: make(map[string]time.Time), onChange: onChange}, nil
}

func (fw *FileWatcher) AddFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return err
	}

	fw.mu.Lock()
	fw.files[absPath] = info.ModTime()
	fw.mu.Unlock()
	return nil
}

// Watch blocks until ctx is done.
func (fw *FileWatcher) Watch(ctx context.Context) {
	ticker := time.NewTicker(debounceDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		fw.mu.Lock()
		changed := make([]string, 0)
		for path, last := range fw.files {
			info, err := os.Stat(path)
			if err != nil || !info.ModTime().After(last) {
				continue
			}
			fw.files[path] = info.ModTime()
			changed = append(changed, path)
		}
		fw.mu.Unlock()

		for _, path := range changed {
			fw.onChange(path)
		}
	}
}

func (fw *FileWatcher) Close() error {
	return nil
}

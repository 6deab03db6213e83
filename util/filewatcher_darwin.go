//go:build darwin

package util

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

const (
	changedFlags = unix.NOTE_WRITE | unix.NOTE_EXTEND | unix.NOTE_ATTRIB
	// the vnode is gone from the path, a new file may have been renamed over it
	replacedFlags = unix.NOTE_DELETE | unix.NOTE_RENAME
)

// FileWatcher calls onChange once a watched file stops being written to.
type FileWatcher struct {
	kq          int
	watchMap    map[int]string  // open descriptor -> path
	pending     map[string]bool // replaced paths waiting to be reopened
	mu          sync.Mutex
	debounceMap map[string]*time.Timer
	onChange    func(string)
}

func NewFileWatcher(onChange func(string)) (*FileWatcher, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, fmt.Errorf("kqueue failed: %w", err)
	}

	return &FileWatcher{
		kq:          kq,
		watchMap:    make(map[int]string),
		pending:     make(map[string]bool),
		debounceMap: make(map[string]*time.Timer),
		onChange:    onChange,
	}, nil
}

func (fw *FileWatcher) AddFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.watchPath(absPath)
}

// watchPath must be called with fw.mu held.
func (fw *FileWatcher) watchPath(path string) error {
	fd, err := unix.Open(path, unix.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}

	event := unix.Kevent_t{
		Ident:  uint64(fd),
		Filter: unix.EVFILT_VNODE,
		Flags:  unix.EV_ADD | unix.EV_CLEAR,
		Fflags: changedFlags | replacedFlags,
	}
	if _, err := unix.Kevent(fw.kq, []unix.Kevent_t{event}, nil, nil); err != nil {
		unix.Close(fd)
		return fmt.Errorf("failed to add kevent for %s: %w", path, err)
	}

	fw.watchMap[fd] = path
	return nil
}

// reopenPending rewatches replaced paths once something exists at them again.
func (fw *FileWatcher) reopenPending() {
	fw.mu.Lock()
	reopened := []string{}
	for path := range fw.pending {
		if fw.watchPath(path) == nil {
			delete(fw.pending, path)
			reopened = append(reopened, path)
		}
	}
	fw.mu.Unlock()

	for _, path := range reopened {
		fw.debouncedCallback(path)
	}
}

// Watch blocks until ctx is done.
func (fw *FileWatcher) Watch(ctx context.Context) {
	events := make([]unix.Kevent_t, 10)
	timeout := unix.NsecToTimespec(int64(100 * time.Millisecond))

	for ctx.Err() == nil {
		fw.reopenPending()

		n, err := unix.Kevent(fw.kq, nil, events, &timeout)
		if err != nil {
			if err != unix.EINTR {
				LogF("kevent failed: %v", err)
				time.Sleep(100 * time.Millisecond)
			}
			continue
		}

		for _, event := range events[:n] {
			fd := int(event.Ident)

			fw.mu.Lock()
			path := fw.watchMap[fd]
			if path != "" && event.Fflags&replacedFlags != 0 {
				delete(fw.watchMap, fd)
				unix.Close(fd)
				fw.pending[path] = true
				path = ""
			}
			fw.mu.Unlock()

			if path != "" && event.Fflags&changedFlags != 0 {
				fw.debouncedCallback(path)
			}
		}
	}
}

func (fw *FileWatcher) debouncedCallback(path string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if timer, exists := fw.debounceMap[path]; exists {
		timer.Stop()
	}

	fw.debounceMap[path] = time.AfterFunc(debounceDelay, func() {
		fw.onChange(path)
		fw.mu.Lock()
		delete(fw.debounceMap, path)
		fw.mu.Unlock()
	})
}

func (fw *FileWatcher) Close() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	for fd := range fw.watchMap {
		unix.Close(fd)
	}
	return unix.Close(fw.kq)
}

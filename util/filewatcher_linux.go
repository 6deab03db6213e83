//go:build linux

package util

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// inotifyEvents names the events a directory watch is registered for.
var inotifyEvents = []struct {
	mask uint32
	name string
}{
	{unix.IN_MODIFY, "modify"},
	{unix.IN_CLOSE_WRITE, "close_write"},
	{unix.IN_CREATE, "create"},
	{unix.IN_MOVED_TO, "moved_to"},
	{unix.IN_DELETE_SELF, "delete_self"},
	{unix.IN_MOVE_SELF, "move_self"},
	{unix.IN_IGNORED, "ignored"},
}

const (
	// a file was written, or a new file was saved or renamed into its place
	changedMask = unix.IN_MODIFY | unix.IN_CLOSE_WRITE | unix.IN_CREATE | unix.IN_MOVED_TO
	// the directory watch itself is gone
	droppedMask = unix.IN_DELETE_SELF | unix.IN_MOVE_SELF | unix.IN_IGNORED

	directoryMask = changedMask | unix.IN_DELETE_SELF | unix.IN_MOVE_SELF
)

func describeMask(mask uint32) string {
	names := []string{}
	for _, e := range inotifyEvents {
		if mask&e.mask != 0 {
			names = append(names, e.name)
		}
	}
	return strings.Join(names, "|")
}

// FileWatcher calls onChange once a watched file stops being written to.
// Files are watched through their directory, so a save that renames a new
// file over the old one is still seen.
type FileWatcher struct {
	fd          int
	dirs        map[int]string             // watch descriptor -> directory
	files       map[string]map[string]bool // directory -> watched base names
	mu          sync.Mutex
	debounceMap map[string]*time.Timer
	onChange    func(string)
}

func NewFileWatcher(onChange func(string)) (*FileWatcher, error) {
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("inotify_init failed: %w", err)
	}

	return &FileWatcher{
		fd:          fd,
		dirs:        make(map[int]string),
		files:       make(map[string]map[string]bool),
		debounceMap: make(map[string]*time.Timer),
		onChange:    onChange,
	}, nil
}

func (fw *FileWatcher) AddFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(absPath); err != nil {
		return err
	}

	dir, name := filepath.Split(absPath)
	dir = filepath.Clean(dir)

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if _, watched := fw.files[dir]; !watched {
		if err := fw.watchDirectory(dir); err != nil {
			return err
		}
		fw.files[dir] = make(map[string]bool)
	}
	fw.files[dir][name] = true
	return nil
}

// watchDirectory must be called with fw.mu held.
func (fw *FileWatcher) watchDirectory(dir string) error {
	wd, err := unix.InotifyAddWatch(fw.fd, dir, directoryMask)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	fw.dirs[wd] = dir
	return nil
}

// Watch blocks until ctx is done.
func (fw *FileWatcher) Watch(ctx context.Context) {
	buf := make([]byte, (unix.SizeofInotifyEvent+unix.PathMax)*4)
	pollFds := []unix.PollFd{{Fd: int32(fw.fd), Events: unix.POLLIN}}

	for ctx.Err() == nil {
		ready, err := unix.Poll(pollFds, 100)
		if err != nil && err != unix.EINTR {
			LogF("inotify poll failed: %v", err)
			return
		}
		if ready <= 0 {
			continue
		}

		n, err := unix.Read(fw.fd, buf)
		if err != nil {
			if err != unix.EAGAIN && err != unix.EINTR {
				LogF("inotify read failed: %v", err)
			}
			continue
		}

		offset := 0
		for offset+unix.SizeofInotifyEvent <= n {
			event := (*unix.InotifyEvent)(unsafe.Pointer(&buf[offset]))
			nameStart := offset + unix.SizeofInotifyEvent
			offset = nameStart + int(event.Len)

			name := ""
			if event.Len > 0 && offset <= n {
				name = strings.TrimRight(string(buf[nameStart:offset]), "\x00")
			}
			fw.handleEvent(int(event.Wd), event.Mask, name)
		}
	}
}

func (fw *FileWatcher) handleEvent(wd int, mask uint32, name string) {
	fw.mu.Lock()
	dir, ok := fw.dirs[wd]
	if !ok {
		fw.mu.Unlock()
		return
	}

	if mask&droppedMask != 0 {
		LogF("watch on %s dropped (%s)", dir, describeMask(mask))
		delete(fw.dirs, wd)
		unix.InotifyRmWatch(fw.fd, uint32(wd))
		err := fw.watchDirectory(dir)
		fw.mu.Unlock()
		if err != nil {
			LogF("could not rewatch %s: %v", dir, err)
		}
		return
	}

	watched := fw.files[dir][name]
	fw.mu.Unlock()

	if watched && mask&changedMask != 0 {
		fw.debouncedCallback(filepath.Join(dir, name))
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
	return unix.Close(fw.fd)
}

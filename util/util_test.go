package util_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.gatech.edu/ECEInnovation/rv32ias/util"
)

func TestLogF(t *testing.T) {
	received := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received <- string(body)
	}))
	defer server.Close()

	oldEnabled, oldURL := util.LoggingEnabled, util.LogURL
	defer func() { util.LoggingEnabled, util.LogURL = oldEnabled, oldURL }()
	util.LoggingEnabled = true
	util.LogURL = server.URL

	util.LogF("assembled %d words", 3)

	select {
	case msg := <-received:
		if msg != "assembled 3 words" {
			t.Errorf("Expected \"assembled 3 words\", got \"%s\"", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Expected log message to be posted")
	}
}

func TestFileWatcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.s")
	if err := os.WriteFile(path, []byte("addi x1, x0, 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// mtime granularity on some filesystems is coarse
	time.Sleep(20 * time.Millisecond)

	changed := make(chan string, 4)
	watcher, err := util.NewFileWatcher(func(p string) { changed <- p })
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer watcher.Close()

	if err := watcher.AddFile(path); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Watch(ctx)

	time.Sleep(100 * time.Millisecond)
	future := time.Now().Add(2 * time.Second)
	if err := os.WriteFile(path, []byte("addi x1, x0, 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	os.Chtimes(path, future, future)

	select {
	case p := <-changed:
		if filepath.Base(p) != "prog.s" {
			t.Errorf("Expected prog.s, got %s", p)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Expected change notification")
	}
}

func TestFileWatcherRenameSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.s")
	if err := os.WriteFile(path, []byte("addi x1, x0, 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	changed := make(chan string, 8)
	watcher, err := util.NewFileWatcher(func(p string) { changed <- p })
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer watcher.Close()

	if err := watcher.AddFile(path); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Watch(ctx)
	time.Sleep(100 * time.Millisecond)

	// editors write a temporary file and rename it over the original
	for i := 0; i < 2; i++ {
		tmp := filepath.Join(dir, ".prog.s.swp")
		if err := os.WriteFile(tmp, []byte("addi x1, x0, 2\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		future := time.Now().Add(time.Duration(i+2) * time.Second)
		os.Chtimes(tmp, future, future)
		if err := os.Rename(tmp, path); err != nil {
			t.Fatal(err)
		}

		select {
		case p := <-changed:
			if filepath.Base(p) != "prog.s" {
				t.Errorf("Expected prog.s after save %d, got %s", i, p)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("Expected change notification after save %d", i)
		}

		// let the debounce settle before the next save
		time.Sleep(500 * time.Millisecond)
		for len(changed) > 0 {
			<-changed
		}
	}
}

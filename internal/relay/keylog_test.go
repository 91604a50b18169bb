package relay

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestKeyLog_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.log")

	l, err := OpenKeyLog(path)
	if err != nil {
		t.Fatalf("OpenKeyLog failed: %v", err)
	}
	defer l.Close()

	l.now = func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	}

	if err := l.Append("[GMod Key] Bob | STEAM_1 | ABCD"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	want := "[2025-06-01 12:00:00 UTC] [GMod Key] Bob | STEAM_1 | ABCD\n"
	if string(data) != want {
		t.Errorf("log content = %q, want %q", string(data), want)
	}
}

func TestKeyLog_ConcurrentAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.log")

	l, err := OpenKeyLog(path)
	if err != nil {
		t.Fatalf("OpenKeyLog failed: %v", err)
	}
	defer l.Close()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Append("event line"); err != nil {
				t.Errorf("Append failed: %v", err)
			}
		}()
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != n {
		t.Fatalf("got %d lines, want %d", len(lines), n)
	}
	for _, line := range lines {
		if !strings.HasSuffix(line, "event line") || !strings.HasPrefix(line, "[") {
			t.Errorf("malformed line: %q", line)
		}
	}
}

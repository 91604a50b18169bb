package relay

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// KeyLog is an append-only text log of dispatched events, one line per
// event, for human diagnostics. Appends are serialized and written with a
// single Write call so concurrent lines never interleave.
type KeyLog struct {
	mu   sync.Mutex
	file *os.File

	now func() time.Time
}

// OpenKeyLog opens (or creates) the log file for appending.
func OpenKeyLog(path string) (*KeyLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &KeyLog{file: f, now: time.Now}, nil
}

// Append writes one timestamped line.
func (l *KeyLog) Append(msg string) error {
	line := fmt.Sprintf("[%s] %s\n", l.now().UTC().Format("2006-01-02 15:04:05 MST"), msg)

	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.file.WriteString(line)
	return err
}

// Close closes the underlying file.
func (l *KeyLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

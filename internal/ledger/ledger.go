package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Ledger tracks which bulk-data files have been fully ingested. It is an
// append-only text file with one filename per line; membership gates
// reprocessing, and the append is the sole commit point for "this file is
// done". Marking is durable (flushed and synced) before it returns.
type Ledger struct {
	mu        sync.Mutex
	path      string
	processed map[string]struct{}
}

// Open loads the ledger at path. A nonexistent file is not an error; it
// means nothing has been processed yet.
func Open(path string) (*Ledger, error) {
	processed := make(map[string]struct{})

	file, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to open ledger: %w", err)
		}
	} else {
		defer file.Close() //nolint:errcheck

		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			entry := strings.TrimSpace(scanner.Text())
			if entry != "" {
				processed[entry] = struct{}{}
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read ledger: %w", err)
		}
	}

	return &Ledger{path: path, processed: processed}, nil
}

// IsProcessed reports whether the file has already been fully ingested
func (l *Ledger) IsProcessed(filename string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.processed[filename]
	return ok
}

// MarkProcessed appends the filename and syncs it to disk before returning.
// A crash before this call leaves the file eligible for full reprocessing.
func (l *Ledger) MarkProcessed(filename string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open ledger for append: %w", err)
	}
	defer file.Close() //nolint:errcheck

	if _, err := file.WriteString(filename + "\n"); err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync ledger: %w", err)
	}

	l.processed[filename] = struct{}{}
	return nil
}

// Len returns the number of ledgered files
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.processed)
}

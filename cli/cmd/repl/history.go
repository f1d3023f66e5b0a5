package repl

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/lingo/pkg"
)

// modePrefix tags each history line with the mode it was entered in.
var modePrefix = map[inputMode]string{
	modeEval: "E:",
	modeCtrl: "C:",
}

// HistoryEntry is one line of input and the mode it was entered in.
type HistoryEntry struct {
	Line string
	Mode inputMode
}

func (e HistoryEntry) String() string { return modePrefix[e.Mode] + e.Line }

// History is the input history, persisted one entry per line. An empty path
// keeps the history in memory only.
type History struct {
	path string

	mu      sync.RWMutex
	entries []HistoryEntry
}

// NewHistory returns an empty history stored at path.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Load replaces the entries with those stored in the history file. A
// missing file is an empty history.
func (h *History) Load() error {
	if h.path == "" {
		return nil
	}

	file, err := os.Open(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return err
	}
	defer file.Close()

	var entries []HistoryEntry

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if entry, ok := parseEntry(scanner.Text()); ok {
			entries = append(entries, entry)
		}
	}

	h.mu.Lock()
	h.entries = entries
	h.mu.Unlock()

	return scanner.Err()
}

// parseEntry decodes a history line. Lines without a mode prefix are eval
// input.
func parseEntry(line string) (HistoryEntry, bool) {
	if strings.TrimSpace(line) == "" {
		return HistoryEntry{}, false
	}

	for mode, prefix := range modePrefix {
		if s, ok := strings.CutPrefix(line, prefix); ok {
			return HistoryEntry{Line: s, Mode: mode}, true
		}
	}

	return HistoryEntry{Line: line, Mode: modeEval}, true
}

// Add appends an entry, moving an identical earlier entry to the end.
func (h *History) Add(line string, mode inputMode) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	entry := HistoryEntry{Line: line, Mode: mode}

	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.entries); n > 0 && h.entries[n-1] == entry {
		return nil
	}

	i := slices.Index(h.entries, entry)
	if i >= 0 {
		h.entries = slices.Delete(h.entries, i, i+1)
	}

	h.entries = append(h.entries, entry)

	if i >= 0 {
		return h.rewrite()
	}

	return h.append(entry)
}

// Entry returns the entry at index i; index 0 is the oldest.
func (h *History) Entry(i int) (HistoryEntry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return HistoryEntry{}, ErrOutOfBounds
	}

	return h.entries[i], nil
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}

// Entries returns a copy of all entries, oldest first.
func (h *History) Entries() []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return slices.Clone(h.entries)
}

// append writes one entry to the end of the file. Must be called with h.mu
// held.
func (h *History) append(entry HistoryEntry) error {
	return h.write(os.O_APPEND, []HistoryEntry{entry})
}

// rewrite replaces the file with the current entries. Must be called with
// h.mu held.
func (h *History) rewrite() error {
	return h.write(os.O_TRUNC, h.entries)
}

func (h *History) write(flag int, entries []HistoryEntry) error {
	if h.path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(h.path), pkg.DirMode); err != nil {
		return err
	}

	file, err := os.OpenFile(h.path, flag|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)

	for _, e := range entries {
		if _, err := w.WriteString(e.String() + "\n"); err != nil {
			return err
		}
	}

	return w.Flush()
}

package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/yigitkabak/aperium/internal/configs"
)

// Outcomes recorded in Entry.Outcome.
const (
	OutcomeInstalled = "installed"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
	OutcomeCreated   = "created"
	OutcomeForgotten = "forgotten"
)

// Entry represents a single history entry.
type Entry struct {
	Timestamp string `json:"ts"` // RFC3339 with microseconds.
	ID        string `json:"id"`
	Operation string `json:"op"`
	Package   string `json:"package"`

	// Optional fields depending on operation.
	Version  string `json:"version,omitempty"`
	Platform string `json:"platform,omitempty"` // For install.
	Hash     string `json:"hash,omitempty"`
	Path     string `json:"path,omitempty"` // Package file for install and create.
	Outcome  string `json:"outcome,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Log appends an entry to the history log.
// Failures are ignored: operations should not fail because history logging did.
func Log(entry Entry) {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	logPath := LogPath()
	if logPath == "" {
		return
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// LogPath returns the path to the history file, or "" when settings are not
// initialised.
func LogPath() string {
	if configs.AperiumSettings == nil {
		return ""
	}
	return configs.AperiumSettings.HistoryFile
}

// ReadEntries reads all entries from the history log.
// Returns an empty slice if the log doesn't exist.
func ReadEntries() ([]Entry, error) {
	logPath := LogPath()
	if logPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into history entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

// Package record persists a JSON description of a completed run under the
// installation's etc directory. It is write-only documentation of what was
// installed; nothing reads it back to skip work.
package record

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// FileName is the run record's name under the etc directory.
const FileName = "ocamlbrew.json"

// Run describes one completed installation.
type Run struct {
	Version     string            `json:"version"`
	Source      string            `json:"source"`
	Prefix      string            `json:"prefix"`
	LogFile     string            `json:"log_file"`
	Components  map[string]string `json:"components"`
	CompletedAt time.Time         `json:"completed_at"`
}

// Save writes the run record as indented JSON.
func Save(path string, r *Run) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run record %s: %w", path, err)
	}
	return nil
}

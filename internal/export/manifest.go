package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Manifest records what an export run produced. It is written alongside the
// import documents so a later run (or a human) can tell what a directory
// contains without re-parsing the dump.
type Manifest struct {
	ExportedAt time.Time `json:"exported_at"`
	Source     string    `json:"source,omitempty"`
	Projects   int       `json:"projects"`
	Issues     int       `json:"issues"`
	Users      int       `json:"users"`
	Files      []string  `json:"files,omitempty"`
}

// writeManifest writes manifest.json into dir atomically (temp file plus
// rename), so a crashed run never leaves a half-written manifest next to
// complete documents.
func writeManifest(dir string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	data = append(data, '\n')

	manifestPath := filepath.Join(dir, "manifest.json")
	tempFile, err := os.CreateTemp(dir, "manifest.json.tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp manifest file: %w", err)
	}
	tempPath := tempFile.Name()
	defer func() {
		_ = tempFile.Close()    // Best effort: may already be closed before rename
		_ = os.Remove(tempPath) // Best effort: cleanup temp file; may already be renamed
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	// Close before rename (required on Windows; double-close in defer is harmless)
	_ = tempFile.Close()

	if err := os.Rename(tempPath, manifestPath); err != nil {
		return fmt.Errorf("failed to replace manifest file: %w", err)
	}
	if err := os.Chmod(manifestPath, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to set manifest permissions: %v\n", err)
	}
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testDumpTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<entity-engine-xml>
  <Project id="100" name="Sieve" key="SIEVE" description="Test project"/>
  <Issue id="1" key="SIEVE-1" project="100" reporter="alice" summary="First issue"
         priority="3" status="1" type="1" created="%s"/>
  <User id="50" userName="alice" emailAddress="alice@example.com"/>
</entity-engine-xml>
`

func writeTestDump(t *testing.T) string {
	t.Helper()
	// Recent created date keeps alice inside the default activity window.
	created := time.Now().AddDate(0, -3, 0).Format("2006-01-02 15:04:05") + ".0"
	path := filepath.Join(t.TempDir(), "entities.xml")
	if err := os.WriteFile(path, []byte(fmt.Sprintf(testDumpTemplate, created)), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func resetExportFlags(t *testing.T) {
	t.Helper()
	prevOut, prevDry, prevSince, prevMap := outputDir, dryRun, activeSince, fieldMapFile
	t.Cleanup(func() {
		outputDir, dryRun, activeSince, fieldMapFile = prevOut, prevDry, prevSince, prevMap
	})
}

func TestExportCommand(t *testing.T) {
	resetExportFlags(t)
	rootCtx = context.Background()

	dump := writeTestDump(t)
	outputDir = filepath.Join(t.TempDir(), "export")
	dryRun = false
	activeSince = ""
	fieldMapFile = ""

	if err := runExport(exportCmd, []string{dump}); err != nil {
		t.Fatalf("runExport: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outputDir, "SIEVE.json"))
	if err != nil {
		t.Fatalf("project document not written: %v", err)
	}
	var doc struct {
		Projects []struct {
			Key    string `json:"key"`
			Issues []struct {
				Key      string `json:"key"`
				Reporter string `json:"reporter"`
			} `json:"issues"`
		} `json:"projects"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("invalid project JSON: %v", err)
	}
	if len(doc.Projects) != 1 || doc.Projects[0].Key != "SIEVE" {
		t.Fatalf("unexpected projects: %+v", doc.Projects)
	}
	if len(doc.Projects[0].Issues) != 1 || doc.Projects[0].Issues[0].Key != "SIEVE-1" {
		t.Fatalf("unexpected issues: %+v", doc.Projects[0].Issues)
	}
	// created 2026-06 is inside the default two-year window, so alice keeps
	// her identity instead of collapsing to the placeholder
	if got := doc.Projects[0].Issues[0].Reporter; got != "alice" {
		t.Errorf("reporter = %q, want alice", got)
	}

	if _, err := os.Stat(filepath.Join(outputDir, "users.json")); err != nil {
		t.Errorf("users.json not written: %v", err)
	}
}

func TestExportCommandDryRun(t *testing.T) {
	resetExportFlags(t)
	rootCtx = context.Background()

	dump := writeTestDump(t)
	outputDir = filepath.Join(t.TempDir(), "export")
	dryRun = true

	if err := runExport(exportCmd, []string{dump}); err != nil {
		t.Fatalf("runExport: %v", err)
	}
	if _, err := os.Stat(outputDir); !os.IsNotExist(err) {
		t.Errorf("dry run created output directory")
	}
}

func TestActiveWindow(t *testing.T) {
	resetExportFlags(t)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	activeSince = ""
	w, err := activeWindow(now)
	if err != nil {
		t.Fatal(err)
	}
	if w.IssueSince.Year() != 2024 || w.HistorySince.Year() != 2022 {
		t.Errorf("default windows = %v / %v, want 2024 / 2022", w.IssueSince, w.HistorySince)
	}

	activeSince = "2020-01-01"
	w, err = activeWindow(now)
	if err != nil {
		t.Fatal(err)
	}
	if !w.IssueSince.Equal(w.HistorySince) {
		t.Errorf("explicit cutoff should set both windows: %v / %v", w.IssueSince, w.HistorySince)
	}
	if w.IssueSince.Year() != 2020 {
		t.Errorf("cutoff year = %d, want 2020", w.IssueSince.Year())
	}

	activeSince = "not a time"
	if _, err := activeWindow(now); err == nil {
		t.Error("expected error for unparseable cutoff")
	}
}

func TestStatsCommand(t *testing.T) {
	rootCtx = context.Background()
	dump := writeTestDump(t)
	if err := runStats(statsCmd, []string{dump}); err != nil {
		t.Fatalf("runStats: %v", err)
	}
}

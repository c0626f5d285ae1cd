package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sievetools/jirasieve/internal/debug"
	"github.com/sievetools/jirasieve/internal/telemetry"
)

// Options contains assembly configuration
type Options struct {
	OutputDir string // Directory the documents are written into
	Source    string // Dump path or URL, recorded in the manifest
	DryRun    bool   // Build everything, write nothing
}

// Result contains statistics about the assembly operation
type Result struct {
	Projects int      // Project documents assembled
	Issues   int      // Issues denormalized across all projects
	Users    int      // User records in the users document
	Skipped  int      // Issues dropped because their project reference dangles
	Files    []string // Paths written (empty on dry run)
}

// Assemble runs the join engine over every project, wraps the records into
// their final document shapes, and writes one pretty-printed JSON file per
// project plus users.json. The run is atomic from the caller's perspective:
// any error aborts before reporting success, and a dry run writes nothing
// at all.
func Assemble(ctx context.Context, e *Engine, opts Options) (*Result, error) {
	result := &Result{}

	if !opts.DryRun {
		if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	for _, p := range e.Projects() {
		result.Projects++
		result.Issues += len(p.Issues)
		telemetry.CountProject(ctx, p.Key, len(p.Issues))
		debug.Logf("assembled project %s: %d issues, %d versions, %d components\n",
			p.Key, len(p.Issues), len(p.Versions), len(p.Components))

		path := filepath.Join(opts.OutputDir, p.Key+".json")
		if err := writeDoc(path, projectsDoc{Projects: []Project{p}}, opts.DryRun); err != nil {
			return nil, err
		}
		if !opts.DryRun {
			result.Files = append(result.Files, path)
		}
	}

	result.Skipped = e.store.Count("Issue") - result.Issues
	if result.Skipped > 0 {
		debug.Logf("skipped %d issues with no resolvable project\n", result.Skipped)
	}

	users := e.Users()
	result.Users = len(users)
	telemetry.CountUsers(ctx, len(users))

	path := filepath.Join(opts.OutputDir, "users.json")
	if err := writeDoc(path, usersDoc{Users: users}, opts.DryRun); err != nil {
		return nil, err
	}
	if !opts.DryRun {
		result.Files = append(result.Files, path)

		manifest := &Manifest{
			ExportedAt: time.Now(),
			Source:     opts.Source,
			Projects:   result.Projects,
			Issues:     result.Issues,
			Users:      result.Users,
			Files:      result.Files,
		}
		if err := writeManifest(opts.OutputDir, manifest); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func writeDoc(path string, doc interface{}, dryRun bool) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if dryRun {
		return nil
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

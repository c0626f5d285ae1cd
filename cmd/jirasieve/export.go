package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sievetools/jirasieve/internal/config"
	"github.com/sievetools/jirasieve/internal/debug"
	"github.com/sievetools/jirasieve/internal/entity"
	"github.com/sievetools/jirasieve/internal/export"
	"github.com/sievetools/jirasieve/internal/fetch"
	"github.com/sievetools/jirasieve/internal/fieldmap"
	"github.com/sievetools/jirasieve/internal/telemetry"
	"github.com/sievetools/jirasieve/internal/timeparsing"
	"github.com/sievetools/jirasieve/internal/translate"
	"github.com/sievetools/jirasieve/internal/ui"
)

var (
	outputDir    string
	dryRun       bool
	activeSince  string
	fieldMapFile string
)

func init() {
	exportCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (default from config: out)")
	exportCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run the full pipeline without writing files")
	exportCmd.Flags().StringVar(&activeSince, "active-since", "", "Active-user cutoff (\"2014-01-01\", \"-2y\", \"two years ago\"); overrides the year windows")
	exportCmd.Flags().StringVar(&fieldMapFile, "field-map", "", "Custom field map file (.toml, .yaml)")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <entities.xml | url>",
	Short: "Convert a backup dump into per-project import documents",
	Long: `Parses a JIRA entities.xml backup dump (local file or http(s) URL) and
writes one JSON document per project plus users.json to the output directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	start := time.Now()

	store, err := parseSource(args[0])
	if err != nil {
		return err
	}

	fields := fieldmap.Builtin()
	if fieldMapFile != "" {
		if fields, err = fieldmap.Load(fieldMapFile); err != nil {
			return err
		}
	}

	window, err := activeWindow(time.Now())
	if err != nil {
		return err
	}
	excluded := config.GetStringSlice(config.KeyExcludedUsers)
	active := translate.ComputeActiveUsers(store, window, excluded)
	resolver := translate.NewResolver(active, excluded, config.GetString(config.KeyPlaceholderUser))
	debug.Logf("active-users set: %d names (issue cutoff %s, history cutoff %s)\n",
		len(active), window.IssueSince.Format("2006-01-02"), window.HistorySince.Format("2006-01-02"))

	engine := export.New(store, resolver, fields, export.Config{
		AttachmentBaseURL:     config.GetString(config.KeyAttachmentBaseURL),
		UTCOffset:             config.GetString(config.KeyUTCOffset),
		ProjectType:           config.GetString(config.KeyProjectType),
		ExcludedLabels:        config.GetStringSlice(config.KeyExcludedLabels),
		ExcludedHistoryFields: config.GetStringSlice(config.KeyExcludedHistoryFields),
	})

	dir := outputDir
	if dir == "" {
		dir = config.GetString(config.KeyOutputDir)
	}
	result, err := export.Assemble(rootCtx, engine, export.Options{OutputDir: dir, Source: args[0], DryRun: dryRun})
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(result)
	}
	printSummary(result, time.Since(start))
	return nil
}

// parseSource opens the dump (file or URL) and runs the streaming parser,
// recording per-type entity counts.
func parseSource(source string) (*entity.Store, error) {
	rc, err := fetch.Open(rootCtx, source, config.GetDuration(config.KeyFetchTimeout))
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	store, err := entity.Parse(rc)
	if err != nil {
		return nil, err
	}
	for _, tag := range store.Tags() {
		telemetry.CountEntities(rootCtx, tag, store.Count(tag))
	}
	return store, nil
}

// activeWindow resolves the recency cutoffs, either from --active-since or
// from the configured years-back windows.
func activeWindow(now time.Time) (translate.Window, error) {
	if activeSince != "" {
		cutoff, err := timeparsing.ParseCutoff(activeSince, now)
		if err != nil {
			return translate.Window{}, fmt.Errorf("invalid --active-since: %w", err)
		}
		return translate.Window{IssueSince: cutoff, HistorySince: cutoff}, nil
	}
	return translate.Window{
		IssueSince:   now.AddDate(-config.GetInt(config.KeyActiveIssueYears), 0, 0),
		HistorySince: now.AddDate(-config.GetInt(config.KeyActiveHistoryYears), 0, 0),
	}, nil
}

func printSummary(result *export.Result, elapsed time.Duration) {
	if debug.IsQuiet() {
		return
	}
	header := fmt.Sprintf("Exported %d projects, %d issues, %d users in %s",
		result.Projects, result.Issues, result.Users, elapsed.Round(time.Millisecond))
	if ui.IsTerminal() {
		fmt.Println(ui.PassStyle.Render(ui.IconPass) + " " + ui.HeaderStyle.Render(header))
	} else {
		fmt.Println(header)
	}
	if result.Skipped > 0 {
		warn := fmt.Sprintf("  %d issues skipped (no resolvable project)", result.Skipped)
		if ui.IsTerminal() {
			fmt.Println(ui.WarnStyle.Render(warn))
		} else {
			fmt.Println(warn)
		}
	}
	if dryRun {
		debug.PrintNormal("  (dry run: nothing written)\n")
		return
	}
	for _, f := range result.Files {
		debug.PrintNormal("  wrote %s\n", f)
	}
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}

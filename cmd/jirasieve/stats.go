package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sievetools/jirasieve/internal/ui"
)

var statsCmd = &cobra.Command{
	Use:   "stats <entities.xml | url>",
	Short: "Print per-entity record counts for a backup dump",
	Long: `Parses the dump without exporting anything and prints how many records
of each entity type it contains. Useful for sizing a migration before running it.`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	store, err := parseSource(args[0])
	if err != nil {
		return err
	}

	tags := store.Tags()
	if jsonOutput {
		counts := make(map[string]int, len(tags))
		for _, tag := range tags {
			counts[tag] = store.Count(tag)
		}
		return printJSON(counts)
	}

	total := 0
	width := 0
	for _, tag := range tags {
		if len(tag) > width {
			width = len(tag)
		}
	}
	for _, tag := range tags {
		n := store.Count(tag)
		total += n
		line := fmt.Sprintf("  %-*s %8d", width, tag, n)
		if ui.IsTerminal() {
			fmt.Println(ui.MutedStyle.Render(line))
		} else {
			fmt.Println(line)
		}
	}
	summary := fmt.Sprintf("%d records across %d entity types", total, len(tags))
	if ui.IsTerminal() {
		fmt.Println(ui.HeaderStyle.Render(summary))
	} else {
		fmt.Println(summary)
	}
	return nil
}

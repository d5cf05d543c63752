package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"localfile/internal/history"
)

var historyLimit int

// historyCmd lists the group audit trail.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent changes to a group's store",
	Long: `List recent commits of the group data directory: blueprint
generations and applied edit payloads, newest first.`,
	RunE: runHistory,
}

// historyShowCmd prints one store file as it was at a commit.
var historyShowCmd = &cobra.Command{
	Use:   "show <hash> [file]",
	Short: "Print a store file as it was at a commit",
	Long: `Print a file from the group data directory as it was at the given
commit. The hash may be abbreviated. The file defaults to data.json;
pass a path such as blueprints/acme-nl-2024.json for a blueprint.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runHistoryShow,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum entries to list")
	historyCmd.AddCommand(historyShowCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if groupID == "" {
		return fmt.Errorf("required flag missing: --group")
	}

	hist := history.New(cfg.DataDir)
	entries, err := hist.History(groupID, historyLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No history yet.")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s  %s  %s  %s\n",
			e.Hash, e.CreatedAt.Format("2006-01-02 15:04"), e.Author, e.Message)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if groupID == "" {
		return fmt.Errorf("required flag missing: --group")
	}
	rel := "data.json"
	if len(args) == 2 {
		rel = args[1]
	}

	hist := history.New(cfg.DataDir)
	raw, err := hist.FileAt(groupID, args[0], rel)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(raw)
	return err
}

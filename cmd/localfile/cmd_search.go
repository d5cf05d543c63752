package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"localfile/internal/search"
)

var searchLimit int

// searchCmd indexes the deliverable and queries its sections.
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the resolved sections of a deliverable",
	Long: `Assemble the deliverable, index its resolved sections and search
them. Meilisearch is used when configured and reachable; otherwise an
in-memory matcher answers the query, so search works offline.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "Maximum hits to list")
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := requireDeliverableFlags(); err != nil {
		return err
	}

	vm, err := assembleViewModel()
	if err != nil {
		return err
	}

	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey, logger)
		defer meiliClient.Close()
	}
	svc := search.NewService(meiliClient, logger)

	// Synchronous here: the query below must see this pass.
	svc.Index(search.RecordsFromViewModel(vm, entityID, fiscalYear), true)

	resp := svc.Search(search.Query{
		Text:       strings.Join(args, " "),
		Entity:     entityID,
		FiscalYear: fiscalYear,
		Limit:      searchLimit,
	})
	if resp.Total == 0 {
		fmt.Println("No matches.")
		return nil
	}
	fmt.Printf("%d match(es):\n", resp.Total)
	for _, r := range resp.Results {
		fmt.Printf("  %s %s [%s]\n    %s\n", r.Number, r.Title, r.Path, r.Snippet)
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"localfile/internal/blueprint"
	"localfile/internal/faults"
	"localfile/internal/history"
)

var blueprintProfiles []string

// blueprintCmd regenerates the blueprint for one deliverable.
var blueprintCmd = &cobra.Command{
	Use:   "blueprint",
	Short: "Generate or regenerate a deliverable blueprint",
	Long: `Generate the blueprint for an entity and fiscal year from the group
record store. When a blueprint already exists, its content bindings,
notes, footnotes and title overrides are carried over, so regeneration
never loses edits.`,
	RunE: runBlueprint,
}

func init() {
	blueprintCmd.Flags().StringSliceVar(&blueprintProfiles, "profiles", nil, "Functional profile slugs to cover, e.g. manufacturing,distribution")
}

func runBlueprint(cmd *cobra.Command, args []string) error {
	if err := requireDeliverableFlags(); err != nil {
		return err
	}

	store, err := loadStore()
	if err != nil {
		return err
	}

	path := blueprint.BlueprintPath(groupDir(), entityID, fiscalYear)
	var prior *blueprint.Blueprint
	switch existing, err := blueprint.LoadBlueprint(path); {
	case err == nil:
		prior = existing
	case faults.IsKind(err, faults.KindContentNotFound):
		// First generation for this deliverable.
	default:
		return err
	}
	if prior != nil && len(blueprintProfiles) == 0 {
		blueprintProfiles = prior.CoveredProfiles
	}

	bp, err := blueprint.Generate(store, entityID, fiscalYear, blueprintProfiles, prior)
	if err != nil {
		return err
	}
	if err := bp.SaveTo(path); err != nil {
		return err
	}
	logger.Info("blueprint written",
		zap.String("path", path),
		zap.Int("sections", len(bp.Content)),
		zap.Int("covered_transactions", len(bp.CoveredTransactions)))

	hist := history.New(cfg.DataDir)
	if err := hist.EnsureRepo(groupID); err != nil {
		return err
	}
	msg := fmt.Sprintf("Regenerate blueprint for %s FY%s", entityID, fiscalYear)
	if prior == nil {
		msg = fmt.Sprintf("Generate blueprint for %s FY%s", entityID, fiscalYear)
	}
	info, err := hist.Commit(groupID, "localfile", msg,
		"data.json", fmt.Sprintf("blueprints/%s-%s.json", entityID, fiscalYear))
	if err != nil {
		return fmt.Errorf("record history: %w", err)
	}
	fmt.Printf("Blueprint written to %s (commit %s)\n", path, info.Hash)
	return nil
}

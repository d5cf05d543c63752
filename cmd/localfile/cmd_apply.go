package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"localfile/internal/blueprint"
	"localfile/internal/editdiff"
	"localfile/internal/history"
)

var (
	applyFile string
	applyYes  bool
)

// applyCmd applies an edit-diff payload to the deliverable state.
var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a workspace-editor change payload",
	Long: `Apply a change payload pasted back from the editing surface.
Application is all-or-nothing: when any part of the payload is invalid
nothing is persisted. Transaction roster changes prompt for
confirmation unless --yes is given.`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVarP(&applyFile, "file", "f", "", "Payload JSON file (default: stdin)")
	applyCmd.Flags().BoolVar(&applyYes, "yes", false, "Confirm transaction roster changes without prompting")
}

func terminalConfirm(prompt string) (bool, error) {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func runApply(cmd *cobra.Command, args []string) error {
	if err := requireDeliverableFlags(); err != nil {
		return err
	}

	var raw []byte
	var err error
	if applyFile == "" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(applyFile)
	}
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}

	store, err := loadStore()
	if err != nil {
		return err
	}
	bp, err := loadBlueprint()
	if err != nil {
		return err
	}
	exp, err := blueprint.ExpansionFor(store, bp)
	if err != nil {
		return err
	}
	tpl, err := loadTemplate()
	if err != nil {
		return err
	}
	tree, err := blueprint.Build(tpl, exp)
	if err != nil {
		return err
	}

	confirm := editdiff.ConfirmFunc(terminalConfirm)
	if applyYes {
		confirm = func(string) (bool, error) { return true, nil }
	}

	applicator := &editdiff.Applicator{
		Store:        store,
		Blueprint:    bp,
		SectionPaths: tree.Paths(),
		Confirm:      confirm,
		Logger:       logger,
	}
	result, err := applicator.Apply(raw)
	if err != nil {
		return err
	}

	// Stage both files before renaming either, so a failure between
	// the two writes never persists half the payload.
	commitStore, err := store.Stage()
	if err != nil {
		return err
	}
	commitBlueprint, err := bp.Stage()
	if err != nil {
		return err
	}
	if err := commitStore(); err != nil {
		return err
	}
	if err := commitBlueprint(); err != nil {
		return err
	}

	msg := strings.Join(result.Summary, "; ")
	if msg == "" {
		msg = fmt.Sprintf("Apply edits for %s FY%s", entityID, fiscalYear)
	}
	hist := history.New(cfg.DataDir)
	if err := hist.EnsureRepo(groupID); err != nil {
		return err
	}
	info, err := hist.Commit(groupID, "workspace-editor", msg,
		"data.json", fmt.Sprintf("blueprints/%s-%s.json", entityID, fiscalYear))
	if err != nil {
		return fmt.Errorf("record history: %w", err)
	}

	logger.Info("payload applied",
		zap.Int("sections_changed", result.SectionsChanged),
		zap.Int("status_changed", result.StatusChanged),
		zap.Int("transactions_changed", result.TransactionsChanged),
		zap.String("commit", info.Hash))
	fmt.Printf("Applied: %d section(s), %d status flag(s), %d transaction(s) changed (commit %s)\n",
		result.SectionsChanged, result.StatusChanged, result.TransactionsChanged, info.Hash)
	return nil
}

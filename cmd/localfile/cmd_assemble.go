package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var assembleOut string

// assembleCmd runs one resolution pass and emits the view model JSON.
var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Resolve a deliverable and emit its view model",
	Long: `Run one resolution pass for an entity and fiscal year: expand the
section tree from the blueprint, resolve every section across the
content cascade, generate the record-driven tables and emit the view
model as JSON.`,
	RunE: runAssemble,
}

func init() {
	assembleCmd.Flags().StringVarP(&assembleOut, "out", "o", "", "Write view model JSON to this file (default: stdout)")
}

func runAssemble(cmd *cobra.Command, args []string) error {
	if err := requireDeliverableFlags(); err != nil {
		return err
	}

	vm, err := assembleViewModel()
	if err != nil {
		return err
	}

	raw, err := json.MarshalIndent(vm, "", "  ")
	if err != nil {
		return fmt.Errorf("encode view model: %w", err)
	}
	raw = append(raw, '\n')

	if assembleOut == "" {
		_, err = os.Stdout.Write(raw)
		return err
	}
	if err := os.WriteFile(assembleOut, raw, 0o644); err != nil {
		return fmt.Errorf("write view model: %w", err)
	}
	fmt.Printf("Wrote %s (%d sections)\n", assembleOut, vm.Progress.SectionsTotal)
	return nil
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"localfile/internal/assemble"
	"localfile/internal/export"
)

var (
	exportFormat string
	exportOut    string
)

// exportCmd renders the deliverable to HTML or PDF.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a deliverable as HTML or PDF",
	Long: `Assemble the deliverable and render it to a standalone HTML document,
or print that document to PDF through headless Chrome.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "pdf", "Output format: pdf or html")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default: derived from the document title)")
}

func runExport(cmd *cobra.Command, args []string) error {
	if err := requireDeliverableFlags(); err != nil {
		return err
	}

	vm, err := assembleViewModel()
	if err != nil {
		return err
	}

	res, err := exportResult(cmd, vm)
	if err != nil {
		return err
	}

	out := exportOut
	if out == "" {
		out = res.Filename
	}
	if err := os.WriteFile(out, res.Data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	logger.Info("exported deliverable",
		zap.String("format", exportFormat),
		zap.String("file", out),
		zap.Int("bytes", len(res.Data)))
	fmt.Printf("Wrote %s\n", out)
	return nil
}

func exportResult(cmd *cobra.Command, vm *assemble.ViewModel) (*export.Result, error) {
	switch exportFormat {
	case "pdf":
		return export.PDF(cmd.Context(), vm, cfg.ChromePath)
	case "html":
		html, err := export.RenderDocumentHTML(vm)
		if err != nil {
			return nil, err
		}
		return &export.Result{
			Data:     []byte(html),
			Filename: entityID + "-" + fiscalYear + ".html",
			MimeType: "text/html; charset=utf-8",
		}, nil
	default:
		return nil, fmt.Errorf("unsupported format %q (want pdf or html)", exportFormat)
	}
}

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"localfile/internal/export"
	"localfile/internal/publish"
)

var publishSkipPDF bool

// publishCmd uploads the deliverable to object storage.
var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish a deliverable to object storage",
	Long: `Assemble the deliverable and upload its PDF, HTML and view model JSON
to the configured S3-compatible bucket under
{group}/{entity}/{fiscal-year}/.`,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().BoolVar(&publishSkipPDF, "skip-pdf", false, "Publish only HTML and view model JSON")
}

func runPublish(cmd *cobra.Command, args []string) error {
	if err := requireDeliverableFlags(); err != nil {
		return err
	}
	if cfg.MinioEndpoint == "" {
		return fmt.Errorf("MINIO_ENDPOINT is not configured")
	}

	vm, err := assembleViewModel()
	if err != nil {
		return err
	}

	publisher, err := publish.New(publish.Options{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	var results []*export.Result

	viewJSON, err := json.MarshalIndent(vm, "", "  ")
	if err != nil {
		return fmt.Errorf("encode view model: %w", err)
	}
	results = append(results, &export.Result{
		Data:     viewJSON,
		Filename: fmt.Sprintf("%s-%s.json", entityID, fiscalYear),
		MimeType: "application/json",
	})

	html, err := export.RenderDocumentHTML(vm)
	if err != nil {
		return err
	}
	results = append(results, &export.Result{
		Data:     []byte(html),
		Filename: fmt.Sprintf("%s-%s.html", entityID, fiscalYear),
		MimeType: "text/html; charset=utf-8",
	})

	if !publishSkipPDF {
		pdf, err := export.PDF(cmd.Context(), vm, cfg.ChromePath)
		if err != nil {
			return err
		}
		results = append(results, pdf)
	}

	for _, res := range results {
		key, err := publisher.Publish(cmd.Context(), groupID, entityID, fiscalYear, res)
		if err != nil {
			return err
		}
		fmt.Printf("Published %s\n", key)
	}
	return nil
}

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"localfile/internal/assemble"
	"localfile/internal/blueprint"
	"localfile/internal/layers"
	"localfile/internal/records"
)

func requireDeliverableFlags() error {
	var missing []string
	if groupID == "" {
		missing = append(missing, "--group")
	}
	if entityID == "" {
		missing = append(missing, "--entity")
	}
	if fiscalYear == "" {
		missing = append(missing, "--fiscal-year")
	}
	if len(missing) > 0 {
		return fmt.Errorf("required flags missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

func groupDir() string {
	return filepath.Join(cfg.DataDir, groupID)
}

func loadStore() (*records.Store, error) {
	return records.Load(groupDir())
}

func loadBlueprint() (*blueprint.Blueprint, error) {
	return blueprint.LoadBlueprint(blueprint.BlueprintPath(groupDir(), entityID, fiscalYear))
}

// loadTemplate returns the section template for this run: the file
// named by --template when given, otherwise the built-in playbook.
func loadTemplate() (*blueprint.Template, error) {
	if templatePath == "" {
		return blueprint.DefaultTemplate(), nil
	}
	return blueprint.LoadTemplate(templatePath)
}

func newResolver() *layers.Resolver {
	return layers.NewResolver([]layers.Root{
		{Layer: layers.Entity, Dir: filepath.Join(cfg.EntityRoot, entityID)},
		{Layer: layers.Group, Dir: filepath.Join(cfg.GroupRoot, groupID)},
		{Layer: layers.Firm, Dir: cfg.FirmRoot},
		{Layer: layers.Universal, Dir: cfg.UniversalRoot},
	})
}

// assembleViewModel runs one full resolution pass for the deliverable
// named by the global flags.
func assembleViewModel() (*assemble.ViewModel, error) {
	store, err := loadStore()
	if err != nil {
		return nil, err
	}
	bp, err := loadBlueprint()
	if err != nil {
		return nil, err
	}
	tpl, err := loadTemplate()
	if err != nil {
		return nil, err
	}
	a := &assemble.Assembler{
		Store:         store,
		Blueprint:     bp,
		Template:      tpl,
		Resolver:      newResolver(),
		ReferencesDir: cfg.UniversalRoot,
		Logger:        logger,
	}
	return a.Assemble()
}

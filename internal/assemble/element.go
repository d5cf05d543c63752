// Package assemble runs one resolution pass: it expands the template
// against a blueprint, resolves every section's content across the
// layer cascade, generates auto tables, and serializes the view model
// consumed by renderers and the workspace editor.
package assemble

import (
	"localfile/internal/autotable"
	"localfile/internal/records"
)

// Part is one contribution to a composite element, carrying its own
// layer metadata.
type Part struct {
	Text       string `json:"text"`
	Layer      int    `json:"layer"`
	LayerLabel string `json:"layer_label"`
	LayerColor string `json:"layer_color"`
	Source     string `json:"source,omitempty"`
	Editable   bool   `json:"editable"`
}

// Element is one resolved section. Exactly one of Text and AutoTable
// is meaningful: auto sections never carry authored text. An element
// with no layer is a placeholder awaiting content.
type Element struct {
	Title      string                `json:"title"`
	Number     string                `json:"number"`
	Path       string                `json:"path"`
	Text       string                `json:"text"`
	Layer      int                   `json:"layer,omitempty"`
	LayerLabel string                `json:"layer_label,omitempty"`
	LayerColor string                `json:"layer_color,omitempty"`
	Composite  bool                  `json:"composite,omitempty"`
	Parts      []Part                `json:"parts,omitempty"`
	IsAuto     bool                  `json:"is_auto,omitempty"`
	AutoTable  *autotable.Table      `json:"auto_table,omitempty"`
	Notes      []string              `json:"notes,omitempty"`
	Footnotes  []string              `json:"footnotes,omitempty"`
	Editable   bool                  `json:"editable"`
	Status     records.SectionStatus `json:"status"`
}

// ChapterSection is a second-level tree entry; Keys collects the
// element keys of its leaf descendants (or itself when it is a leaf).
type ChapterSection struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Number string   `json:"number"`
	Keys   []string `json:"keys"`
}

type Chapter struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Number   string           `json:"number"`
	Keys     []string         `json:"keys"`
	Sections []ChapterSection `json:"sections"`
}

type Document struct {
	Title      string            `json:"title"`
	Subtitle   string            `json:"subtitle"`
	Entity     string            `json:"entity"`
	Group      string            `json:"group"`
	FiscalYear string            `json:"fiscal_year"`
	Stage      string            `json:"stage"`
	StageLabel string            `json:"stage_label"`
	Meta       map[string]string `json:"meta,omitempty"`
}

type Progress struct {
	SectionsTotal int `json:"sections_total"`
	Reviewed      int `json:"reviewed"`
	SignedOff     int `json:"signed_off"`
	ReviewedPct   int `json:"reviewed_pct"`
	SignedOffPct  int `json:"signed_off_pct"`
}

// ViewModel is the renderer-agnostic output of a resolution pass.
// GeneratedAt is its only non-deterministic field.
type ViewModel struct {
	SchemaVersion   string             `json:"schema_version"`
	GeneratedAt     string             `json:"generated_at"`
	Document        Document           `json:"document"`
	Progress        Progress           `json:"progress"`
	Chapters        []Chapter          `json:"chapters"`
	Elements        map[string]Element `json:"elements"`
	GeneralNotes    []string           `json:"general_notes"`
	JurisdictionSVG string             `json:"jurisdiction_svg"`
}

var stageLabels = map[string]string{
	"draft":  "Draft",
	"review": "In Review",
	"final":  "Final",
}

// StageLabel maps a stage slug to its display label.
func StageLabel(stage string) string {
	if label, ok := stageLabels[stage]; ok {
		return label
	}
	return "Draft"
}

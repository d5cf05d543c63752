package blueprint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"localfile/internal/faults"
	"localfile/internal/pathkey"
)

const SchemaVersion = "0.5.0"

// Blueprint is the per-deliverable configuration document: which
// template it is based on, what it covers, and the content source
// lists keyed by section path. Notes and footnotes are additive only;
// nothing here ever drops a prior entry silently.
type Blueprint struct {
	SchemaVersion       string              `json:"schema_version"`
	BasedOn             string              `json:"based_on"`
	Entity              string              `json:"entity"`
	FiscalYear          string              `json:"fiscal_year"`
	CoveredProfiles     []string            `json:"covered_profiles"`
	CoveredTransactions []string            `json:"covered_transactions"`
	Content             map[string][]string `json:"content"`
	SectionNotes        map[string][]string `json:"section_notes,omitempty"`
	GeneralNotes        []string            `json:"general_notes,omitempty"`
	Footnotes           map[string][]string `json:"footnotes,omitempty"`
	TitleOverrides      map[string]string   `json:"title_overrides,omitempty"`

	path string
}

// BlueprintPath is the canonical location of a deliverable's blueprint
// inside its group directory.
func BlueprintPath(groupDir, entity, fiscalYear string) string {
	return filepath.Join(groupDir, "blueprints", fmt.Sprintf("%s-%s.json", entity, fiscalYear))
}

func LoadBlueprint(path string) (*Blueprint, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, faults.NotFound(path, "read blueprint: %v", err)
	}
	var b Blueprint
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, faults.Configuration(path, "blueprint is not valid JSON: %v", err)
	}
	if b.Content == nil {
		b.Content = map[string][]string{}
	}
	for path := range b.Content {
		if err := validateContentPath(path); err != nil {
			return nil, err
		}
	}
	b.path = path
	return &b, nil
}

// Stage writes the blueprint to a temp file and returns the commit
// that renames it into place. Apply saves the record store and the
// blueprint together; staging both before committing either keeps a
// failed save from persisting half the pair.
func (b *Blueprint) Stage() (func() error, error) {
	if b.path == "" {
		return nil, faults.Configuration("", "blueprint was not loaded from disk")
	}
	return b.stageTo(b.path)
}

func (b *Blueprint) stageTo(path string) (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create blueprint dir: %w", err)
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal blueprint: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return nil, fmt.Errorf("write blueprint: %w", err)
	}
	return func() error {
		if err := os.Rename(tmp, path); err != nil {
			return err
		}
		b.path = path
		return nil
	}, nil
}

func (b *Blueprint) Save() error {
	commit, err := b.Stage()
	if err != nil {
		return err
	}
	return commit()
}

func (b *Blueprint) SaveTo(path string) error {
	commit, err := b.stageTo(path)
	if err != nil {
		return err
	}
	return commit()
}

// Clone deep-copies the blueprint. Diff application mutates a clone
// and swaps it in only after the whole payload applies cleanly.
func (b *Blueprint) Clone() *Blueprint {
	c := &Blueprint{
		SchemaVersion:       b.SchemaVersion,
		BasedOn:             b.BasedOn,
		Entity:              b.Entity,
		FiscalYear:          b.FiscalYear,
		CoveredProfiles:     append([]string(nil), b.CoveredProfiles...),
		CoveredTransactions: append([]string(nil), b.CoveredTransactions...),
		GeneralNotes:        append([]string(nil), b.GeneralNotes...),
		Content:             map[string][]string{},
		path:                b.path,
	}
	for k, v := range b.Content {
		c.Content[k] = append([]string(nil), v...)
	}
	if b.SectionNotes != nil {
		c.SectionNotes = map[string][]string{}
		for k, v := range b.SectionNotes {
			c.SectionNotes[k] = append([]string(nil), v...)
		}
	}
	if b.Footnotes != nil {
		c.Footnotes = map[string][]string{}
		for k, v := range b.Footnotes {
			c.Footnotes[k] = append([]string(nil), v...)
		}
	}
	if b.TitleOverrides != nil {
		c.TitleOverrides = map[string]string{}
		for k, v := range b.TitleOverrides {
			c.TitleOverrides[k] = v
		}
	}
	return c
}

// SetContent replaces the source list for a section path.
func (b *Blueprint) SetContent(path string, sources []string) error {
	if err := validateContentPath(path); err != nil {
		return err
	}
	if b.Content == nil {
		b.Content = map[string][]string{}
	}
	b.Content[path] = sources
	return nil
}

// AppendNote adds a section note without touching existing entries.
func (b *Blueprint) AppendNote(path, note string) {
	if b.SectionNotes == nil {
		b.SectionNotes = map[string][]string{}
	}
	b.SectionNotes[path] = append(b.SectionNotes[path], note)
}

// AppendFootnote adds a footnote without touching existing entries.
func (b *Blueprint) AppendFootnote(path, note string) {
	if b.Footnotes == nil {
		b.Footnotes = map[string][]string{}
	}
	b.Footnotes[path] = append(b.Footnotes[path], note)
}

// Content keys are slash paths. Element keys (underscored) arrive in
// edit payloads and are translated by the applicator before they reach
// the blueprint, so an underscore here means a bug upstream.
func validateContentPath(path string) error {
	return pathkey.ValidatePath(path)
}

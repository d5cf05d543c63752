package assemble

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"localfile/internal/records"
)

// jurisdictionMap mirrors the jurisdiction-maps.json asset shipped
// with the universal references.
type jurisdictionMap struct {
	ViewBox       string `json:"view_box"`
	Jurisdictions map[string]struct {
		Name string `json:"name"`
		Path string `json:"path"`
	} `json:"jurisdictions"`
}

const (
	svgFillBase      = "#e2e8f0"
	svgFillContext   = "#94a3b8"
	svgFillHighlight = "#3b82f6"
)

// buildJurisdictionSVG renders the group footprint map: the local
// entity's jurisdiction highlighted, other group jurisdictions in a
// context shade, the rest muted. Returns "" when the map asset or the
// entity's jurisdiction is unavailable; the map is decoration, so its
// absence is never an error.
func buildJurisdictionSVG(referencesDir string, store *records.Store, entityID string) string {
	raw, err := os.ReadFile(filepath.Join(referencesDir, "jurisdiction-maps.json"))
	if err != nil {
		return ""
	}
	var m jurisdictionMap
	if err := json.Unmarshal(raw, &m); err != nil {
		return ""
	}

	entity, err := store.FindEntity(entityID)
	if err != nil || entity.Jurisdiction == "" {
		return ""
	}
	if _, ok := m.Jurisdictions[entity.Jurisdiction]; !ok {
		return ""
	}

	context := map[string]bool{}
	for _, e := range store.Entities {
		if e.Jurisdiction != "" && e.Jurisdiction != entity.Jurisdiction {
			context[e.Jurisdiction] = true
		}
	}

	codes := make([]string, 0, len(m.Jurisdictions))
	for code := range m.Jurisdictions {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var b strings.Builder
	viewBox := m.ViewBox
	if viewBox == "" {
		viewBox = "0 0 1000 600"
	}
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s" role="img">`, viewBox)
	for _, code := range codes {
		j := m.Jurisdictions[code]
		fill := svgFillBase
		role := "base"
		switch {
		case code == entity.Jurisdiction:
			fill = svgFillHighlight
			role = "highlight"
		case context[code]:
			fill = svgFillContext
			role = "context"
		}
		fmt.Fprintf(&b, `<path d="%s" fill="%s" data-jurisdiction="%s" data-role="%s"><title>%s</title></path>`,
			j.Path, fill, code, role, j.Name)
	}
	b.WriteString(`</svg>`)
	return b.String()
}

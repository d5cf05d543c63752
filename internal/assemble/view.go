package assemble

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"localfile/internal/autotable"
	"localfile/internal/blueprint"
	"localfile/internal/faults"
	"localfile/internal/layers"
	"localfile/internal/pathkey"
	"localfile/internal/records"
)

// Assembler binds the inputs of one resolution pass. It is a pure
// function of the store, blueprint and override tree: the pass either
// returns a complete view model or fails without partial output.
type Assembler struct {
	Store         *records.Store
	Blueprint     *blueprint.Blueprint
	Template      *blueprint.Template
	Resolver      *layers.Resolver
	ReferencesDir string
	// Clock feeds generated_at; injectable so repeated passes over the
	// same inputs can be compared byte for byte.
	Clock  func() time.Time
	Logger *zap.Logger
}

func (a *Assembler) template() *blueprint.Template {
	if a.Template != nil {
		return a.Template
	}
	return blueprint.DefaultTemplate()
}

func (a *Assembler) logger() *zap.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return zap.NewNop()
}

func (a *Assembler) now() time.Time {
	if a.Clock != nil {
		return a.Clock()
	}
	return time.Now()
}

// Assemble runs the full pass.
func (a *Assembler) Assemble() (*ViewModel, error) {
	bp := a.Blueprint
	lf, err := a.Store.FindLocalFile(bp.Entity, bp.FiscalYear)
	if err != nil {
		return nil, err
	}
	entity, err := a.Store.FindEntity(bp.Entity)
	if err != nil {
		return nil, err
	}

	exp, err := blueprint.ExpansionFor(a.Store, bp)
	if err != nil {
		return nil, err
	}
	tree, err := blueprint.Build(a.template(), exp)
	if err != nil {
		return nil, err
	}

	known := map[string]bool{}
	for _, p := range tree.Paths() {
		known[p] = true
	}
	for path := range bp.Content {
		if !known[path] {
			return nil, faults.Configuration(path, "blueprint content targets a section absent from the tree")
		}
	}

	elements := map[string]Element{}
	var chapters []Chapter
	progress := Progress{}

	for _, leaf := range tree.Leaves() {
		el, err := a.resolveLeaf(leaf, lf)
		if err != nil {
			return nil, err
		}
		elements[pathkey.ToElementKey(leaf.Path)] = el
		progress.SectionsTotal++
		if el.Status.Reviewed {
			progress.Reviewed++
		}
		if el.Status.SignedOff {
			progress.SignedOff++
		}
	}
	if progress.SectionsTotal > 0 {
		progress.ReviewedPct = (progress.Reviewed*100 + progress.SectionsTotal/2) / progress.SectionsTotal
		progress.SignedOffPct = (progress.SignedOff*100 + progress.SectionsTotal/2) / progress.SectionsTotal
	}

	for _, ch := range tree.Chapters {
		chapters = append(chapters, bridgeChapter(ch))
	}

	doc := Document{
		Title:      lf.Title,
		Subtitle:   lf.Subtitle,
		Entity:     entity.Name,
		Group:      a.Store.Group.Name,
		FiscalYear: lf.FiscalYear,
		Stage:      lf.Stage,
		StageLabel: StageLabel(lf.Stage),
		Meta:       lf.Meta,
	}
	if doc.Title == "" {
		doc.Title = "Transfer Pricing Local File - " + entity.Name
	}
	if doc.Subtitle == "" {
		doc.Subtitle = "Fiscal Year " + lf.FiscalYear
	}
	if doc.Stage == "" {
		doc.Stage = "draft"
		doc.StageLabel = StageLabel("draft")
	}

	notes := bp.GeneralNotes
	if notes == nil {
		notes = []string{}
	}

	vm := &ViewModel{
		SchemaVersion:   blueprint.SchemaVersion,
		GeneratedAt:     a.now().UTC().Format(time.RFC3339),
		Document:        doc,
		Progress:        progress,
		Chapters:        chapters,
		Elements:        elements,
		GeneralNotes:    notes,
		JurisdictionSVG: buildJurisdictionSVG(a.ReferencesDir, a.Store, bp.Entity),
	}
	a.logger().Info("assembled view model",
		zap.String("entity", bp.Entity),
		zap.String("fiscal_year", bp.FiscalYear),
		zap.Int("sections", progress.SectionsTotal),
		zap.Int("chapters", len(chapters)))
	return vm, nil
}

func (a *Assembler) resolveLeaf(leaf *blueprint.Section, lf *records.LocalFile) (Element, error) {
	el := Element{
		Title:     leaf.Title,
		Number:    leaf.Number,
		Path:      leaf.Path,
		Notes:     a.Blueprint.SectionNotes[leaf.Path],
		Footnotes: a.Blueprint.Footnotes[leaf.Path],
		Status:    lf.SectionStatus[leaf.Path],
	}

	if leaf.Table != "" {
		tbl, ok, err := a.generateTable(leaf)
		if err != nil {
			return Element{}, err
		}
		el.IsAuto = true
		if ok {
			el.AutoTable = &tbl
		}
		return el, nil
	}

	text, layer, composite, parts, err := resolveSources(a.Resolver, leaf.Path, a.Blueprint.Content[leaf.Path])
	if err != nil {
		return Element{}, err
	}
	el.Text = text
	el.Composite = composite
	el.Parts = parts
	if layer > 0 {
		el.Layer = int(layer)
		el.LayerLabel = layer.Label()
		el.LayerColor = layer.Color()
		el.Editable = layer >= layers.Entity
	}
	return el, nil
}

func (a *Assembler) generateTable(leaf *blueprint.Section) (autotable.Table, bool, error) {
	switch {
	case leaf.Table == autotable.KindTransactionsOverview:
		t, err := autotable.TransactionsOverview(a.Store, a.Blueprint.CoveredTransactions)
		return t, true, err
	case leaf.Table == autotable.KindTransactionsNotCovered:
		t, err := autotable.TransactionsNotCovered(a.Store, a.Blueprint.Entity, a.Blueprint.CoveredTransactions)
		return t, true, err
	case leaf.Table == autotable.KindContractualTerms:
		t, err := autotable.ContractualTerms(a.Store, leaf.Owner)
		return t, true, err
	case leaf.Table == autotable.KindCharacteristics:
		return autotable.Characteristics(a.Store, leaf.Owner)
	case leaf.Table == autotable.KindEconomicCircumstances:
		t, err := autotable.EconomicCircumstances(a.Store, leaf.Owner)
		return t, true, err
	case strings.HasPrefix(leaf.Table, autotable.KindBenchmarkPrefix):
		tableID := strings.TrimPrefix(leaf.Table, autotable.KindBenchmarkPrefix)
		t, err := autotable.Benchmark(a.Store, leaf.Owner, tableID)
		return t, true, err
	}
	return autotable.Table{}, false, faults.Configuration(leaf.Path, "unknown auto-table kind %q", leaf.Table)
}

func bridgeChapter(ch *blueprint.Section) Chapter {
	out := Chapter{ID: ch.ID, Title: ch.Title, Number: ch.Number}
	if len(ch.Children) == 0 {
		out.Keys = []string{pathkey.ToElementKey(ch.Path)}
		return out
	}
	for _, sec := range ch.Children {
		cs := ChapterSection{
			ID:     sec.ID,
			Title:  sec.Title,
			Number: sec.Number,
			Keys:   leafKeys(sec),
		}
		out.Sections = append(out.Sections, cs)
		out.Keys = append(out.Keys, cs.Keys...)
	}
	return out
}

// leafKeys rolls descendant leaves up into the depth-1 section, so
// consumers of the three-level chapter shape still reach every element
// of deeper dynamic sub-trees.
func leafKeys(sec *blueprint.Section) []string {
	if len(sec.Children) == 0 {
		return []string{pathkey.ToElementKey(sec.Path)}
	}
	var keys []string
	for _, child := range sec.Children {
		keys = append(keys, leafKeys(child)...)
	}
	return keys
}

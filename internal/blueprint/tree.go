package blueprint

import (
	"fmt"
	"strings"

	"localfile/internal/autotable"
	"localfile/internal/faults"
	"localfile/internal/pathkey"
)

// Ref names one covered entry driving a dynamic expansion: a profile
// slug, a transaction id, or a benchmark slug, plus its display title.
// Financial marks transaction types documented without a
// characteristics section.
type Ref struct {
	ID        string
	Title     string
	Financial bool
}

// Expansion carries everything that varies per deliverable when the
// template is built into a concrete tree.
type Expansion struct {
	Profiles       []Ref
	Transactions   []Ref
	Benchmarks     []Ref
	TitleOverrides map[string]string
}

// Section is a built tree node. Owner is the dynamic entry the section
// descends from (transaction id or benchmark slug); auto-table
// generators use it to locate their records.
type Section struct {
	ID       string
	Title    string
	Path     string
	Number   string
	Table    string
	Owner    string
	Children []*Section
}

// Tree is the fully expanded, pruned and numbered section tree.
type Tree struct {
	Chapters []*Section
}

// Build expands the template against one deliverable's configuration.
// Dynamic placeholders are replaced by one section per covered entry;
// entries outside the covered lists are pruned outright, and numbering
// is recomputed from surviving positions so stale ordinals never
// appear. Title overrides replace defaults here, at build time, so
// every consumer sees the same titles.
func Build(tpl *Template, exp Expansion) (*Tree, error) {
	if err := tpl.validate(); err != nil {
		return nil, err
	}
	tree := &Tree{}
	for _, n := range tpl.Sections {
		built, err := buildNodes(tpl, n, "", "", exp)
		if err != nil {
			return nil, err
		}
		tree.Chapters = append(tree.Chapters, built...)
	}
	number(tree.Chapters, "")
	if err := tree.applyTitleOverrides(exp.TitleOverrides); err != nil {
		return nil, err
	}
	return tree, nil
}

func buildNodes(tpl *Template, n Node, parentPath, owner string, exp Expansion) ([]*Section, error) {
	if n.Dynamic == "" {
		sec := &Section{
			ID:    n.ID,
			Title: n.Title,
			Path:  pathkey.Join(parentPath, n.ID),
			Table: n.Table,
			Owner: owner,
		}
		for _, child := range n.Children {
			built, err := buildNodes(tpl, child, sec.Path, owner, exp)
			if err != nil {
				return nil, err
			}
			sec.Children = append(sec.Children, built...)
		}
		return []*Section{sec}, nil
	}

	sub, ok := tpl.DynamicTemplates[n.Dynamic]
	if !ok {
		return nil, faults.Configuration(n.ID, "unknown dynamic template %q", n.Dynamic)
	}
	var entries []Ref
	switch n.Dynamic {
	case DynamicProfile:
		entries = exp.Profiles
	case DynamicTransaction:
		entries = exp.Transactions
	case DynamicBenchmark:
		entries = exp.Benchmarks
	default:
		return nil, faults.Configuration(n.ID, "dynamic template %q has no covering list", n.Dynamic)
	}

	var out []*Section
	for _, entry := range entries {
		if err := pathkey.ValidateID(entry.ID); err != nil {
			return nil, err
		}
		title := entry.Title
		if title == "" {
			title = pathkey.MakeTitle(entry.ID)
		}
		sec := &Section{
			ID:    entry.ID,
			Title: title,
			Path:  pathkey.Join(parentPath, entry.ID),
			Owner: entry.ID,
		}
		for _, child := range sub {
			if entry.Financial && child.Table == autotable.KindCharacteristics {
				continue
			}
			built, err := buildNodes(tpl, child, sec.Path, entry.ID, exp)
			if err != nil {
				return nil, err
			}
			sec.Children = append(sec.Children, built...)
		}
		out = append(out, sec)
	}
	return out, nil
}

func number(secs []*Section, prefix string) {
	for i, s := range secs {
		if prefix == "" {
			s.Number = fmt.Sprintf("%d", i+1)
		} else {
			s.Number = fmt.Sprintf("%s.%d", prefix, i+1)
		}
		number(s.Children, s.Number)
	}
}

func (t *Tree) applyTitleOverrides(overrides map[string]string) error {
	for path, title := range overrides {
		sec := t.Find(path)
		if sec == nil {
			return faults.Configuration(path, "title override targets a section absent from the tree")
		}
		sec.Title = title
	}
	return nil
}

// Walk visits every section depth-first in document order.
func (t *Tree) Walk(fn func(*Section)) {
	var visit func([]*Section)
	visit = func(secs []*Section) {
		for _, s := range secs {
			fn(s)
			visit(s.Children)
		}
	}
	visit(t.Chapters)
}

// Leaves returns the content-bearing sections (no children) in
// document order.
func (t *Tree) Leaves() []*Section {
	var out []*Section
	t.Walk(func(s *Section) {
		if len(s.Children) == 0 {
			out = append(out, s)
		}
	})
	return out
}

// Find locates a section by slash path.
func (t *Tree) Find(path string) *Section {
	var found *Section
	t.Walk(func(s *Section) {
		if s.Path == path {
			found = s
		}
	})
	return found
}

// Paths lists every section path in document order.
func (t *Tree) Paths() []string {
	var out []string
	t.Walk(func(s *Section) {
		out = append(out, s.Path)
	})
	return out
}

func validateNodes(nodes []Node) error {
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if err := pathkey.ValidateID(n.ID); err != nil {
			return err
		}
		if seen[n.ID] {
			return faults.Configuration(n.ID, "duplicate sibling section id")
		}
		seen[n.ID] = true
		if n.Dynamic != "" && len(n.Children) > 0 {
			return faults.Configuration(n.ID, "dynamic placeholder may not declare children")
		}
		if n.Table != "" && !validTableKind(n.Table) {
			return faults.Configuration(n.ID, "unknown auto-table kind %q", n.Table)
		}
		if err := validateNodes(n.Children); err != nil {
			return err
		}
	}
	return nil
}

func validTableKind(kind string) bool {
	switch kind {
	case autotable.KindTransactionsOverview,
		autotable.KindTransactionsNotCovered,
		autotable.KindContractualTerms,
		autotable.KindCharacteristics,
		autotable.KindEconomicCircumstances:
		return true
	}
	return strings.HasPrefix(kind, autotable.KindBenchmarkPrefix)
}

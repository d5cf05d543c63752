package blueprint

import (
	"localfile/internal/faults"
	"localfile/internal/pathkey"
	"localfile/internal/records"
)

// methodReferences seeds the method-and-outcome section of a covered
// transaction with the universal write-up for its pricing method.
var methodReferences = map[string]string{
	"tnmm":         "@references/methods/tnmm",
	"cup":          "@references/methods/cup",
	"cost-plus":    "@references/methods/cost-plus",
	"resale-price": "@references/methods/resale-price",
	"profit-split": "@references/methods/profit-split",
	"valuation":    "@references/methods/valuation",
}

// Generate builds a fresh blueprint for one deliverable from the
// record store. Fixed sections are seeded with universal references;
// dynamic transaction sections get their overview and method content
// pre-wired. When prior is non-nil its content, notes, footnotes and
// title overrides are carried over, so regeneration never loses edits.
func Generate(store *records.Store, entity, fiscalYear string, profiles []string, prior *Blueprint) (*Blueprint, error) {
	if _, err := store.FindEntity(entity); err != nil {
		return nil, err
	}
	lf, err := store.FindLocalFile(entity, fiscalYear)
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		if err := pathkey.ValidateID(p); err != nil {
			return nil, err
		}
	}

	b := &Blueprint{
		SchemaVersion:       SchemaVersion,
		BasedOn:             "local-file",
		Entity:              entity,
		FiscalYear:          fiscalYear,
		CoveredProfiles:     append([]string(nil), profiles...),
		CoveredTransactions: append([]string(nil), lf.CoveredTransactions...),
		Content:             map[string][]string{},
	}

	seed := map[string][]string{
		"preamble/objective": {"@references/preamble/objective"},
		"preamble/scope":     {"@references/preamble/scope"},
		"group/overview":     {"@group/overview"},
		"group/structure":    {"@group/structure"},
		"group/industry":     {"@group/industry"},
		"entity/overview":    {"@entity/overview"},
		"closing/conclusion": {"@references/closing/conclusion"},
		"closing/disclaimer": {"@references/closing/disclaimer"},
	}
	for path, sources := range seed {
		b.Content[path] = sources
	}

	for _, slug := range profiles {
		base := pathkey.Join("entity/functional-profiles", slug)
		for _, leaf := range []string{"overview", "functions", "assets", "risks"} {
			p := pathkey.Join(base, leaf)
			b.Content[p] = []string{"@references/profiles/" + slug + "/" + leaf}
		}
	}

	for _, txID := range lf.CoveredTransactions {
		tx, err := store.FindTransaction(txID)
		if err != nil {
			return nil, err
		}
		base := pathkey.Join("transactions", tx.ID)
		b.Content[pathkey.Join(base, "overview")] = []string{"@references/transactions/" + tx.Type + "/overview"}
		b.Content[pathkey.Join(base, "functional-analysis")] = []string{"@references/transactions/" + tx.Type + "/functional-analysis"}
		if tx.Method != "" {
			ref, ok := methodReferences[tx.Method]
			if !ok {
				return nil, faults.Configuration(tx.ID, "unknown pricing method %q", tx.Method)
			}
			b.Content[pathkey.Join(base, "method-and-outcome")] = []string{ref}
		}
	}

	if prior != nil {
		for path, sources := range prior.Content {
			b.Content[path] = append([]string(nil), sources...)
		}
		for path, notes := range prior.SectionNotes {
			for _, n := range notes {
				b.AppendNote(path, n)
			}
		}
		for path, notes := range prior.Footnotes {
			for _, n := range notes {
				b.AppendFootnote(path, n)
			}
		}
		if len(prior.TitleOverrides) > 0 {
			b.TitleOverrides = map[string]string{}
			for k, v := range prior.TitleOverrides {
				b.TitleOverrides[k] = v
			}
		}
	}
	return b, nil
}

// ExpansionFor derives the dynamic-expansion inputs of a blueprint
// from the record store: transaction titles and financial flags, and
// the benchmark studies referenced by covered transactions, each
// benchmark listed once in first-reference order.
func ExpansionFor(store *records.Store, b *Blueprint) (Expansion, error) {
	exp := Expansion{TitleOverrides: b.TitleOverrides}
	for _, slug := range b.CoveredProfiles {
		exp.Profiles = append(exp.Profiles, Ref{ID: slug, Title: pathkey.MakeTitle(slug)})
	}
	seen := map[string]bool{}
	for _, txID := range b.CoveredTransactions {
		tx, err := store.FindTransaction(txID)
		if err != nil {
			return Expansion{}, err
		}
		exp.Transactions = append(exp.Transactions, Ref{
			ID:        tx.ID,
			Title:     tx.Name,
			Financial: records.IsFinancialType(tx.Type),
		})
		if tx.Benchmark != "" && !seen[tx.Benchmark] {
			seen[tx.Benchmark] = true
			bm, err := store.FindBenchmark(tx.Benchmark)
			if err != nil {
				return Expansion{}, err
			}
			exp.Benchmarks = append(exp.Benchmarks, Ref{ID: bm.Slug, Title: bm.Name})
		}
	}
	return exp, nil
}

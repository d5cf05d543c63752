// Package blueprint owns the section template, its expansion into a
// concrete deliverable tree, and the per-deliverable blueprint
// document (content source lists, notes, footnotes).
package blueprint

import (
	"encoding/json"
	"os"

	"localfile/internal/autotable"
	"localfile/internal/faults"
)

// Node is one template section. A node with Dynamic set is a
// placeholder: expansion replaces it in place with one section per
// covered entry, each carrying the named sub-template's children.
// Table marks an auto section with its generator kind.
type Node struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Dynamic  string `json:"dynamic,omitempty"`
	Table    string `json:"table,omitempty"`
	Children []Node `json:"children,omitempty"`
}

type Template struct {
	ID               string            `json:"id"`
	Sections         []Node            `json:"sections"`
	DynamicTemplates map[string][]Node `json:"dynamic_templates,omitempty"`
}

// Sub-template names.
const (
	DynamicProfile     = "functional-profile"
	DynamicTransaction = "covered-transaction"
	DynamicBenchmark   = "benchmark"
)

// LoadTemplate reads a template JSON document and validates it.
func LoadTemplate(path string) (*Template, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, faults.NotFound(path, "read template: %v", err)
	}
	var tpl Template
	if err := json.Unmarshal(raw, &tpl); err != nil {
		return nil, faults.Configuration(path, "template is not valid JSON: %v", err)
	}
	if err := tpl.validate(); err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (tpl *Template) validate() error {
	if err := validateNodes(tpl.Sections); err != nil {
		return err
	}
	for name, nodes := range tpl.DynamicTemplates {
		if err := validateNodes(nodes); err != nil {
			return faults.Configuration(name, "dynamic template: %v", err)
		}
	}
	return nil
}

// DefaultTemplate is the built-in local-file playbook: fixed chapters
// plus dynamic functional-profile, covered-transaction and benchmark
// sub-trees.
func DefaultTemplate() *Template {
	return &Template{
		ID: "local-file",
		Sections: []Node{
			{ID: "preamble", Title: "Preamble", Children: []Node{
				{ID: "objective", Title: "Objective"},
				{ID: "scope", Title: "Scope of This Document"},
			}},
			{ID: "group", Title: "Group Overview", Children: []Node{
				{ID: "overview", Title: "Business Overview"},
				{ID: "structure", Title: "Organizational Structure"},
				{ID: "industry", Title: "Industry Analysis"},
			}},
			{ID: "entity", Title: "Local Entity", Children: []Node{
				{ID: "overview", Title: "Entity Overview"},
				{ID: "functional-profiles", Title: "Functional Profiles", Children: []Node{
					{ID: "profiles", Dynamic: DynamicProfile},
				}},
			}},
			{ID: "transactions", Title: "Controlled Transactions", Children: []Node{
				{ID: "overview", Title: "Overview of Covered Transactions", Table: autotable.KindTransactionsOverview},
				{ID: "not-covered", Title: "Transactions Not Covered", Table: autotable.KindTransactionsNotCovered},
				{ID: "covered", Dynamic: DynamicTransaction},
			}},
			{ID: "benchmarks", Title: "Benchmark Studies", Children: []Node{
				{ID: "studies", Dynamic: DynamicBenchmark},
			}},
			{ID: "closing", Title: "Closing", Children: []Node{
				{ID: "conclusion", Title: "Conclusion"},
				{ID: "disclaimer", Title: "Disclaimer"},
			}},
		},
		DynamicTemplates: map[string][]Node{
			DynamicProfile: {
				{ID: "overview", Title: "Overview"},
				{ID: "functions", Title: "Functions Performed"},
				{ID: "assets", Title: "Assets Employed"},
				{ID: "risks", Title: "Risks Assumed"},
			},
			DynamicTransaction: {
				{ID: "overview", Title: "Overview"},
				{ID: "contractual-terms", Title: "Contractual Terms", Table: autotable.KindContractualTerms},
				{ID: "functional-analysis", Title: "Functional Analysis"},
				{ID: "characteristics", Title: "Characteristics", Table: autotable.KindCharacteristics},
				{ID: "economic-circumstances", Title: "Economic Circumstances", Table: autotable.KindEconomicCircumstances},
				{ID: "method-and-outcome", Title: "Method and Outcome"},
			},
			DynamicBenchmark: {
				{ID: "allocation", Title: "Allocation", Table: autotable.KindBenchmarkPrefix + "allocation"},
				{ID: "search-strategy", Title: "Search Strategy", Table: autotable.KindBenchmarkPrefix + "search_strategy"},
				{ID: "search-results", Title: "Search Results", Table: autotable.KindBenchmarkPrefix + "search_results"},
				{ID: "adjustments", Title: "Adjustments", Table: autotable.KindBenchmarkPrefix + "adjustments"},
			},
		},
	}
}

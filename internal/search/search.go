// Package search indexes the resolved sections of assembled local
// files so reviewers can find content across a deliverable.
// Meilisearch is the primary backend; an in-memory matcher keeps the
// command working when it is unreachable.
package search

// SectionRecord is the data indexed per resolved section.
type SectionRecord struct {
	ID         string `json:"id"`
	Key        string `json:"key"`
	Path       string `json:"path"`
	Title      string `json:"title"`
	Number     string `json:"number"`
	Text       string `json:"text"`
	LayerLabel string `json:"layerLabel"`
	Entity     string `json:"entity"`
	FiscalYear string `json:"fiscalYear"`
}

// Query describes a search request. Entity and FiscalYear narrow the
// hits to one deliverable; empty means all indexed deliverables.
type Query struct {
	Text       string
	Entity     string
	FiscalYear string
	Limit      int
	Offset     int
}

// Result is a single section hit.
type Result struct {
	Key        string `json:"key"`
	Path       string `json:"path"`
	Title      string `json:"title"`
	Number     string `json:"number"`
	Snippet    string `json:"snippet"`
	LayerLabel string `json:"layer_label,omitempty"`
}

// Response is the envelope returned to the caller.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a section search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// Indexer can push section records into an index.
type Indexer interface {
	IndexSections(records []SectionRecord) error
}

package search

import (
	"sort"
	"strings"
	"sync"
)

// Memory is the fallback backend: a case-insensitive substring
// matcher over the records indexed in this process. It is always
// healthy, so searches keep working without a Meilisearch server.
type Memory struct {
	mu      sync.RWMutex
	records map[string]SectionRecord
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string]SectionRecord)}
}

func (m *Memory) Healthy() bool { return true }

func (m *Memory) IndexSections(records []SectionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		m.records[r.ID] = r
	}
	return nil
}

func (m *Memory) Search(q Query) ([]Result, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(q.Text))
	var matched []SectionRecord
	for _, r := range m.records {
		if q.Entity != "" && r.Entity != q.Entity {
			continue
		}
		if q.FiscalYear != "" && r.FiscalYear != q.FiscalYear {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(r.Title), needle) &&
			!strings.Contains(strings.ToLower(r.Text), needle) &&
			!strings.Contains(strings.ToLower(r.Path), needle) {
			continue
		}
		matched = append(matched, r)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	start := q.Offset
	if start > total {
		start = total
	}
	limit := q.Limit
	if limit == 0 {
		limit = 20
	}
	end := start + limit
	if end > total {
		end = total
	}

	results := make([]Result, 0, end-start)
	for _, r := range matched[start:end] {
		results = append(results, Result{
			Key:        r.Key,
			Path:       r.Path,
			Title:      r.Title,
			Number:     r.Number,
			Snippet:    snippet(r.Text),
			LayerLabel: r.LayerLabel,
		})
	}
	return results, total, nil
}

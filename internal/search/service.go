package search

import (
	"go.uber.org/zap"

	"localfile/internal/assemble"
)

// Service is the facade: Meilisearch when healthy, the in-memory
// matcher otherwise.
type Service struct {
	meili  *Meili
	memory *Memory
	logger *zap.Logger
}

// NewService creates the facade. meili may be nil when Meilisearch is
// not configured.
func NewService(meili *Meili, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{meili: meili, memory: NewMemory(), logger: logger}
}

// Search tries Meilisearch if healthy, otherwise the memory backend.
func (s *Service) Search(q Query) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text}
		}
		s.logger.Warn("meilisearch error, falling back to memory index", zap.Error(err))
	}

	results, total, err := s.memory.Search(q)
	if err != nil {
		s.logger.Error("memory search failed", zap.Error(err))
		return Response{Results: []Result{}, Query: q.Text}
	}
	return Response{Results: nonNil(results), Total: total, Query: q.Text}
}

// Index pushes section records into both backends. The memory backend
// is updated synchronously so a search in the same process always sees
// the pass; Meilisearch indexing is fire-and-forget unless wait is
// set.
func (s *Service) Index(records []SectionRecord, wait bool) {
	if err := s.memory.IndexSections(records); err != nil {
		s.logger.Error("memory index failed", zap.Error(err))
	}
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	push := func() {
		if err := s.meili.IndexSections(records); err != nil {
			s.logger.Warn("meilisearch index failed", zap.Error(err))
		}
	}
	if wait {
		push()
		return
	}
	go push()
}

// IndexViewModel indexes every prose element of an assembled view
// model.
func (s *Service) IndexViewModel(vm *assemble.ViewModel, entity, fiscalYear string) {
	s.Index(RecordsFromViewModel(vm, entity, fiscalYear), false)
}

// RecordsFromViewModel flattens a view model into indexable section
// records. Auto sections carry no prose and are skipped.
func RecordsFromViewModel(vm *assemble.ViewModel, entity, fiscalYear string) []SectionRecord {
	var records []SectionRecord
	for key, el := range vm.Elements {
		if el.IsAuto {
			continue
		}
		records = append(records, SectionRecord{
			ID:         entity + "-" + fiscalYear + "-" + key,
			Key:        key,
			Path:       el.Path,
			Title:      el.Title,
			Number:     el.Number,
			Text:       el.Text,
			LayerLabel: el.LayerLabel,
			Entity:     entity,
			FiscalYear: fiscalYear,
		})
	}
	return records
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}

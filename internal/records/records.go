// Package records loads and persists the per-group structured record
// store: group metadata, entities, intercompany transactions,
// benchmark studies and the local-file deliverable records. The store
// is lenient on write and strict on read: referential integrity is
// enforced by the lookup helpers, not at persistence time.
package records

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"localfile/internal/faults"
)

type Group struct {
	Name         string `json:"name"`
	Jurisdiction string `json:"jurisdiction"`
}

type Entity struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Jurisdiction string `json:"jurisdiction"`
	Role         string `json:"role"`
}

type Transaction struct {
	ID                    string  `json:"id"`
	Name                  string  `json:"name"`
	Type                  string  `json:"type"`
	FromEntity            string  `json:"from_entity"`
	ToEntity              string  `json:"to_entity"`
	Currency              string  `json:"currency"`
	Amount                float64 `json:"amount"`
	Method                string  `json:"method,omitempty"`
	Benchmark             string  `json:"benchmark,omitempty"`
	ContractualTerms      Pairs   `json:"contractual_terms,omitempty"`
	Characteristics       Pairs   `json:"characteristics,omitempty"`
	EconomicCircumstances Pairs   `json:"economic_circumstances,omitempty"`
}

// BenchmarkTableIDs is the closed set of table identifiers a benchmark
// study may carry.
var BenchmarkTableIDs = []string{"allocation", "search_strategy", "search_results", "adjustments"}

type BenchmarkTable struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

type Benchmark struct {
	Slug   string                    `json:"slug"`
	Name   string                    `json:"name"`
	Tables map[string]BenchmarkTable `json:"tables"`
}

type SectionStatus struct {
	Reviewed  bool `json:"reviewed"`
	SignedOff bool `json:"signed_off"`
}

// LocalFile is one deliverable: an entity plus fiscal year.
type LocalFile struct {
	Entity              string                   `json:"entity"`
	FiscalYear          string                   `json:"fiscal_year"`
	Title               string                   `json:"title,omitempty"`
	Subtitle            string                   `json:"subtitle,omitempty"`
	Meta                map[string]string        `json:"meta,omitempty"`
	SectionStatus       map[string]SectionStatus `json:"section_status,omitempty"`
	Stage               string                   `json:"stage,omitempty"`
	CoveredTransactions []string                 `json:"covered_transactions,omitempty"`
}

type Store struct {
	Group        Group         `json:"group"`
	Entities     []Entity      `json:"entities"`
	Transactions []Transaction `json:"transactions"`
	Benchmarks   []Benchmark   `json:"benchmarks,omitempty"`
	LocalFiles   []LocalFile   `json:"local_files,omitempty"`

	path string
}

// Load reads the group store from {dir}/data.json.
func Load(dir string) (*Store, error) {
	path := filepath.Join(dir, "data.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, faults.NotFound(path, "read record store: %v", err)
	}
	var s Store
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, faults.Configuration(path, "record store is not valid JSON: %v", err)
	}
	s.path = path
	return &s, nil
}

// Stage marshals the store to a temp file next to data.json and
// returns the commit that renames it into place. Callers saving more
// than one file stage everything first, then commit, so a failure
// mid-save never persists half of a change.
func (s *Store) Stage() (func() error, error) {
	if s.path == "" {
		return nil, faults.Configuration("", "store was not loaded from disk")
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal record store: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return nil, fmt.Errorf("write record store: %w", err)
	}
	return func() error { return os.Rename(tmp, s.path) }, nil
}

// Save writes the store back to where it was loaded from, via a temp
// file and rename so a failed write never truncates the store.
func (s *Store) Save() error {
	commit, err := s.Stage()
	if err != nil {
		return err
	}
	return commit()
}

// FindEntity is a strict lookup: a dangling id is a referential
// integrity error, never an empty result.
func (s *Store) FindEntity(id string) (Entity, error) {
	for _, e := range s.Entities {
		if e.ID == id {
			return e, nil
		}
	}
	return Entity{}, faults.ReferentialIntegrity(id, "entity not found in group %q", s.Group.Name)
}

func (s *Store) FindTransaction(id string) (Transaction, error) {
	for _, tx := range s.Transactions {
		if tx.ID == id {
			return tx, nil
		}
	}
	return Transaction{}, faults.ReferentialIntegrity(id, "transaction not found in group %q", s.Group.Name)
}

// TransactionByName matches on display name, case and surrounding
// whitespace insensitive. Edit payloads reference transactions by
// name, not id.
func TransactionByName(txs []Transaction, name string) (int, bool) {
	want := strings.TrimSpace(strings.ToLower(name))
	for i, tx := range txs {
		if strings.TrimSpace(strings.ToLower(tx.Name)) == want {
			return i, true
		}
	}
	return -1, false
}

func (s *Store) FindBenchmark(slug string) (Benchmark, error) {
	for _, b := range s.Benchmarks {
		if b.Slug == slug {
			return b, nil
		}
	}
	return Benchmark{}, faults.ReferentialIntegrity(slug, "benchmark not found in group %q", s.Group.Name)
}

// EntityTransactions returns every transaction touching the entity as
// either side, in store order.
func (s *Store) EntityTransactions(entityID string) []Transaction {
	var out []Transaction
	for _, tx := range s.Transactions {
		if tx.FromEntity == entityID || tx.ToEntity == entityID {
			out = append(out, tx)
		}
	}
	return out
}

// FindLocalFile locates the deliverable record for an entity and
// fiscal year.
func (s *Store) FindLocalFile(entity, fiscalYear string) (*LocalFile, error) {
	for i := range s.LocalFiles {
		lf := &s.LocalFiles[i]
		if lf.Entity == entity && lf.FiscalYear == fiscalYear {
			return lf, nil
		}
	}
	return nil, faults.NotFound(entity, "no local file record for fiscal year %s", fiscalYear)
}

// financialTypes lists the transaction types documented with the
// transposed contractual-terms layout and without a characteristics
// table.
var financialTypes = map[string]bool{
	"loan-arrangement":              true,
	"cash-pooling":                  true,
	"financial-guarantees":          true,
	"factoring":                     true,
	"hybrid-instruments":            true,
	"asset-management":              true,
	"captive-insurance":             true,
	"cost-contribution-arrangement": true,
}

func IsFinancialType(txType string) bool {
	return financialTypes[txType]
}

var typeLabels = map[string]string{
	"goods":                         "Sale of Goods",
	"services":                      "Provision of Services",
	"it-services":                   "IT Services",
	"management-fees":               "Management Fees",
	"royalties":                     "Royalties / Licensing",
	"loan-arrangement":              "Loan Arrangement",
	"cash-pooling":                  "Cash Pooling",
	"financial-guarantees":          "Financial Guarantees",
	"factoring":                     "Factoring",
	"hybrid-instruments":            "Hybrid Instruments",
	"asset-management":              "Asset Management",
	"captive-insurance":             "Captive Insurance",
	"cost-contribution-arrangement": "Cost Contribution Arrangement",
}

// HumanizeType maps a transaction type slug to its display label,
// falling back to title-casing the slug.
func HumanizeType(txType string) string {
	if label, ok := typeLabels[txType]; ok {
		return label
	}
	words := strings.Split(txType, "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// FormatAmount renders a monetary amount with thousand separators:
// 1234567.5 -> "1,234,567.50".
func FormatAmount(amount float64) string {
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	dot := strings.IndexByte(s, '.')
	intPart, frac := s[:dot], s[dot:]
	neg := false
	if strings.HasPrefix(intPart, "-") {
		neg = true
		intPart = intPart[1:]
	}
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + frac
	if neg {
		return "-" + out
	}
	return out
}

// Package autotable derives the data-driven tables of a local file
// from the structured record store. Every generator is a pure function
// of the store; a dangling id is a hard referential-integrity error,
// never a silently blank cell or an omitted row.
package autotable

import (
	"strings"

	"localfile/internal/faults"
	"localfile/internal/records"
)

// Template-node markers for the six table kinds. Benchmark markers
// carry the table id after a colon.
const (
	KindTransactionsOverview   = "transactions-overview"
	KindTransactionsNotCovered = "transactions-not-covered"
	KindContractualTerms       = "contractual-terms"
	KindCharacteristics        = "characteristics"
	KindEconomicCircumstances  = "economic-circumstances"
	KindBenchmarkPrefix        = "benchmark:"
)

// Table is the renderer-agnostic result: a header row and body rows.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

var overviewColumns = []string{"Description", "From", "To", "Currency", "Amount"}

func overviewRow(s *records.Store, tx records.Transaction) ([]string, error) {
	from, err := s.FindEntity(tx.FromEntity)
	if err != nil {
		return nil, err
	}
	to, err := s.FindEntity(tx.ToEntity)
	if err != nil {
		return nil, err
	}
	return []string{tx.Name, from.Name, to.Name, tx.Currency, records.FormatAmount(tx.Amount)}, nil
}

// TransactionsOverview lists the covered transactions in covered-list
// order, entity ids resolved to display names.
func TransactionsOverview(s *records.Store, covered []string) (Table, error) {
	t := Table{Columns: overviewColumns, Rows: [][]string{}}
	for _, id := range covered {
		tx, err := s.FindTransaction(id)
		if err != nil {
			return Table{}, err
		}
		row, err := overviewRow(s, tx)
		if err != nil {
			return Table{}, err
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

var notCoveredColumns = []string{"Description", "From", "To", "Type", "Currency", "Amount"}

// TransactionsNotCovered is the set difference: every transaction
// touching the entity that the deliverable does not cover. Unlike the
// overview, the rows carry a humanized type column so a reviewer can
// judge at a glance why a transaction stays out of scope.
func TransactionsNotCovered(s *records.Store, entityID string, covered []string) (Table, error) {
	if _, err := s.FindEntity(entityID); err != nil {
		return Table{}, err
	}
	coveredSet := make(map[string]bool, len(covered))
	for _, id := range covered {
		coveredSet[id] = true
	}
	t := Table{Columns: notCoveredColumns, Rows: [][]string{}}
	for _, tx := range s.EntityTransactions(entityID) {
		if coveredSet[tx.ID] {
			continue
		}
		from, err := s.FindEntity(tx.FromEntity)
		if err != nil {
			return Table{}, err
		}
		to, err := s.FindEntity(tx.ToEntity)
		if err != nil {
			return Table{}, err
		}
		t.Rows = append(t.Rows, []string{
			tx.Name, from.Name, to.Name,
			records.HumanizeType(tx.Type), tx.Currency, records.FormatAmount(tx.Amount),
		})
	}
	return t, nil
}

// ContractualTerms renders a transaction's terms. Financial transaction
// types use a transposed layout (term names as columns, one value row);
// all other types get two-column key/value rows. The layout rule is
// keyed off the type, not configurable per record.
func ContractualTerms(s *records.Store, txID string) (Table, error) {
	tx, err := s.FindTransaction(txID)
	if err != nil {
		return Table{}, err
	}
	if records.IsFinancialType(tx.Type) {
		t := Table{Columns: []string{}, Rows: [][]string{}}
		row := []string{}
		for _, term := range tx.ContractualTerms {
			t.Columns = append(t.Columns, term.Key)
			row = append(row, term.Value)
		}
		if len(row) > 0 {
			t.Rows = append(t.Rows, row)
		}
		return t, nil
	}
	return keyValueTable(tx.ContractualTerms), nil
}

// Characteristics returns ok=false for financial transaction types,
// which are documented without a characteristics table at all.
func Characteristics(s *records.Store, txID string) (Table, bool, error) {
	tx, err := s.FindTransaction(txID)
	if err != nil {
		return Table{}, false, err
	}
	if records.IsFinancialType(tx.Type) {
		return Table{}, false, nil
	}
	return keyValueTable(tx.Characteristics), true, nil
}

func EconomicCircumstances(s *records.Store, txID string) (Table, error) {
	tx, err := s.FindTransaction(txID)
	if err != nil {
		return Table{}, err
	}
	return keyValueTable(tx.EconomicCircumstances), nil
}

// Benchmark looks up one study table by (slug, table id). The table id
// is restricted to the closed set in records.BenchmarkTableIDs.
func Benchmark(s *records.Store, slug, tableID string) (Table, error) {
	valid := false
	for _, id := range records.BenchmarkTableIDs {
		if id == tableID {
			valid = true
			break
		}
	}
	if !valid {
		return Table{}, faults.Configuration(tableID, "unknown benchmark table id (want one of %s)", strings.Join(records.BenchmarkTableIDs, ", "))
	}
	bm, err := s.FindBenchmark(slug)
	if err != nil {
		return Table{}, err
	}
	bt, ok := bm.Tables[tableID]
	if !ok {
		return Table{}, faults.ReferentialIntegrity(slug, "benchmark has no %s table", tableID)
	}
	return Table{Columns: bt.Columns, Rows: bt.Rows}, nil
}

func keyValueTable(pairs records.Pairs) Table {
	t := Table{Columns: []string{"Term", "Value"}, Rows: [][]string{}}
	for _, p := range pairs {
		t.Rows = append(t.Rows, []string{p.Key, p.Value})
	}
	return t
}

package autotable

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"localfile/internal/faults"
	"localfile/internal/records"
)

func testStore(t *testing.T) *records.Store {
	t.Helper()
	raw := `{
	  "group": {"name": "Aurora Group", "jurisdiction": "NL"},
	  "entities": [
	    {"id": "aurora-nl", "name": "Aurora Holding B.V.", "jurisdiction": "NL", "role": "parent"},
	    {"id": "aurora-de", "name": "Aurora GmbH", "jurisdiction": "DE", "role": "distributor"}
	  ],
	  "transactions": [
	    {"id": "tx-services", "name": "Management Services", "type": "services",
	     "from_entity": "aurora-nl", "to_entity": "aurora-de",
	     "currency": "EUR", "amount": 1250000,
	     "contractual_terms": {"Duration": "3 years", "Termination": "6 months notice"},
	     "characteristics": {"Nature": "Routine support services"}},
	    {"id": "tx-goods", "name": "Finished Goods", "type": "goods",
	     "from_entity": "aurora-de", "to_entity": "aurora-nl",
	     "currency": "EUR", "amount": 300000},
	    {"id": "tx-loan", "name": "Intercompany Loan", "type": "loan-arrangement",
	     "from_entity": "aurora-nl", "to_entity": "aurora-de",
	     "currency": "EUR", "amount": 5000000,
	     "contractual_terms": {"Principal": "5,000,000", "Rate": "4.25%", "Maturity": "2030"}}
	  ],
	  "benchmarks": [
	    {"slug": "services-emea", "name": "EMEA Services Study",
	     "tables": {
	       "allocation": {"columns": ["Region", "Share"], "rows": [["EMEA", "100%"]]},
	       "search_strategy": {"columns": ["Step", "Criterion"], "rows": [["1", "Independence"]]}
	     }}
	  ]
	}`
	var s records.Store
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatal(err)
	}
	return &s
}

func TestTransactionsOverview(t *testing.T) {
	s := testStore(t)
	tbl, err := TransactionsOverview(s, []string{"tx-services"})
	if err != nil {
		t.Fatal(err)
	}
	want := Table{
		Columns: []string{"Description", "From", "To", "Currency", "Amount"},
		Rows: [][]string{
			{"Management Services", "Aurora Holding B.V.", "Aurora GmbH", "EUR", "1,250,000.00"},
		},
	}
	if diff := cmp.Diff(want, tbl); diff != "" {
		t.Fatalf("table mismatch (-want +got):\n%s", diff)
	}
}

func TestTransactionsNotCovered(t *testing.T) {
	s := testStore(t)
	tbl, err := TransactionsNotCovered(s, "aurora-de", []string{"tx-services"})
	if err != nil {
		t.Fatal(err)
	}
	want := Table{
		Columns: []string{"Description", "From", "To", "Type", "Currency", "Amount"},
		Rows: [][]string{
			{"Finished Goods", "Aurora GmbH", "Aurora Holding B.V.", "Sale of Goods", "EUR", "300,000.00"},
			{"Intercompany Loan", "Aurora Holding B.V.", "Aurora GmbH", "Loan Arrangement", "EUR", "5,000,000.00"},
		},
	}
	if diff := cmp.Diff(want, tbl); diff != "" {
		t.Fatalf("table mismatch (-want +got):\n%s", diff)
	}
}

func TestNotCoveredHumanizesUnknownType(t *testing.T) {
	s := testStore(t)
	s.Transactions[1].Type = "contract-manufacturing"
	tbl, err := TransactionsNotCovered(s, "aurora-de", []string{"tx-services", "tx-loan"})
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl.Rows) != 1 || tbl.Rows[0][3] != "Contract Manufacturing" {
		t.Fatalf("rows = %v", tbl.Rows)
	}
}

func TestOverviewDanglingEntityFailsLoudly(t *testing.T) {
	s := testStore(t)
	s.Transactions[0].ToEntity = "aurora-xx"
	_, err := TransactionsOverview(s, []string{"tx-services"})
	if !faults.IsKind(err, faults.KindReferentialIntegrity) {
		t.Fatalf("want referential integrity error, got %v", err)
	}
}

func TestContractualTermsLayouts(t *testing.T) {
	s := testStore(t)

	// Non-financial: key/value rows.
	tbl, err := ContractualTerms(s, "tx-services")
	if err != nil {
		t.Fatal(err)
	}
	want := Table{
		Columns: []string{"Term", "Value"},
		Rows:    [][]string{{"Duration", "3 years"}, {"Termination", "6 months notice"}},
	}
	if diff := cmp.Diff(want, tbl); diff != "" {
		t.Fatalf("key/value layout (-want +got):\n%s", diff)
	}

	// Financial: transposed, one value row under the term names.
	tbl, err = ContractualTerms(s, "tx-loan")
	if err != nil {
		t.Fatal(err)
	}
	want = Table{
		Columns: []string{"Principal", "Rate", "Maturity"},
		Rows:    [][]string{{"5,000,000", "4.25%", "2030"}},
	}
	if diff := cmp.Diff(want, tbl); diff != "" {
		t.Fatalf("transposed layout (-want +got):\n%s", diff)
	}
}

func TestCharacteristicsOmittedForFinancial(t *testing.T) {
	s := testStore(t)
	if _, ok, err := Characteristics(s, "tx-loan"); err != nil || ok {
		t.Fatalf("financial type should omit the table: ok=%v err=%v", ok, err)
	}
	tbl, ok, err := Characteristics(s, "tx-services")
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if len(tbl.Rows) != 1 || tbl.Rows[0][0] != "Nature" {
		t.Fatalf("rows = %v", tbl.Rows)
	}
}

func TestBenchmarkLookup(t *testing.T) {
	s := testStore(t)
	tbl, err := Benchmark(s, "services-emea", "search_strategy")
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Rows[0][1] != "Independence" {
		t.Fatalf("rows = %v", tbl.Rows)
	}

	if _, err := Benchmark(s, "services-emea", "pli-summary"); !faults.IsKind(err, faults.KindConfiguration) {
		t.Fatalf("invalid table id: got %v", err)
	}
	if _, err := Benchmark(s, "missing-study", "allocation"); !faults.IsKind(err, faults.KindReferentialIntegrity) {
		t.Fatalf("missing study: got %v", err)
	}
	if _, err := Benchmark(s, "services-emea", "adjustments"); !faults.IsKind(err, faults.KindReferentialIntegrity) {
		t.Fatalf("absent table: got %v", err)
	}
}

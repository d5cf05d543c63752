package records

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"localfile/internal/faults"
)

const sampleStore = `{
  "group": {"name": "Aurora Group", "jurisdiction": "NL"},
  "entities": [
    {"id": "aurora-nl", "name": "Aurora Holding B.V.", "jurisdiction": "NL", "role": "parent"},
    {"id": "aurora-de", "name": "Aurora GmbH", "jurisdiction": "DE", "role": "distributor"}
  ],
  "transactions": [
    {
      "id": "tx-services", "name": "Management Services", "type": "services",
      "from_entity": "aurora-nl", "to_entity": "aurora-de",
      "currency": "EUR", "amount": 1250000,
      "contractual_terms": {"Duration": "3 years", "Termination": "6 months notice"}
    },
    {
      "id": "tx-loan", "name": "Intercompany Loan", "type": "loan-arrangement",
      "from_entity": "aurora-nl", "to_entity": "aurora-de",
      "currency": "EUR", "amount": 5000000
    }
  ],
  "benchmarks": [
    {"slug": "services-emea", "name": "EMEA Services Study",
     "tables": {"allocation": {"columns": ["Region", "Share"], "rows": [["EMEA", "100%"]]}}}
  ],
  "local_files": [
    {"entity": "aurora-de", "fiscal_year": "2025", "stage": "draft",
     "covered_transactions": ["tx-services"],
     "section_status": {"preamble/objective": {"reviewed": true, "signed_off": false}}}
  ]
}`

func loadSample(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "data.json"), []byte(sampleStore), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestStageDefersWrite(t *testing.T) {
	s := loadSample(t)
	before, err := os.ReadFile(s.path)
	if err != nil {
		t.Fatal(err)
	}

	s.Group.Name = "Aurora Group Holding"
	commit, err := s.Stage()
	if err != nil {
		t.Fatal(err)
	}

	// Nothing is visible in data.json until the commit runs.
	after, err := os.ReadFile(s.path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Fatal("staging modified data.json")
	}

	if err := commit(); err != nil {
		t.Fatal(err)
	}
	reloaded, err := Load(filepath.Dir(s.path))
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Group.Name != "Aurora Group Holding" {
		t.Fatalf("group name after commit = %q", reloaded.Group.Name)
	}
}

func TestStrictLookups(t *testing.T) {
	s := loadSample(t)

	e, err := s.FindEntity("aurora-de")
	if err != nil {
		t.Fatal(err)
	}
	if e.Name != "Aurora GmbH" {
		t.Fatalf("entity name = %q", e.Name)
	}

	if _, err := s.FindEntity("aurora-fr"); !faults.IsKind(err, faults.KindReferentialIntegrity) {
		t.Fatalf("dangling entity id: want referential integrity error, got %v", err)
	}
	if _, err := s.FindBenchmark("missing-study"); !faults.IsKind(err, faults.KindReferentialIntegrity) {
		t.Fatalf("dangling benchmark: got %v", err)
	}
}

func TestEntityTransactions(t *testing.T) {
	s := loadSample(t)
	txs := s.EntityTransactions("aurora-de")
	if len(txs) != 2 {
		t.Fatalf("got %d transactions", len(txs))
	}
	if txs[0].ID != "tx-services" || txs[1].ID != "tx-loan" {
		t.Fatalf("store order not preserved: %v, %v", txs[0].ID, txs[1].ID)
	}
}

func TestTransactionByName(t *testing.T) {
	s := loadSample(t)
	i, ok := TransactionByName(s.Transactions, "  management services ")
	if !ok || s.Transactions[i].ID != "tx-services" {
		t.Fatalf("name match failed: ok=%v i=%d", ok, i)
	}
	if _, ok := TransactionByName(s.Transactions, "Unknown Deal"); ok {
		t.Fatal("unexpected match")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	s := loadSample(t)
	lf, err := s.FindLocalFile("aurora-de", "2025")
	if err != nil {
		t.Fatal(err)
	}
	lf.Stage = "review"
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}

	reloaded, err := Load(filepath.Dir(s.path))
	if err != nil {
		t.Fatal(err)
	}
	lf2, err := reloaded.FindLocalFile("aurora-de", "2025")
	if err != nil {
		t.Fatal(err)
	}
	if lf2.Stage != "review" {
		t.Fatalf("stage = %q after reload", lf2.Stage)
	}
	if !lf2.SectionStatus["preamble/objective"].Reviewed {
		t.Fatal("section status lost on round trip")
	}
}

func TestPairsPreserveOrder(t *testing.T) {
	s := loadSample(t)
	tx, err := s.FindTransaction("tx-services")
	if err != nil {
		t.Fatal(err)
	}
	if len(tx.ContractualTerms) != 2 {
		t.Fatalf("terms = %v", tx.ContractualTerms)
	}
	if tx.ContractualTerms[0].Key != "Duration" || tx.ContractualTerms[1].Key != "Termination" {
		t.Fatalf("author key order lost: %v", tx.ContractualTerms)
	}

	out, err := json.Marshal(tx.ContractualTerms)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"Duration":"3 years","Termination":"6 months notice"}`
	if string(out) != want {
		t.Fatalf("marshal = %s", out)
	}
}

func TestPairsScalarCoercion(t *testing.T) {
	var p Pairs
	if err := json.Unmarshal([]byte(`{"Rate": 4.25, "Secured": true, "Collateral": null}`), &p); err != nil {
		t.Fatal(err)
	}
	want := Pairs{{"Rate", "4.25"}, {"Secured", "Yes"}, {"Collateral", ""}}
	for i, pair := range want {
		if p[i] != pair {
			t.Fatalf("pair %d = %+v, want %+v", i, p[i], pair)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{1250000, "1,250,000.00"},
		{999, "999.00"},
		{1234567.5, "1,234,567.50"},
		{-45000, "-45,000.00"},
		{0, "0.00"},
	}
	for _, tc := range cases {
		if got := FormatAmount(tc.in); got != tc.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestHumanizeType(t *testing.T) {
	if got := HumanizeType("cash-pooling"); got != "Cash Pooling" {
		t.Fatalf("got %q", got)
	}
	if got := HumanizeType("contract-manufacturing"); got != "Contract Manufacturing" {
		t.Fatalf("fallback got %q", got)
	}
	if !IsFinancialType("factoring") || IsFinancialType("services") {
		t.Fatal("financial type classification wrong")
	}
}

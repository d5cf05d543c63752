package editdiff

import (
	"encoding/json"
	"testing"

	"localfile/internal/blueprint"
	"localfile/internal/faults"
	"localfile/internal/records"
)

const groupJSON = `{
  "group": {"name": "Aurora Group", "jurisdiction": "NL"},
  "entities": [
    {"id": "aurora-nl", "name": "Aurora Holding B.V.", "jurisdiction": "NL", "role": "parent"},
    {"id": "aurora-de", "name": "Aurora GmbH", "jurisdiction": "DE", "role": "distributor"}
  ],
  "transactions": [
    {"id": "tx-services", "name": "Management Services", "type": "services",
     "from_entity": "aurora-nl", "to_entity": "aurora-de",
     "currency": "EUR", "amount": 1250000}
  ],
  "local_files": [
    {"entity": "aurora-de", "fiscal_year": "2025", "stage": "draft",
     "covered_transactions": ["tx-services"]}
  ]
}`

func newApplicator(t *testing.T, confirm ConfirmFunc) (*Applicator, *records.Store, *blueprint.Blueprint) {
	t.Helper()
	var s records.Store
	if err := json.Unmarshal([]byte(groupJSON), &s); err != nil {
		t.Fatal(err)
	}
	bp, err := blueprint.Generate(&s, "aurora-de", "2025", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	exp, err := blueprint.ExpansionFor(&s, bp)
	if err != nil {
		t.Fatal(err)
	}
	tree, err := blueprint.Build(blueprint.DefaultTemplate(), exp)
	if err != nil {
		t.Fatal(err)
	}
	return &Applicator{
		Store:        &s,
		Blueprint:    bp,
		SectionPaths: tree.Paths(),
		Confirm:      confirm,
	}, &s, bp
}

func TestApplyContentEditBecomesEntityOverride(t *testing.T) {
	a, _, bp := newApplicator(t, nil)
	payload := `{
	  "source": "workspace-editor",
	  "summary": ["Rewrote the objective"],
	  "sections": {"preamble_objective": "Our own objective text."}
	}`
	res, err := a.Apply([]byte(payload))
	if err != nil {
		t.Fatal(err)
	}
	if res.SectionsChanged != 1 {
		t.Fatalf("result = %+v", res)
	}
	got := bp.Content["preamble/objective"]
	if len(got) != 1 || got[0] != "Our own objective text." {
		t.Fatalf("content = %v", got)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	a, _, bp := newApplicator(t, nil)
	payload := []byte(`{
	  "source": "workspace-editor",
	  "sections": {"preamble_objective": "Stable text."},
	  "section_status": {"preamble_objective": {"reviewed": true}}
	}`)
	if _, err := a.Apply(payload); err != nil {
		t.Fatal(err)
	}
	first := bp.Content["preamble/objective"][0]

	if _, err := a.Apply(payload); err != nil {
		t.Fatal(err)
	}
	if bp.Content["preamble/objective"][0] != first {
		t.Fatal("second application changed state")
	}
}

func TestApplyEmptyPayloadIsNoOp(t *testing.T) {
	a, s, bp := newApplicator(t, nil)
	before := len(bp.Content)
	res, err := a.Apply([]byte(`{"source": "workspace-editor"}`))
	if err != nil {
		t.Fatal(err)
	}
	if res.SectionsChanged != 0 || len(bp.Content) != before || len(s.Transactions) != 1 {
		t.Fatal("empty payload mutated state")
	}
}

func TestApplyRejectsWithoutMutating(t *testing.T) {
	a, _, bp := newApplicator(t, nil)
	before := len(bp.Content)

	cases := []struct {
		name    string
		payload string
	}{
		{"wrong source", `{"source": "other-tool", "sections": {"preamble_objective": "x"}}`},
		{"unknown section", `{"source": "workspace-editor", "sections": {"no_such_section": "x"}}`},
		{"malformed json", `{"source": "workspace-editor",`},
		{"unknown field", `{"source": "workspace-editor", "bogus": true}`},
		{"bad stage", `{"source": "workspace-editor", "stage": "archived"}`},
		{"half edit then bad", `{"source": "workspace-editor", "sections": {"preamble_objective": "x", "no_such": "y"}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := a.Apply([]byte(tc.payload))
			if !faults.IsKind(err, faults.KindDiffApplication) {
				t.Fatalf("want diff application error, got %v", err)
			}
			if len(bp.Content) != before {
				t.Fatal("rejected payload mutated the blueprint")
			}
			if _, ok := bp.Content["preamble/objective"]; ok && bp.Content["preamble/objective"][0] == "x" {
				t.Fatal("partial write leaked")
			}
		})
	}
}

func TestApplyNotesAreAdditiveAndIdempotent(t *testing.T) {
	a, _, bp := newApplicator(t, nil)
	bp.AppendNote("preamble/objective", "Check against prior year wording.")
	bp.AppendFootnote("group/overview", "Source: consolidated accounts.")

	payload := []byte(`{
	  "source": "workspace-editor",
	  "section_notes": {"preamble_objective": ["Legal to sign off on scope."]},
	  "footnotes": {"group_overview": ["Source: consolidated accounts.", "FY2025 figures unaudited."]}
	}`)
	if _, err := a.Apply(payload); err != nil {
		t.Fatal(err)
	}

	wantNotes := []string{"Check against prior year wording.", "Legal to sign off on scope."}
	gotNotes := bp.SectionNotes["preamble/objective"]
	if len(gotNotes) != len(wantNotes) || gotNotes[0] != wantNotes[0] || gotNotes[1] != wantNotes[1] {
		t.Fatalf("notes = %v, want %v", gotNotes, wantNotes)
	}
	wantFoot := []string{"Source: consolidated accounts.", "FY2025 figures unaudited."}
	gotFoot := bp.Footnotes["group/overview"]
	if len(gotFoot) != len(wantFoot) || gotFoot[0] != wantFoot[0] || gotFoot[1] != wantFoot[1] {
		t.Fatalf("footnotes = %v, want %v", gotFoot, wantFoot)
	}

	// Second application must neither duplicate nor drop entries.
	if _, err := a.Apply(payload); err != nil {
		t.Fatal(err)
	}
	if got := bp.SectionNotes["preamble/objective"]; len(got) != 2 {
		t.Fatalf("notes after re-apply = %v", got)
	}
	if got := bp.Footnotes["group/overview"]; len(got) != 2 {
		t.Fatalf("footnotes after re-apply = %v", got)
	}
}

func TestApplyStatusMergesPartially(t *testing.T) {
	a, s, _ := newApplicator(t, nil)
	lf, err := s.FindLocalFile("aurora-de", "2025")
	if err != nil {
		t.Fatal(err)
	}
	lf.SectionStatus = map[string]records.SectionStatus{
		"preamble/objective": {Reviewed: true, SignedOff: true},
	}

	payload := `{
	  "source": "workspace-editor",
	  "section_status": {"preamble_scope": {"reviewed": true}}
	}`
	if _, err := a.Apply([]byte(payload)); err != nil {
		t.Fatal(err)
	}
	if !lf.SectionStatus["preamble/scope"].Reviewed || lf.SectionStatus["preamble/scope"].SignedOff {
		t.Fatalf("scope status = %+v", lf.SectionStatus["preamble/scope"])
	}
	// Untouched sections stay untouched.
	if !lf.SectionStatus["preamble/objective"].SignedOff {
		t.Fatal("unrelated status was clobbered")
	}
}

func TestApplyStageAndMeta(t *testing.T) {
	a, s, _ := newApplicator(t, nil)
	payload := `{
	  "source": "workspace-editor",
	  "stage": "review",
	  "document_meta": {"title": "Aurora GmbH Local File", "prepared_by": "TP Team"}
	}`
	if _, err := a.Apply([]byte(payload)); err != nil {
		t.Fatal(err)
	}
	lf, err := s.FindLocalFile("aurora-de", "2025")
	if err != nil {
		t.Fatal(err)
	}
	if lf.Stage != "review" || lf.Title != "Aurora GmbH Local File" || lf.Meta["prepared_by"] != "TP Team" {
		t.Fatalf("local file = %+v", lf)
	}
}

func TestApplyTransactionInsertNeedsConfirmation(t *testing.T) {
	payload := []byte(`{
	  "source": "workspace-editor",
	  "transactions": [{
	    "name": "License Fees", "type": "royalties",
	    "counterparty": "aurora-nl", "direction": "outbound",
	    "currency": "EUR", "amount": 90000
	  }]
	}`)

	// Nil confirm declines: nothing is inserted.
	a, s, _ := newApplicator(t, nil)
	if _, err := a.Apply(payload); !faults.IsKind(err, faults.KindDiffApplication) {
		t.Fatalf("want rejection, got %v", err)
	}
	if len(s.Transactions) != 1 {
		t.Fatal("declined insertion still happened")
	}

	// Confirmed: inserted with derived direction and covered.
	a, s, bp := newApplicator(t, func(string) (bool, error) { return true, nil })
	if _, err := a.Apply(payload); err != nil {
		t.Fatal(err)
	}
	if len(s.Transactions) != 2 {
		t.Fatalf("transactions = %d", len(s.Transactions))
	}
	tx := s.Transactions[1]
	if tx.ID != "tx-license-fees" || tx.FromEntity != "aurora-de" || tx.ToEntity != "aurora-nl" {
		t.Fatalf("tx = %+v", tx)
	}
	if tx.Amount != 90000 {
		t.Fatalf("amount = %v", tx.Amount)
	}
	found := false
	for _, id := range bp.CoveredTransactions {
		if id == "tx-license-fees" {
			found = true
		}
	}
	if !found {
		t.Fatal("new transaction not covered")
	}
}

func TestApplyTransactionRemoval(t *testing.T) {
	a, s, bp := newApplicator(t, func(string) (bool, error) { return true, nil })
	if err := bp.SetContent("transactions/tx-services/overview", []string{"text"}); err != nil {
		t.Fatal(err)
	}
	payload := []byte(`{
	  "source": "workspace-editor",
	  "transactions": [{"name": "Management Services", "remove": true}]
	}`)
	if _, err := a.Apply(payload); err != nil {
		t.Fatal(err)
	}
	if len(s.Transactions) != 0 {
		t.Fatal("transaction not removed")
	}
	if len(bp.CoveredTransactions) != 0 {
		t.Fatal("covered list not updated")
	}
	if _, ok := bp.Content["transactions/tx-services/overview"]; ok {
		t.Fatal("stale content entry survived removal")
	}

	// Removing it again references state that no longer exists.
	if _, err := a.Apply(payload); !faults.IsKind(err, faults.KindDiffApplication) {
		t.Fatal("second removal should be rejected")
	}
}

func TestApplyTransactionUpdateByName(t *testing.T) {
	a, s, _ := newApplicator(t, nil)
	payload := []byte(`{
	  "source": "workspace-editor",
	  "transactions": [{"name": "management services", "amount": 1400000}]
	}`)
	if _, err := a.Apply(payload); err != nil {
		t.Fatal(err)
	}
	if s.Transactions[0].Amount != 1400000 {
		t.Fatalf("amount = %v", s.Transactions[0].Amount)
	}
}

func TestSlugifyName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"License Fees", "tx-license-fees"},
		{"  R&D  Services ", "tx-r-d-services"},
		{"IT Support 2025", "tx-it-support-2025"},
	}
	for _, tc := range cases {
		if got := slugifyName(tc.in); got != tc.want {
			t.Errorf("slugifyName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

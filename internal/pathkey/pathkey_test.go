package pathkey

import "testing"

func TestToElementKey(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"preamble/objective", "preamble_objective"},
		{"entity/functional-profiles/overview", "entity_functional_profiles_overview"},
		{"transactions/cash-pooling/contractual-terms", "transactions_cash_pooling_contractual_terms"},
		{"closing", "closing"},
	}
	for _, tc := range cases {
		if got := ToElementKey(tc.path); got != tc.want {
			t.Errorf("ToElementKey(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestValidateID(t *testing.T) {
	valid := []string{"preamble", "cash-pooling", "it-services-2024"}
	for _, id := range valid {
		if err := ValidateID(id); err != nil {
			t.Errorf("ValidateID(%q) = %v, want nil", id, err)
		}
	}
	invalid := []string{"", "cash_pooling", "Preamble", "a b", "-lead", "trail-"}
	for _, id := range invalid {
		if err := ValidateID(id); err == nil {
			t.Errorf("ValidateID(%q) = nil, want error", id)
		}
	}
}

func TestIndexRoundTrip(t *testing.T) {
	idx, err := NewIndex([]string{"preamble/objective", "entity/overview"})
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	p, err := idx.Path("preamble_objective")
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if p != "preamble/objective" {
		t.Fatalf("Path = %q", p)
	}
	if _, err := idx.Path("nope"); err == nil {
		t.Fatal("unknown key should error")
	}
}

func TestIndexDetectsCollision(t *testing.T) {
	if _, err := NewIndex([]string{"a-b/c", "a/b-c"}); err == nil {
		t.Fatal("colliding paths should be rejected")
	}
}

func TestMakeTitle(t *testing.T) {
	if got := MakeTitle("limited-risk-distributor"); got != "Limited Risk Distributor" {
		t.Fatalf("MakeTitle = %q", got)
	}
}

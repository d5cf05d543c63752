package faults

import (
	"errors"
	"fmt"
	"testing"
)

func TestFaultError(t *testing.T) {
	cases := []struct {
		name string
		err  *Fault
		want string
	}{
		{"with ref", ReferentialIntegrity("tx-009", "no such transaction"), "referential_integrity: tx-009: no such transaction"},
		{"without ref", Configuration("", "no layer roots configured"), "configuration: no layer roots configured"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Error(); got != tc.want {
				t.Fatalf("Error() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIsKindThroughWrapping(t *testing.T) {
	base := NotFound("preamble/objective", "no layer provides this path")
	wrapped := fmt.Errorf("resolve section: %w", base)

	if !IsKind(wrapped, KindContentNotFound) {
		t.Fatal("IsKind should see through fmt.Errorf wrapping")
	}
	if IsKind(wrapped, KindDiffApplication) {
		t.Fatal("IsKind matched the wrong kind")
	}

	var f *Fault
	if !errors.As(wrapped, &f) {
		t.Fatal("errors.As failed to extract *Fault")
	}
	if f.Ref != "preamble/objective" {
		t.Fatalf("Ref = %q", f.Ref)
	}
}

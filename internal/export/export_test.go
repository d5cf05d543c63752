package export

import (
	"strings"
	"testing"

	"localfile/internal/assemble"
	"localfile/internal/autotable"
)

func sampleViewModel() *assemble.ViewModel {
	return &assemble.ViewModel{
		SchemaVersion: "0.5.0",
		GeneratedAt:   "2026-02-01T10:00:00Z",
		Document: assemble.Document{
			Title:      "Transfer Pricing Local File - Acme NL",
			Subtitle:   "Fiscal Year 2024",
			Entity:     "Acme NL",
			Group:      "Acme Group",
			FiscalYear: "2024",
			StageLabel: "Draft",
		},
		Chapters: []assemble.Chapter{
			{
				ID: "entity", Title: "Local Entity", Number: "3",
				Keys: []string{"entity_overview", "entity_functional_profiles_manufacturing_functions"},
				Sections: []assemble.ChapterSection{
					{ID: "overview", Title: "Overview", Number: "3.1", Keys: []string{"entity_overview"}},
					{
						ID: "functional-profiles", Title: "Functional Profiles", Number: "3.2",
						Keys: []string{"entity_functional_profiles_manufacturing_functions"},
					},
				},
			},
			{
				ID: "transactions", Title: "Intercompany Transactions", Number: "4",
				Keys: []string{"transactions_overview"},
				Sections: []assemble.ChapterSection{
					{ID: "overview", Title: "Overview of Transactions", Number: "4.1", Keys: []string{"transactions_overview"}},
				},
			},
		},
		Elements: map[string]assemble.Element{
			"entity_overview": {
				Title: "Overview", Number: "3.1", Path: "entity/overview",
				Text:  "Acme NL distributes pumps.\n\nIt employs 40 <staff>.",
				Layer: 4, LayerLabel: "Entity", LayerColor: "#3b82f6", Editable: true,
			},
			"entity_functional_profiles_manufacturing_functions": {
				Title: "Functions", Number: "3.2.1.1",
				Path:  "entity/functional-profiles/manufacturing/functions",
				Text:  "Toll manufacturing under contract.",
				Layer: 2, LayerLabel: "Firm", LayerColor: "#94a3b8",
			},
			"transactions_overview": {
				Title: "Overview of Transactions", Number: "4.1", Path: "transactions/overview",
				IsAuto: true,
				AutoTable: &autotable.Table{
					Columns: []string{"Description", "From", "To", "Currency", "Amount"},
					Rows:    [][]string{{"Services", "Acme BV", "Acme NL", "EUR", "1,250,000"}},
				},
			},
		},
		GeneralNotes: []string{"Figures per statutory accounts."},
	}
}

func TestRenderDocumentHTML(t *testing.T) {
	html, err := RenderDocumentHTML(sampleViewModel())
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{
		"Transfer Pricing Local File - Acme NL",
		"Fiscal Year 2024",
		`<h2><span class="num">3.1</span> Overview</h2>`,
		"Acme NL distributes pumps.",
		"It employs 40 &lt;staff&gt;.",
		`style="background:#3b82f6"`,
		"<th>Description</th>",
		"<td>1,250,000</td>",
		"Figures per statutory accounts.",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered html missing %q", want)
		}
	}
	if strings.Contains(html, "<staff>") {
		t.Error("element text was not escaped")
	}
}

func TestRenderReconstructsIntermediateHeadings(t *testing.T) {
	html, err := RenderDocumentHTML(sampleViewModel())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	// The manufacturing profile node is not a chapter section of its
	// own; its heading comes back from the element path.
	if !strings.Contains(html, `<h3><span class="num">3.2.1</span> Manufacturing</h3>`) {
		t.Errorf("missing reconstructed profile heading in:\n%s", html)
	}
	if !strings.Contains(html, `<h4><span class="num">3.2.1.1</span> Functions</h4>`) {
		t.Errorf("missing deep leaf heading")
	}
}

func TestRenderPlaceholders(t *testing.T) {
	vm := sampleViewModel()
	el := vm.Elements["entity_overview"]
	el.Text = ""
	el.Layer = 0
	el.LayerLabel = ""
	vm.Elements["entity_overview"] = el

	html, err := RenderDocumentHTML(vm)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, `<p class="placeholder">No content yet.</p>`) {
		t.Error("placeholder element not rendered")
	}
}

func TestRenderCompositeParts(t *testing.T) {
	vm := sampleViewModel()
	el := vm.Elements["entity_overview"]
	el.Composite = true
	el.Parts = []assemble.Part{
		{Text: "Group boilerplate.", Layer: 3, LayerLabel: "Group", LayerColor: "#a855f7"},
		{Text: "Entity specifics.", Layer: 4, LayerLabel: "Entity", LayerColor: "#3b82f6", Editable: true},
	}
	vm.Elements["entity_overview"] = el

	html, err := RenderDocumentHTML(vm)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Count(html, `<div class="part">`) != 2 {
		t.Error("expected two composite parts")
	}
	if !strings.Contains(html, ">Group</span>") || !strings.Contains(html, "Group boilerplate.") {
		t.Error("group part missing")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"Transfer Pricing Local File - Acme NL": "Transfer-Pricing-Local-File---Acme-NL",
		"weird/chars: 100%":                     "weirdchars-100",
		"":                                      "document",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPercentEncodeForDataURL(t *testing.T) {
	got := percentEncodeForDataURL("a b+c<d>")
	if got != "a%20b%2Bc%3Cd%3E" {
		t.Errorf("unexpected encoding %q", got)
	}
}

package export

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"localfile/internal/assemble"
	"localfile/internal/autotable"
	"localfile/internal/pathkey"
)

// SafeHTML is a template function that marks a string as safe HTML.
func SafeHTML(s interface{}) template.HTML {
	switch v := s.(type) {
	case string:
		return template.HTML(v)
	case template.HTML:
		return v
	default:
		return template.HTML("")
	}
}

//go:embed templates/*.html
var templateFS embed.FS

var documentTemplate *template.Template

func init() {
	funcMap := template.FuncMap{
		"lower":    strings.ToLower,
		"safeHTML": SafeHTML,
	}

	templateContent, err := templateFS.ReadFile("templates/document.html")
	if err != nil {
		// Fallback to built-in template if file not found
		documentTemplate = template.Must(template.New("document").Funcs(funcMap).Parse(fallbackTemplate))
		return
	}

	documentTemplate = template.Must(template.New("document").Funcs(funcMap).Parse(string(templateContent)))
}

// TemplateData holds data for document template rendering.
type TemplateData struct {
	Title           string
	Subtitle        string
	Entity          string
	Group           string
	FiscalYear      string
	StageLabel      string
	GeneratedAt     string
	JurisdictionSVG template.HTML
	GeneralNotes    []string
	Chapters        []TemplateChapter
}

// TemplateChapter is one top-level chapter with its pre-rendered body.
type TemplateChapter struct {
	Number   string
	Title    string
	BodyHTML template.HTML
}

// BuildTemplateData flattens a view model into template data, with
// each chapter body rendered to HTML.
func BuildTemplateData(vm *assemble.ViewModel) (TemplateData, error) {
	data := TemplateData{
		Title:           vm.Document.Title,
		Subtitle:        vm.Document.Subtitle,
		Entity:          vm.Document.Entity,
		Group:           vm.Document.Group,
		FiscalYear:      vm.Document.FiscalYear,
		StageLabel:      vm.Document.StageLabel,
		GeneratedAt:     vm.GeneratedAt,
		JurisdictionSVG: template.HTML(vm.JurisdictionSVG),
		GeneralNotes:    vm.GeneralNotes,
	}
	for _, ch := range vm.Chapters {
		body, err := renderChapterBody(vm, ch)
		if err != nil {
			return TemplateData{}, err
		}
		data.Chapters = append(data.Chapters, TemplateChapter{
			Number:   ch.Number,
			Title:    ch.Title,
			BodyHTML: template.HTML(body),
		})
	}
	return data, nil
}

func renderChapterBody(vm *assemble.ViewModel, ch assemble.Chapter) (string, error) {
	var b strings.Builder
	if len(ch.Sections) == 0 {
		for _, key := range ch.Keys {
			if err := renderElementBody(&b, vm, key); err != nil {
				return "", err
			}
		}
		return b.String(), nil
	}
	for _, sec := range ch.Sections {
		if err := renderSection(&b, vm, sec); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

// renderSection writes one depth-1 section. Its rolled-up keys may
// reach deeper leaves; intermediate headings lost in the roll-up are
// reconstructed from the element paths.
func renderSection(b *strings.Builder, vm *assemble.ViewModel, sec assemble.ChapterSection) error {
	el, first := vm.Elements[sec.Keys[0]]
	if len(sec.Keys) == 1 && first && el.Number == sec.Number {
		// The section is itself a leaf.
		writeHeading(b, el.Number, el.Title)
		return renderElementContent(b, el)
	}

	writeHeading(b, sec.Number, sec.Title)
	secDepth := numberDepth(sec.Number)
	lastGroup := ""
	for _, key := range sec.Keys {
		el, ok := vm.Elements[key]
		if !ok {
			return fmt.Errorf("chapter tree references unknown element %q", key)
		}
		if numberDepth(el.Number) > secDepth+1 {
			segs := strings.Split(el.Path, "/")
			if len(segs) > secDepth {
				group := segs[secDepth]
				if group != lastGroup {
					lastGroup = group
					writeHeading(b, parentNumber(el.Number), pathkey.MakeTitle(group))
				}
			}
		}
		writeHeading(b, el.Number, el.Title)
		if err := renderElementContent(b, el); err != nil {
			return err
		}
	}
	return nil
}

func renderElementBody(b *strings.Builder, vm *assemble.ViewModel, key string) error {
	el, ok := vm.Elements[key]
	if !ok {
		return fmt.Errorf("chapter tree references unknown element %q", key)
	}
	writeHeading(b, el.Number, el.Title)
	return renderElementContent(b, el)
}

func renderElementContent(b *strings.Builder, el assemble.Element) error {
	switch {
	case el.IsAuto:
		if el.AutoTable == nil {
			b.WriteString(`<p class="placeholder">Not applicable.</p>`)
		} else {
			writeTable(b, el.AutoTable)
		}
	case el.Composite:
		for _, part := range el.Parts {
			b.WriteString(`<div class="part">`)
			writeBadge(b, part.LayerLabel, part.LayerColor)
			writeParagraphs(b, part.Text)
			b.WriteString(`</div>`)
		}
	case el.Layer > 0:
		writeBadge(b, el.LayerLabel, el.LayerColor)
		writeParagraphs(b, el.Text)
	default:
		b.WriteString(`<p class="placeholder">No content yet.</p>`)
	}

	for _, note := range el.Notes {
		b.WriteString(`<aside class="note">`)
		b.WriteString(template.HTMLEscapeString(note))
		b.WriteString(`</aside>`)
	}
	if len(el.Footnotes) > 0 {
		b.WriteString(`<ol class="footnotes">`)
		for _, fn := range el.Footnotes {
			b.WriteString("<li>")
			b.WriteString(template.HTMLEscapeString(fn))
			b.WriteString("</li>")
		}
		b.WriteString("</ol>")
	}
	return nil
}

func writeHeading(b *strings.Builder, number, title string) {
	level := numberDepth(number)
	if level < 2 {
		level = 2
	}
	if level > 5 {
		level = 5
	}
	fmt.Fprintf(b, `<h%d><span class="num">%s</span> %s</h%d>`,
		level, template.HTMLEscapeString(number), template.HTMLEscapeString(title), level)
}

func writeBadge(b *strings.Builder, label, color string) {
	if label == "" {
		return
	}
	fmt.Fprintf(b, `<span class="layer-badge" style="background:%s">%s</span>`,
		template.HTMLEscapeString(color), template.HTMLEscapeString(label))
}

func writeParagraphs(b *strings.Builder, text string) {
	for _, para := range strings.Split(strings.TrimSpace(text), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(template.HTMLEscapeString(para), "\n", "<br>"))
		b.WriteString("</p>")
	}
}

func writeTable(b *strings.Builder, t *autotable.Table) {
	b.WriteString(`<table class="auto"><thead><tr>`)
	for _, col := range t.Columns {
		b.WriteString("<th>")
		b.WriteString(template.HTMLEscapeString(col))
		b.WriteString("</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for _, row := range t.Rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			b.WriteString("<td>")
			b.WriteString(template.HTMLEscapeString(cell))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
}

func numberDepth(number string) int {
	if number == "" {
		return 1
	}
	return strings.Count(number, ".") + 1
}

func parentNumber(number string) string {
	if i := strings.LastIndexByte(number, '.'); i > 0 {
		return number[:i]
	}
	return number
}

// RenderDocumentHTML renders the document template for a view model.
func RenderDocumentHTML(vm *assemble.ViewModel) (string, error) {
	data, err := BuildTemplateData(vm)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// fallbackTemplate is used if the embedded template fails to load.
const fallbackTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
</head>
<body>
  <h1>{{.Title}}</h1>
  {{if .Subtitle}}<p>{{.Subtitle}}</p>{{end}}
  {{range .Chapters}}
  <h1>{{.Number}} {{.Title}}</h1>
  {{.BodyHTML | safeHTML}}
  {{end}}
</body>
</html>`

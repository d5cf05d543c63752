// Package editdiff applies the partial change payloads produced by
// the external editing surface back into the blueprint and record
// store. Application is all-or-nothing: the payload either applies in
// full to a working copy that is then swapped in, or the persisted
// state is left untouched.
package editdiff

import (
	"bytes"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"localfile/internal/blueprint"
	"localfile/internal/faults"
	"localfile/internal/pathkey"
	"localfile/internal/records"
)

// SourceWorkspaceEditor is the only payload discriminator the engine
// accepts.
const SourceWorkspaceEditor = "workspace-editor"

// StatusChange carries partial section-status updates; a nil field
// means "unchanged", never "cleared".
type StatusChange struct {
	Reviewed  *bool `json:"reviewed,omitempty"`
	SignedOff *bool `json:"signed_off,omitempty"`
}

// TransactionChange edits the entity's transaction roster, matched by
// display name. New names need type, counterparty and direction before
// they can be inserted; insertions and removals go through the
// confirmation hook.
type TransactionChange struct {
	Name         string   `json:"name"`
	Remove       bool     `json:"remove,omitempty"`
	Type         string   `json:"type,omitempty"`
	Counterparty string   `json:"counterparty,omitempty"`
	Direction    string   `json:"direction,omitempty"`
	Currency     string   `json:"currency,omitempty"`
	Amount       *float64 `json:"amount,omitempty"`
}

// Payload is the wire shape pasted back from the editing surface.
// Absent keys mean "unchanged".
type Payload struct {
	Source        string                  `json:"source"`
	Summary       []string                `json:"summary,omitempty"`
	Sections      map[string]string       `json:"sections,omitempty"`
	SectionNotes  map[string][]string     `json:"section_notes,omitempty"`
	Footnotes     map[string][]string     `json:"footnotes,omitempty"`
	SectionStatus map[string]StatusChange `json:"section_status,omitempty"`
	Stage         string                  `json:"stage,omitempty"`
	DocumentMeta  map[string]string       `json:"document_meta,omitempty"`
	Transactions  []TransactionChange     `json:"transactions,omitempty"`
}

// ConfirmFunc answers yes/no questions about transaction roster
// changes. A nil func declines everything, which keeps unattended runs
// from inserting or deleting records.
type ConfirmFunc func(prompt string) (bool, error)

// Result reports what one application changed.
type Result struct {
	Summary             []string
	SectionsChanged     int
	StatusChanged       int
	TransactionsChanged int
	StageChanged        bool
}

// Applicator binds the current state one payload applies against.
type Applicator struct {
	Store     *records.Store
	Blueprint *blueprint.Blueprint
	// SectionPaths is the live tree's path set, used to translate
	// element keys and reject edits against absent sections.
	SectionPaths []string
	Confirm      ConfirmFunc
	Logger       *zap.Logger
}

func (a *Applicator) logger() *zap.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return zap.NewNop()
}

func (a *Applicator) confirm(prompt string) (bool, error) {
	if a.Confirm == nil {
		return false, nil
	}
	return a.Confirm(prompt)
}

// Apply parses and applies one payload. The empty payload is a no-op;
// re-applying an already-applied payload converges on the same state.
func (a *Applicator) Apply(raw []byte) (*Result, error) {
	var p Payload
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return nil, faults.DiffApplication("", "payload is not a valid edit diff: %v", err)
	}
	if p.Source != SourceWorkspaceEditor {
		return nil, faults.DiffApplication(p.Source, "unrecognized payload source")
	}

	idx, err := pathkey.NewIndex(a.SectionPaths)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(a.SectionPaths))
	for _, path := range a.SectionPaths {
		known[path] = true
	}

	// Everything mutates working copies; state is swapped in at the end.
	bp := a.Blueprint.Clone()
	lf, err := a.Store.FindLocalFile(a.Blueprint.Entity, a.Blueprint.FiscalYear)
	if err != nil {
		return nil, err
	}
	lfCopy := cloneLocalFile(lf)
	txs := append([]records.Transaction(nil), a.Store.Transactions...)

	res := &Result{Summary: p.Summary}

	resolvePath := func(key string) (string, error) {
		path := key
		if !strings.Contains(key, "/") {
			var err error
			path, err = idx.Path(key)
			if err != nil {
				return "", err
			}
		}
		if !known[path] {
			return "", faults.DiffApplication(path, "section is not present in the current tree")
		}
		return path, nil
	}

	for key, text := range p.Sections {
		path, err := resolvePath(key)
		if err != nil {
			return nil, err
		}
		// A content edit always becomes an entity-level inline
		// override, whatever layer supplied the text before.
		if err := bp.SetContent(path, []string{text}); err != nil {
			return nil, err
		}
		res.SectionsChanged++
	}

	for key, notes := range p.SectionNotes {
		path, err := resolvePath(key)
		if err != nil {
			return nil, err
		}
		for _, n := range notes {
			if !containsString(bp.SectionNotes[path], n) {
				bp.AppendNote(path, n)
			}
		}
	}
	for key, notes := range p.Footnotes {
		path, err := resolvePath(key)
		if err != nil {
			return nil, err
		}
		for _, n := range notes {
			if !containsString(bp.Footnotes[path], n) {
				bp.AppendFootnote(path, n)
			}
		}
	}

	for key, change := range p.SectionStatus {
		path, err := resolvePath(key)
		if err != nil {
			return nil, err
		}
		status := lfCopy.SectionStatus[path]
		if change.Reviewed != nil {
			status.Reviewed = *change.Reviewed
		}
		if change.SignedOff != nil {
			status.SignedOff = *change.SignedOff
		}
		if lfCopy.SectionStatus == nil {
			lfCopy.SectionStatus = map[string]records.SectionStatus{}
		}
		lfCopy.SectionStatus[path] = status
		res.StatusChanged++
	}

	if p.Stage != "" {
		switch p.Stage {
		case "draft", "review", "final":
			res.StageChanged = lfCopy.Stage != p.Stage
			lfCopy.Stage = p.Stage
		default:
			return nil, faults.DiffApplication(p.Stage, "unknown document stage")
		}
	}

	for k, v := range p.DocumentMeta {
		switch k {
		case "title":
			lfCopy.Title = v
		case "subtitle":
			lfCopy.Subtitle = v
		default:
			if lfCopy.Meta == nil {
				lfCopy.Meta = map[string]string{}
			}
			lfCopy.Meta[k] = v
		}
	}

	for _, change := range p.Transactions {
		txs, err = a.applyTransaction(txs, lfCopy, bp, change, res)
		if err != nil {
			return nil, err
		}
	}

	// Commit.
	*a.Blueprint = *bp
	a.Store.Transactions = txs
	*lf = *lfCopy

	a.logger().Info("applied edit diff",
		zap.Int("sections", res.SectionsChanged),
		zap.Int("status", res.StatusChanged),
		zap.Int("transactions", res.TransactionsChanged))
	return res, nil
}

func (a *Applicator) applyTransaction(txs []records.Transaction, lf *records.LocalFile, bp *blueprint.Blueprint, change TransactionChange, res *Result) ([]records.Transaction, error) {
	if strings.TrimSpace(change.Name) == "" {
		return nil, faults.DiffApplication("", "transaction change without a name")
	}
	match, _ := records.TransactionByName(txs, change.Name)

	if change.Remove {
		if match < 0 {
			return nil, faults.DiffApplication(change.Name, "transaction to remove is not in the roster")
		}
		ok, err := a.confirm("Remove transaction " + txs[match].Name + "?")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, faults.DiffApplication(change.Name, "removal not confirmed")
		}
		id := txs[match].ID
		txs = append(txs[:match], txs[match+1:]...)
		lf.CoveredTransactions = removeString(lf.CoveredTransactions, id)
		bp.CoveredTransactions = removeString(bp.CoveredTransactions, id)
		// The transaction's sections leave the tree with it; stale
		// blueprint entries under its path would fail the next pass.
		prefix := "transactions/" + id + "/"
		for path := range bp.Content {
			if strings.HasPrefix(path, prefix) {
				delete(bp.Content, path)
			}
		}
		for path := range lf.SectionStatus {
			if strings.HasPrefix(path, prefix) {
				delete(lf.SectionStatus, path)
			}
		}
		res.TransactionsChanged++
		return txs, nil
	}

	if match >= 0 {
		tx := &txs[match]
		if change.Type != "" {
			tx.Type = change.Type
		}
		if change.Currency != "" {
			tx.Currency = change.Currency
		}
		if change.Amount != nil {
			tx.Amount = *change.Amount
		}
		res.TransactionsChanged++
		return txs, nil
	}

	if change.Type == "" || change.Counterparty == "" || change.Direction == "" {
		return nil, faults.DiffApplication(change.Name, "new transaction needs type, counterparty and direction")
	}
	if _, err := a.Store.FindEntity(change.Counterparty); err != nil {
		return nil, err
	}
	var from, to string
	switch change.Direction {
	case "outbound":
		from, to = a.Blueprint.Entity, change.Counterparty
	case "inbound":
		from, to = change.Counterparty, a.Blueprint.Entity
	default:
		return nil, faults.DiffApplication(change.Name, "direction must be inbound or outbound")
	}
	ok, err := a.confirm("Add transaction " + change.Name + " (" + change.Direction + " with " + change.Counterparty + ")?")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, faults.DiffApplication(change.Name, "insertion not confirmed")
	}

	id := slugifyName(change.Name)
	for _, tx := range txs {
		if tx.ID == id {
			return nil, faults.DiffApplication(change.Name, "generated id %q collides with an existing transaction", id)
		}
	}
	tx := records.Transaction{
		ID:         id,
		Name:       strings.TrimSpace(change.Name),
		Type:       change.Type,
		FromEntity: from,
		ToEntity:   to,
		Currency:   change.Currency,
	}
	if change.Amount != nil {
		tx.Amount = *change.Amount
	}
	txs = append(txs, tx)
	lf.CoveredTransactions = append(lf.CoveredTransactions, id)
	bp.CoveredTransactions = append(bp.CoveredTransactions, id)
	res.TransactionsChanged++
	return txs, nil
}

func cloneLocalFile(lf *records.LocalFile) *records.LocalFile {
	c := *lf
	c.CoveredTransactions = append([]string(nil), lf.CoveredTransactions...)
	if lf.Meta != nil {
		c.Meta = map[string]string{}
		for k, v := range lf.Meta {
			c.Meta[k] = v
		}
	}
	if lf.SectionStatus != nil {
		c.SectionStatus = map[string]records.SectionStatus{}
		for k, v := range lf.SectionStatus {
			c.SectionStatus[k] = v
		}
	}
	return &c
}

func slugifyName(name string) string {
	var b strings.Builder
	b.WriteString("tx-")
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

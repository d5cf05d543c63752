// Package pathkey maps hierarchical slash-path section identifiers to
// the flat underscore keys used in rendered documents and edit
// payloads. The mapping is lossy in general (`-` and `/` both flatten
// to `_`), so persistence always keys on the slash path; element keys
// are derived on the way out and translated back through an index of
// known paths, never by string inversion.
package pathkey

import (
	"fmt"
	"strings"

	"localfile/internal/faults"
)

// ToElementKey flattens a section path into an element key:
// "entity/functional-profiles/overview" -> "entity_functional_profiles_overview".
func ToElementKey(path string) string {
	key := strings.ReplaceAll(path, "/", "_")
	return strings.ReplaceAll(key, "-", "_")
}

// ValidateID accepts kebab-case segment ids. Underscores are rejected
// so that ToElementKey stays collision-free over accepted paths.
func ValidateID(id string) error {
	if id == "" {
		return faults.Configuration(id, "section id is empty")
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-':
		default:
			return faults.Configuration(id, "section id may contain only lowercase letters, digits and hyphens (got %q)", r)
		}
	}
	if strings.HasPrefix(id, "-") || strings.HasSuffix(id, "-") {
		return faults.Configuration(id, "section id may not begin or end with a hyphen")
	}
	return nil
}

// ValidatePath validates every segment of a slash path.
func ValidatePath(path string) error {
	if path == "" {
		return faults.Configuration(path, "section path is empty")
	}
	for _, seg := range strings.Split(path, "/") {
		if err := ValidateID(seg); err != nil {
			return faults.Configuration(path, "invalid segment: %v", err)
		}
	}
	return nil
}

// Index resolves element keys back to canonical section paths. It is
// built from the set of paths in a live blueprint.
type Index struct {
	byKey map[string]string
}

func NewIndex(paths []string) (*Index, error) {
	idx := &Index{byKey: make(map[string]string, len(paths))}
	for _, p := range paths {
		key := ToElementKey(p)
		if prev, ok := idx.byKey[key]; ok && prev != p {
			return nil, faults.Configuration(key, "element key collides between paths %q and %q", prev, p)
		}
		idx.byKey[key] = p
	}
	return idx, nil
}

// Path returns the section path for an element key.
func (i *Index) Path(key string) (string, error) {
	p, ok := i.byKey[key]
	if !ok {
		return "", faults.DiffApplication(key, "unknown element key")
	}
	return p, nil
}

// MakeTitle derives a human title from a slug: "cash-pooling" -> "Cash Pooling".
func MakeTitle(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Join builds a child path.
func Join(parent, id string) string {
	if parent == "" {
		return id
	}
	return fmt.Sprintf("%s/%s", parent, id)
}

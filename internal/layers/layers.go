// Package layers resolves section content across the four-tier
// override cascade: entity > group > firm library > universal
// references. The tier list is an explicit, ordered parameter of the
// resolver rather than ambient configuration, and the outcome is a
// tagged value (found / empty / error) instead of sentinel errors for
// the common miss.
package layers

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"localfile/internal/faults"
)

// Layer numbers a precedence tier. Higher is more specific and wins.
type Layer int

const (
	Universal Layer = 1
	Firm      Layer = 2
	Group     Layer = 3
	Entity    Layer = 4
)

func (l Layer) Label() string {
	switch l {
	case Universal:
		return "Universal"
	case Firm:
		return "Firm Library"
	case Group:
		return "Group"
	case Entity:
		return "Entity"
	}
	return "Unknown"
}

// Color is the badge color the workspace editor shows for the tier.
func (l Layer) Color() string {
	switch l {
	case Universal:
		return "#64748b"
	case Firm:
		return "#94a3b8"
	case Group:
		return "#a855f7"
	case Entity:
		return "#3b82f6"
	}
	return "#64748b"
}

// Root binds a tier to its directory on disk.
type Root struct {
	Layer Layer
	Dir   string
}

// Outcome tags a resolution result.
type Outcome int

const (
	// Missing means no tier provides the path. This is the expected
	// state for sections awaiting content, not an error.
	Missing Outcome = iota
	Found
)

// Resolution is the result of one cascade lookup.
type Resolution struct {
	Outcome Outcome
	Text    string
	Layer   Layer
	// Path is the resolved file on disk when Outcome == Found.
	Path string
}

// Resolver walks an ordered tier list, most specific first.
type Resolver struct {
	roots []Root
}

// NewResolver orders the given roots from most to least specific.
// Tiers without a configured directory may simply be omitted.
func NewResolver(roots []Root) *Resolver {
	ordered := make([]Root, len(roots))
	copy(ordered, roots)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ordered[j].Layer > ordered[j-1].Layer; j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	return &Resolver{roots: ordered}
}

// Resolve looks up rel (a slash path, no extension) across the cascade.
// floor is the least specific tier to consult: a source tagged
// "@library/..." pins floor to Firm so the walk is entity, group, firm;
// "@references/..." opens the full cascade. The first tier with the
// file wins outright; lower tiers are never blended in.
func (r *Resolver) Resolve(rel string, floor Layer) (Resolution, error) {
	if strings.Contains(rel, "..") {
		return Resolution{}, faults.Configuration(rel, "content path may not traverse upward")
	}
	for _, root := range r.roots {
		if root.Layer < floor {
			continue
		}
		candidate := filepath.Join(root.Dir, filepath.FromSlash(rel)+".md")
		info, err := os.Stat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			// The original also probed the bare path; that made the
			// directory check below unreachable, so only .md is probed.
			if bare, berr := os.Stat(filepath.Join(root.Dir, filepath.FromSlash(rel))); berr == nil && bare.IsDir() {
				return Resolution{}, faults.Configuration(rel, "content path is a directory in %s layer", root.Layer.Label())
			}
			continue
		}
		if err != nil {
			return Resolution{}, faults.Configuration(rel, "stat %s: %v", candidate, err)
		}
		if info.IsDir() {
			return Resolution{}, faults.Configuration(rel, "content path is a directory in %s layer", root.Layer.Label())
		}
		raw, err := os.ReadFile(candidate)
		if err != nil {
			return Resolution{}, faults.Configuration(rel, "read %s: %v", candidate, err)
		}
		return Resolution{
			Outcome: Found,
			Text:    StripFrontmatter(string(raw)),
			Layer:   root.Layer,
			Path:    candidate,
		}, nil
	}
	return Resolution{Outcome: Missing}, nil
}

// StripFrontmatter removes a leading YAML frontmatter block fenced by
// `---` lines, returning the trimmed body.
func StripFrontmatter(text string) string {
	trimmed := strings.TrimLeft(text, "\ufeff")
	if !strings.HasPrefix(trimmed, "---") {
		return strings.TrimSpace(text)
	}
	rest := trimmed[3:]
	idx := strings.Index(rest, "\n---")
	if idx < 0 {
		return strings.TrimSpace(text)
	}
	body := rest[idx+4:]
	if i := strings.IndexByte(body, '\n'); i >= 0 && strings.TrimSpace(body[:i]) == "" {
		body = body[i+1:]
	}
	return strings.TrimSpace(body)
}

// SourceRef is a parsed layer reference from a content source list.
type SourceRef struct {
	// Floor is the least specific tier the reference ships at.
	Floor Layer
	// Rel is the content path relative to the tier roots.
	Rel string
}

// ParseSourceTag splits a source entry. Entries beginning with a known
// "@tier/" tag are layer references; anything else is inline text.
func ParseSourceTag(entry string) (SourceRef, bool) {
	tags := []struct {
		prefix string
		floor  Layer
	}{
		{"@references/", Universal},
		{"@library/", Firm},
		{"@group/", Group},
		{"@entity/", Entity},
	}
	for _, t := range tags {
		if strings.HasPrefix(entry, t.prefix) {
			return SourceRef{Floor: t.floor, Rel: strings.TrimPrefix(entry, t.prefix)}, true
		}
	}
	return SourceRef{}, false
}

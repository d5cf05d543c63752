package assemble

import (
	"strings"

	"localfile/internal/faults"
	"localfile/internal/layers"
)

// resolveSources turns one section's ordered source list into the
// text, layer and parts of its element. A single source produces a
// simple element; more than one produces a composite whose parts keep
// input order; an empty list produces the placeholder ("no override
// yet, do not draft").
func resolveSources(resolver *layers.Resolver, path string, sources []string) (text string, layer layers.Layer, composite bool, parts []Part, err error) {
	resolved := make([]Part, 0, len(sources))
	for _, src := range sources {
		ref, isRef := layers.ParseSourceTag(src)
		if !isRef {
			// Inline text carries the most specific tier.
			resolved = append(resolved, Part{
				Text:       strings.TrimSpace(src),
				Layer:      int(layers.Entity),
				LayerLabel: layers.Entity.Label(),
				LayerColor: layers.Entity.Color(),
				Source:     "inline",
				Editable:   true,
			})
			continue
		}
		res, rerr := resolver.Resolve(ref.Rel, ref.Floor)
		if rerr != nil {
			return "", 0, false, nil, rerr
		}
		if res.Outcome != layers.Found {
			// A listed reference asserts the content exists somewhere
			// in the cascade; a miss is a broken assertion, not an
			// empty placeholder.
			return "", 0, false, nil, faults.NotFound(path, "source %q resolves nowhere in the cascade", src)
		}
		resolved = append(resolved, Part{
			Text:       res.Text,
			Layer:      int(res.Layer),
			LayerLabel: res.Layer.Label(),
			LayerColor: res.Layer.Color(),
			Source:     res.Path,
			Editable:   res.Layer >= layers.Entity,
		})
	}

	switch len(resolved) {
	case 0:
		return "", 0, false, nil, nil
	case 1:
		return resolved[0].Text, layers.Layer(resolved[0].Layer), false, nil, nil
	default:
		segments := make([]string, len(resolved))
		maxLayer := layers.Layer(0)
		for i, p := range resolved {
			segments[i] = p.Text
			if layers.Layer(p.Layer) > maxLayer {
				maxLayer = layers.Layer(p.Layer)
			}
		}
		return strings.Join(segments, "\n\n"), maxLayer, true, resolved, nil
	}
}

// Package faults defines the error taxonomy shared by the assembly
// pipeline. Every failure carries enough context (path, id, field) for
// the caller to act on; nothing is downgraded to a warning.
package faults

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindConfiguration        Kind = "configuration"
	KindContentNotFound      Kind = "content_not_found"
	KindReferentialIntegrity Kind = "referential_integrity"
	KindDiffApplication      Kind = "diff_application"
)

// Fault is a classified engine error. Ref holds the offending path or
// record id, Detail is free-form context.
type Fault struct {
	Kind   Kind
	Ref    string
	Detail string
}

func (e *Fault) Error() string {
	if e == nil {
		return ""
	}
	if e.Ref == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Ref, e.Detail)
}

// Is matches any *Fault of the same kind, so callers can test
// errors.Is(err, faults.Configuration("", "")) style sentinels or use As.
func (e *Fault) Is(target error) bool {
	t, ok := target.(*Fault)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Ref == "" || t.Ref == e.Ref)
}

func Configuration(ref, format string, args ...any) *Fault {
	return &Fault{Kind: KindConfiguration, Ref: ref, Detail: fmt.Sprintf(format, args...)}
}

func NotFound(ref, format string, args ...any) *Fault {
	return &Fault{Kind: KindContentNotFound, Ref: ref, Detail: fmt.Sprintf(format, args...)}
}

func ReferentialIntegrity(ref, format string, args ...any) *Fault {
	return &Fault{Kind: KindReferentialIntegrity, Ref: ref, Detail: fmt.Sprintf(format, args...)}
}

func DiffApplication(ref, format string, args ...any) *Fault {
	return &Fault{Kind: KindDiffApplication, Ref: ref, Detail: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err (or anything it wraps) is a Fault of the
// given kind.
func IsKind(err error, kind Kind) bool {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind == kind
	}
	return false
}

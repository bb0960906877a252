// Package media models the union-typed image/avatar reference: a field may
// hold either an opaque object-store id or a literal URL. The scheme sniffing
// happens exactly once, at the input boundary; everywhere else switches on Kind.
package media

import (
	"context"
	"strings"
)

type Kind string

const (
	KindNone   Kind = ""
	KindStored Kind = "stored"
	KindURL    Kind = "url"
)

// Resolver is the slice of the object store that reference resolution needs.
type Resolver interface {
	Resolve(ctx context.Context, objectID string) (string, error)
}

// Ref is stored as two columns (kind, value) via gorm's embedded struct
// support. The zero value means "no reference".
type Ref struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"`
}

// ParseRef classifies raw input. Absolute http(s) URLs are legacy/external
// references kept verbatim; anything else is treated as an object-store id.
func ParseRef(raw string) Ref {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Ref{}
	}
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return Ref{Kind: KindURL, Value: trimmed}
	}
	return Ref{Kind: KindStored, Value: trimmed}
}

func (r Ref) IsZero() bool {
	return r.Kind == KindNone
}

// ResolveURL turns a reference into a fetchable URL. Literal URLs pass through
// untouched; stored ids go through the object store and come back nil when the
// object is gone. Resolution errors degrade to nil so one corrupt reference
// never fails an enclosing list query.
func (r Ref) ResolveURL(ctx context.Context, store Resolver) (*string, error) {
	switch r.Kind {
	case KindNone:
		return nil, nil
	case KindURL:
		url := r.Value
		return &url, nil
	case KindStored:
		url, err := store.Resolve(ctx, r.Value)
		if err != nil {
			return nil, err
		}
		if url == "" {
			return nil, nil
		}
		return &url, nil
	default:
		return nil, nil
	}
}

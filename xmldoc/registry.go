package xmldoc

import (
	"strconv"

	"github.com/beevik/etree"
)

// Registry tracks every id attribute value seen in a document and mints
// fresh ones on demand. Workbooks mix GUID-like ids with short prefixed ids
// such as "z3"; both share one namespace.
type Registry struct {
	known map[string]struct{}
}

// NewRegistry seeds a registry from every id attribute under the given roots.
func NewRegistry(roots ...*etree.Element) *Registry {
	r := &Registry{known: make(map[string]struct{})}
	for _, root := range roots {
		Walk(root, func(e *etree.Element) {
			if id := e.SelectAttrValue("id", ""); id != "" {
				r.known[id] = struct{}{}
			}
		})
	}
	return r
}

// Reserve marks id as used.
func (r *Registry) Reserve(id string) {
	r.known[id] = struct{}{}
}

// Contains reports whether id has been seen or minted.
func (r *Registry) Contains(id string) bool {
	_, ok := r.known[id]
	return ok
}

// Ensure reserves and returns id if it is unused, otherwise mints a new id
// with prefix.
func (r *Registry) Ensure(id, prefix string) string {
	if r.Contains(id) {
		return r.New(prefix)
	}
	r.Reserve(id)
	return id
}

// New returns prefix followed by the smallest positive integer that yields
// an unused id, and reserves it.
func (r *Registry) New(prefix string) string {
	for i := 1; ; i++ {
		candidate := prefix + strconv.Itoa(i)
		if !r.Contains(candidate) {
			r.Reserve(candidate)
			return candidate
		}
	}
}

// EnsureUniqueID gives e an id that is unique within r, keeping its current
// id when that one is still free.
func EnsureUniqueID(e *etree.Element, r *Registry, prefix string) string {
	var id string
	if current := e.SelectAttrValue("id", ""); current != "" {
		id = r.Ensure(current, prefix)
	} else {
		id = r.New(prefix)
	}
	e.CreateAttr("id", id)
	return id
}

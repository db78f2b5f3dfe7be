package xmldoc

import (
	"fmt"
	"sync"

	"github.com/beevik/etree"
)

var paths sync.Map // query string → etree.Path

// Query returns the elements under e matching a path expression, in
// document order. Accessors use three forms: `./a/b` child chains,
// `.//a[@k='v']` any-depth matches with one attribute predicate, and
// `.//*[@k]` attribute presence on any tag.
func Query(e *etree.Element, query string) ([]*etree.Element, error) {
	p, err := compile(query)
	if err != nil {
		return nil, err
	}
	found := e.FindElementsPath(p)
	if len(found) < 2 {
		return found, nil
	}
	return documentOrder(e, found), nil
}

// documentOrder sorts found into pre-order position under e. etree
// evaluates descendant selectors breadth first.
func documentOrder(e *etree.Element, found []*etree.Element) []*etree.Element {
	want := make(map[*etree.Element]bool, len(found))
	for _, f := range found {
		want[f] = true
	}
	ordered := make([]*etree.Element, 0, len(found))
	Walk(e, func(x *etree.Element) {
		if want[x] {
			ordered = append(ordered, x)
		}
	})
	return ordered
}

// Find is Query for expressions known to be valid, such as package-level
// constants. It panics on a malformed expression.
func Find(e *etree.Element, query string) []*etree.Element {
	found, err := Query(e, query)
	if err != nil {
		panic(err)
	}
	return found
}

// First returns the first match of query under e, or nil.
func First(e *etree.Element, query string) *etree.Element {
	if found := Find(e, query); len(found) > 0 {
		return found[0]
	}
	return nil
}

func compile(query string) (etree.Path, error) {
	if cached, ok := paths.Load(query); ok {
		return cached.(etree.Path), nil
	}
	p, err := etree.CompilePath(query)
	if err != nil {
		return etree.Path{}, fmt.Errorf("compile query %q: %w", query, err)
	}
	paths.Store(query, p)
	return p, nil
}

// NewElement creates a detached element ready for attributes and
// attachment to a parent.
func NewElement(tag string) *etree.Element {
	return etree.NewElement(tag)
}

// Attr returns the value of key on e and whether it was present.
func Attr(e *etree.Element, key string) (string, bool) {
	a := e.SelectAttr(key)
	if a == nil {
		return "", false
	}
	return a.Value, true
}

// Walk calls fn for e and every descendant element in document order.
func Walk(e *etree.Element, fn func(*etree.Element)) {
	fn(e)
	for _, c := range e.ChildElements() {
		Walk(c, fn)
	}
}

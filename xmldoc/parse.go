// Package xmldoc wraps the etree DOM with the loading, serialization, and
// restricted path-query rules workbook documents need.
//
// Workbook files come from arbitrary sources and are treated as untrusted:
// external entities are never resolved, entity declarations are rejected,
// and nesting depth is bounded.
package xmldoc

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

// ErrParse is returned for malformed or adversarial XML input.
var ErrParse = errors.New("xml parse error")

// MaxDepth bounds element nesting in a loaded document.
const MaxDepth = 512

const defaultDeclaration = `version='1.0' encoding='utf-8'`

var encodingAttr = regexp.MustCompile(`encoding\s*=\s*["']([^"']*)["']`)

// Load parses data into a document. The returned document always carries
// an XML declaration that names utf-8, since Dump only writes utf-8.
func Load(data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
	}
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	for _, tok := range doc.Child {
		if d, ok := tok.(*etree.Directive); ok && strings.Contains(d.Data, "ENTITY") {
			return nil, fmt.Errorf("%w: entity declarations are not allowed", ErrParse)
		}
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: document has no root element", ErrParse)
	}
	if depth(root) > MaxDepth {
		return nil, fmt.Errorf("%w: nesting exceeds %d levels", ErrParse, MaxDepth)
	}
	normalizeDeclaration(doc)
	return doc, nil
}

func depth(e *etree.Element) int {
	deepest := 0
	for _, c := range e.ChildElements() {
		if d := depth(c); d > deepest {
			deepest = d
		}
		if deepest > MaxDepth {
			break
		}
	}
	return deepest + 1
}

func normalizeDeclaration(doc *etree.Document) {
	for _, tok := range doc.Child {
		pi, ok := tok.(*etree.ProcInst)
		if !ok || pi.Target != "xml" {
			continue
		}
		m := encodingAttr.FindStringSubmatch(pi.Inst)
		if m != nil && !strings.EqualFold(m[1], "utf-8") {
			pi.Inst = encodingAttr.ReplaceAllString(pi.Inst, "encoding='utf-8'")
		}
		return
	}
	doc.InsertChildAt(0, etree.NewProcInst("xml", defaultDeclaration))
}

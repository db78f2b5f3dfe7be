package xmldoc

import (
	"strings"

	"github.com/beevik/etree"
)

const indentUnit = "  "

// Dump re-indents doc in place and serializes it as utf-8.
//
// Only whitespace between elements is rewritten. Elements holding any
// non-whitespace text (leaf values and mixed content) are written exactly as
// parsed, so Dump(Load(Dump(Load(x)))) equals Dump(Load(x)). Tab, newline
// and carriage return inside attribute values, and carriage return in text,
// are written as character references so multi-line formulas survive a
// reload unchanged.
func Dump(doc *etree.Document) ([]byte, error) {
	reindent(&doc.Element, 0, true)
	doc.WriteSettings.CanonicalAttrVal = true
	doc.WriteSettings.CanonicalText = true
	doc.WriteSettings.AttrSingleQuote = false
	return doc.WriteToBytes()
}

// reindent rebuilds the whitespace children of e. Documents separate their
// top-level tokens by newlines only.
func reindent(e *etree.Element, depth int, isDoc bool) {
	if len(e.Child) == 0 || hasText(e) {
		return
	}
	var kept []etree.Token
	for _, tok := range e.Child {
		if _, ok := tok.(*etree.CharData); ok {
			continue
		}
		kept = append(kept, tok)
	}
	if len(kept) == 0 {
		// whitespace-only leaf
		return
	}
	for len(e.Child) > 0 {
		e.RemoveChildAt(len(e.Child) - 1)
	}
	for i, tok := range kept {
		switch {
		case isDoc && i > 0:
			e.CreateText("\n")
		case !isDoc:
			e.CreateText("\n" + strings.Repeat(indentUnit, depth+1))
		}
		e.AddChild(tok)
		if child, ok := tok.(*etree.Element); ok {
			if isDoc {
				reindent(child, 0, false)
			} else {
				reindent(child, depth+1, false)
			}
		}
	}
	if isDoc {
		e.CreateText("\n")
	} else {
		e.CreateText("\n" + strings.Repeat(indentUnit, depth))
	}
}

// hasText reports whether e has a character-data child that is not pure
// whitespace.
func hasText(e *etree.Element) bool {
	for _, tok := range e.Child {
		if cd, ok := tok.(*etree.CharData); ok && !cd.IsWhitespace() {
			return true
		}
	}
	return false
}

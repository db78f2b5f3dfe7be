// Package calc checks calculation formulas and rewrites the bracketed field
// references embedded in them.
//
// Formulas are never tokenized. Reference rewriting is a literal substring
// replace of the bracketed name, so renaming [Sales] also rewrites the
// [Sales] inside [Orders].[Sales], and a rename whose old name appears inside
// a longer identifier of another field can over-match.
package calc

import (
	"regexp"
	"strings"
)

// LintResult reports whether a formula passed the balance checks.
type LintResult struct {
	OK      bool
	Message string
}

// Lint messages.
const (
	MsgParentheses = "Unbalanced parentheses"
	MsgBrackets    = "Unbalanced field brackets"
)

// Lint checks that parentheses and field brackets in formula balance.
//
// String literals ('...' or "...") and line comments (// to end of line) are
// skipped. Inside a field reference, quotes and parentheses are part of the
// field name. A closing ) or ] with nothing open fails immediately.
func Lint(formula string) LintResult {
	parens, brackets := 0, 0
	var quote rune
	comment := false
	prev := rune(0)
	for _, ch := range formula {
		switch {
		case comment:
			if ch == '\n' {
				comment = false
			}
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case brackets > 0:
			switch ch {
			case '[':
				brackets++
			case ']':
				brackets--
			}
		default:
			switch ch {
			case '\'', '"':
				quote = ch
			case '/':
				if prev == '/' {
					comment = true
				}
			case '(':
				parens++
			case ')':
				parens--
				if parens < 0 {
					return LintResult{Message: MsgParentheses}
				}
			case '[':
				brackets++
			case ']':
				return LintResult{Message: MsgBrackets}
			}
		}
		prev = ch
	}
	if parens != 0 {
		return LintResult{Message: MsgParentheses}
	}
	if brackets != 0 {
		return LintResult{Message: MsgBrackets}
	}
	return LintResult{OK: true}
}

// Bracket returns name in the [name] form used for field references.
// Names that already start with [ are returned unchanged.
func Bracket(name string) string {
	if strings.HasPrefix(name, "[") {
		return name
	}
	return "[" + name + "]"
}

// Unbracket strips one pair of enclosing brackets from ref.
func Unbracket(ref string) string {
	if len(ref) >= 2 && strings.HasPrefix(ref, "[") && strings.HasSuffix(ref, "]") {
		return ref[1 : len(ref)-1]
	}
	return ref
}

// ReplaceRef replaces every literal occurrence of the bracketed reference
// old in formula with new and returns the count replaced.
func ReplaceRef(formula, old, new string) (string, int) {
	n := strings.Count(formula, old)
	if n == 0 || old == "" {
		return formula, 0
	}
	return strings.ReplaceAll(formula, old, new), n
}

// RenameRef rewrites an attribute value that names the field old, either
// bare ("[Profit]") or qualified by its datasource ("[Orders].[Profit]").
func RenameRef(value, old, new string) (string, bool) {
	if value == old {
		return new, true
	}
	if qualifier, ok := strings.CutSuffix(value, "."+old); ok && strings.HasSuffix(qualifier, "]") {
		return qualifier + "." + new, true
	}
	return value, false
}

var refPattern = regexp.MustCompile(`\[[^\[\]]+\]`)

// References returns the distinct bracketed references in formula in order
// of first appearance. A qualified reference [ds].[field] yields both parts.
func References(formula string) []string {
	var refs []string
	seen := make(map[string]bool)
	for _, m := range refPattern.FindAllString(formula, -1) {
		if !seen[m] {
			seen[m] = true
			refs = append(refs, m)
		}
	}
	return refs
}

package twbedit

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// ModifiedMarker is the single entry Diff returns for a changed workbook.
const ModifiedMarker = "Workbook modified"

// Diff reports whether the workbook changed since it was loaded. It returns
// nil when the serialized document equals the as-loaded serialization and
// []string{ModifiedMarker} otherwise.
func (wb *Workbook) Diff() ([]string, error) {
	current, err := wb.Serialize()
	if err != nil {
		return nil, err
	}
	same, err := wb.original.equal(current)
	if err != nil {
		return nil, err
	}
	if same {
		return nil, nil
	}
	return []string{ModifiedMarker}, nil
}

// DisplayDiff returns a line diff of the serialized document against the
// as-loaded one, for display. Removed lines read "- line" and added lines
// "+ line", in document order. An unmodified workbook yields nil.
func (wb *Workbook) DisplayDiff() ([]string, error) {
	before, err := wb.original.bytes()
	if err != nil {
		return nil, err
	}
	after, err := wb.Serialize()
	if err != nil {
		return nil, err
	}
	return CompareLines(before, after), nil
}

// CompareLines diffs two serialized documents line by line. Removed lines
// read "- line" and added lines "+ line"; equal inputs yield nil.
func CompareLines(before, after []byte) []string {
	a, b := splitLines(string(before)), splitLines(string(after))
	m := difflib.NewMatcherWithJunk(a, b, false, nil)

	var out []string
	for _, op := range m.GetOpCodes() {
		if op.Tag == 'r' || op.Tag == 'd' {
			for _, line := range a[op.I1:op.I2] {
				out = append(out, "- "+line)
			}
		}
		if op.Tag == 'r' || op.Tag == 'i' {
			for _, line := range b[op.J1:op.J2] {
				out = append(out, "+ "+line)
			}
		}
	}
	return out
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

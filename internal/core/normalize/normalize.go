// Package normalize cleans feed text before validation and export
// Text pipeline order
// 1 Drop invalid UTF-8 and control characters other than whitespace
// 2 Unicode NFC composition
// 3 Remove format chars (zero widths, BOM)
// 4 Width fold fullwidth to ASCII
// 5 Collapse whitespace runs to a single space and trim
// Key additionally applies NFKC and case folding so header names match field names
package normalize

import (
	"strconv"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var textPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			runes.Remove(runes.Predicate(isControl)),
			norm.NFC,
			runes.Remove(runes.In(unicode.Cf)),
			width.Fold,
		)
	},
}

var keyPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKC,
			cases.Fold(),
			runes.Remove(runes.In(unicode.Mn)),
		)
	},
}

// Text returns the cleaned single line form of a feed value
func Text(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(s, "")
	s = apply(&textPool, s)
	return strings.Join(strings.Fields(s), " ")
}

// Key returns the matching key for a header or field name
// "Product-Name" and "product name" both map to product_name
func Key(s string) string {
	s = Text(s)
	if s == "" {
		return ""
	}
	s = apply(&keyPool, s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '.':
			return '_'
		}
		return r
	}, s)
	return strings.Trim(s, "_")
}

// Decimal parses a price like "12,99", "1.299,00" or "1,299.00 " into a canonical
// dot separated string; ok is false when the value is not a number
func Decimal(s string) (string, bool) {
	s = strings.ReplaceAll(Text(s), " ", "")
	if s == "" {
		return "", false
	}
	dot, comma := strings.LastIndexByte(s, '.'), strings.LastIndexByte(s, ',')
	switch {
	case dot >= 0 && comma >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case dot >= 0 && comma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		if strings.Count(s, ",") > 1 {
			return "", false
		}
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", false
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}

// isControl covers NUL, DEL and the C0 and C1 ranges; whitespace is collapsed later
func isControl(r rune) bool { return unicode.IsControl(r) && !unicode.IsSpace(r) }

func apply(p *sync.Pool, s string) string {
	tr := p.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	p.Put(tr)
	if err != nil {
		return s
	}
	return out
}

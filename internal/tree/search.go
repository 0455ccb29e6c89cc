package tree

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldDiacritics strips combining marks so "Chương" matches "chuong".
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func fold(s string) string {
	out, _, err := transform.String(foldDiacritics, s)
	if err != nil {
		return strings.ToLower(s)
	}
	// đ/Đ carry no combining mark, fold them by hand.
	out = strings.NewReplacer("đ", "d", "Đ", "D").Replace(out)
	return strings.ToLower(out)
}

// Search returns the nodes whose title contains the query, compared
// case-insensitively and ignoring Vietnamese diacritics. An empty query
// matches nothing.
func Search(nodes []Node, query string) []Node {
	q := fold(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []Node
	for _, n := range nodes {
		if strings.Contains(fold(n.Title), q) {
			out = append(out, n)
		}
	}
	return out
}

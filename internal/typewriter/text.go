package typewriter

import (
	"strings"

	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/norm"
)

// stringList is a validated string list split into typeable characters.
//
// Strings are NFC normalized first so a precomposed and a decomposed accent
// type as the same single character.
type stringList struct {
	raw    []string
	glyphs [][]string
}

func newStringList(strs []string) (*stringList, error) {
	if len(strs) == 0 {
		return nil, &ValidationError{
			Field:   "strings",
			Message: "must contain at least one string",
			Err:     ErrEmptyStrings,
		}
	}

	l := &stringList{
		raw:    make([]string, len(strs)),
		glyphs: make([][]string, len(strs)),
	}
	for i, s := range strs {
		n := norm.NFC.String(s)
		l.raw[i] = n
		l.glyphs[i] = Graphemes(n)
	}
	return l, nil
}

func (l *stringList) len() int {
	return len(l.raw)
}

// prefix returns the first n characters of string i.
func (l *stringList) prefix(i, n int) string {
	g := l.glyphs[i]
	n = max(0, min(n, len(g)))
	return strings.Join(g[:n], "")
}

// Graphemes splits s into user-perceived characters.
//
// One grapheme cluster is one typing step: "é" and flag emoji are a
// single step each.
func Graphemes(s string) []string {
	var out []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// Length returns the number of typing steps needed for s.
func Length(s string) int {
	return uniseg.GraphemeClusterCount(norm.NFC.String(s))
}

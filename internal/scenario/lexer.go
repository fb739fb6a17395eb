package scenario

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/nikomatsakis/borrowck/internal/model"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokRegion
	tokNumber
	tokPunct
)

type token struct {
	kind tokenKind
	text string
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "end of input"
	}
	return "`" + t.text + "`"
}

const punctuation = "&*().=,<>:{}/"

// lex splits one line of notation into tokens.
func lex(src string) ([]token, error) {
	var toks []token
	rs := []rune(src)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '\'':
			j := i + 1
			for j < len(rs) && isIdentRune(rs[j]) {
				j++
			}
			if j == i+1 {
				return nil, syntaxf("%q: expected a region name after '", src)
			}
			toks = append(toks, token{kind: tokRegion, text: string(rs[i:j])})
			i = j
		case unicode.IsDigit(r):
			j := i
			for j < len(rs) && unicode.IsDigit(rs[j]) {
				j++
			}
			toks = append(toks, token{kind: tokNumber, text: string(rs[i:j])})
			i = j
		case isIdentRune(r):
			j := i
			for j < len(rs) && isIdentRune(rs[j]) {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: string(rs[i:j])})
			i = j
		case strings.ContainsRune(punctuation, r):
			toks = append(toks, token{kind: tokPunct, text: string(r)})
			i++
		default:
			return nil, syntaxf("%q: unexpected character %q", src, r)
		}
	}
	return append(toks, token{kind: tokEOF}), nil
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func syntaxf(format string, args ...any) error {
	return errors.Wrap(model.ErrMalformedProgram, "syntax error: "+fmt.Sprintf(format, args...))
}

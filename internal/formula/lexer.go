package formula

import (
	"strconv"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
	num  float64
}

func (t token) describe() string {
	switch t.kind {
	case tokEOF:
		return "end of formula"
	case tokNumber:
		return "number " + strconv.Quote(t.text)
	case tokIdent:
		return "identifier " + strconv.Quote(t.text)
	default:
		return strconv.Quote(t.text)
	}
}

var twoCharOps = map[string]struct{}{
	">=": {}, "<=": {}, "==": {}, "!=": {}, "&&": {}, "||": {},
}

func tokenize(src string) ([]token, error) {
	var toks []token

	for i := 0; i < len(src); {
		c := src[i]

		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			start := i
			for i < len(src) && isDigit(src[i]) {
				i++
			}
			if i < len(src) && src[i] == '.' {
				i++
				if i >= len(src) || !isDigit(src[i]) {
					return nil, syntaxErr(src, start, "malformed number %q", src[start:i])
				}
				for i < len(src) && isDigit(src[i]) {
					i++
				}
			}
			text := src[start:i]
			num, err := strconv.ParseFloat(text, 64)
			if err != nil {
				shown := text
				if len(shown) > 24 {
					shown = shown[:24] + "..."
				}
				return nil, &SemanticError{Formula: src, Pos: start, Kind: ErrNumberOutOfRange, Msg: strconv.Quote(shown)}
			}
			toks = append(toks, token{kind: tokNumber, text: text, pos: start, num: num})
		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i], pos: start})
		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		default:
			if i+1 < len(src) {
				if _, ok := twoCharOps[src[i:i+2]]; ok {
					toks = append(toks, token{kind: tokOp, text: src[i : i+2], pos: i})
					i += 2
					continue
				}
			}
			switch c {
			case '+', '-', '*', '/', '<', '>':
				toks = append(toks, token{kind: tokOp, text: string(c), pos: i})
				i++
			default:
				r, _ := utf8.DecodeRuneInString(src[i:])
				return nil, syntaxErr(src, i, "unexpected character %q", r)
			}
		}
	}

	return append(toks, token{kind: tokEOF, pos: len(src)}), nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

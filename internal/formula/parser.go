package formula

import "fmt"

const (
	precOr = iota + 1
	precAnd
	precCompare
	precSum
	precProduct
)

type parser struct {
	src   string
	toks  []token
	i     int
	depth int
	vars  map[string]struct{}
}

func binaryPrec(t token) int {
	if t.kind != tokOp {
		return 0
	}
	switch t.text {
	case "||":
		return precOr
	case "&&":
		return precAnd
	case ">=", "<=", ">", "<", "==", "!=":
		return precCompare
	case "+", "-":
		return precSum
	case "*", "/":
		return precProduct
	}
	return 0
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

// parseExpr is a precedence climbing loop: it consumes operators binding at
// least as tightly as minPrec and recurses one level up for right operands,
// which makes every operator left associative.
func (p *parser) parseExpr(minPrec int) (node, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		op := p.peek()
		prec := binaryPrec(op)
		if prec == 0 || prec < minPrec {
			return lhs, nil
		}
		p.next()

		rhs, err := p.parseExpr(prec + 1)
		if err != nil {
			return nil, err
		}

		lhs, err = p.combine(op, lhs, rhs)
		if err != nil {
			return nil, err
		}

		if prec == precCompare && binaryPrec(p.peek()) == precCompare {
			return nil, syntaxErr(p.src, p.peek().pos, "comparisons cannot be chained, combine them with && or ||")
		}
	}
}

func (p *parser) parseUnary() (node, error) {
	t := p.peek()
	if t.kind != tokOp || (t.text != "-" && t.text != "+") {
		return p.parsePrimary()
	}
	p.next()

	if err := p.enter(t.pos); err != nil {
		return nil, err
	}
	x, err := p.parseUnary()
	p.depth--
	if err != nil {
		return nil, err
	}

	if x.kind() != KindNumber {
		return nil, p.mismatch(t, "unary %s needs a numeric operand", t.text)
	}
	if t.text == "+" {
		return x, nil
	}
	return &negate{at: t.pos, x: x}, nil
}

func (p *parser) parsePrimary() (node, error) {
	t := p.next()

	switch t.kind {
	case tokNumber:
		return &numberLit{at: t.pos, val: t.num}, nil
	case tokIdent:
		if _, ok := p.vars[t.text]; !ok {
			return nil, &SemanticError{Formula: p.src, Pos: t.pos, Kind: ErrUnknownIdentifier, Name: t.text}
		}
		return &variable{at: t.pos, name: t.text}, nil
	case tokLParen:
		if err := p.enter(t.pos); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr(precOr)
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, syntaxErr(p.src, closing.pos, "expected \")\" to close \"(\" at position %d, found %s", t.pos, closing.describe())
		}
		p.depth--
		return inner, nil
	case tokEOF:
		return nil, syntaxErr(p.src, t.pos, "unexpected end of formula, expected a number, a variable or \"(\"")
	default:
		return nil, syntaxErr(p.src, t.pos, "unexpected %s, expected a number, a variable or \"(\"", t.describe())
	}
}

func (p *parser) enter(pos int) error {
	p.depth++
	if p.depth > MaxDepth {
		return syntaxErr(p.src, pos, "formula is nested deeper than %d levels", MaxDepth)
	}
	return nil
}

func (p *parser) combine(op token, l, r node) (node, error) {
	n := &binary{at: op.pos, op: op.text, l: l, r: r}

	switch op.text {
	case "+", "-", "*", "/":
		if l.kind() != KindNumber || r.kind() != KindNumber {
			return nil, p.mismatch(op, "operator %s needs numeric operands, got %s and %s", op.text, l.kind(), r.kind())
		}
		n.k = KindNumber
	case ">=", "<=", ">", "<":
		if l.kind() != KindNumber || r.kind() != KindNumber {
			return nil, p.mismatch(op, "operator %s needs numeric operands, got %s and %s", op.text, l.kind(), r.kind())
		}
		n.k = KindBool
	case "==", "!=":
		if l.kind() != r.kind() {
			return nil, p.mismatch(op, "operator %s compares %s with %s", op.text, l.kind(), r.kind())
		}
		n.k = KindBool
	case "&&", "||":
		if l.kind() != KindBool || r.kind() != KindBool {
			return nil, p.mismatch(op, "operator %s needs boolean operands, got %s and %s", op.text, l.kind(), r.kind())
		}
		n.k = KindBool
	}

	return n, nil
}

func (p *parser) mismatch(t token, format string, args ...any) error {
	return &SemanticError{Formula: p.src, Pos: t.pos, Kind: ErrTypeMismatch, Msg: fmt.Sprintf(format, args...)}
}

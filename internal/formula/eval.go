package formula

type evaluator struct {
	src  string
	vars Vars
}

func (e *evaluator) eval(n node) (Value, error) {
	switch n := n.(type) {
	case *numberLit:
		return NumberValue(n.val), nil
	case *variable:
		v, ok := e.vars[n.name]
		if !ok {
			return Value{}, &SemanticError{Formula: e.src, Pos: n.at, Kind: ErrUnboundVariable, Name: n.name}
		}
		return NumberValue(v), nil
	case *negate:
		x, err := e.number(n.x)
		if err != nil {
			return Value{}, err
		}
		return NumberValue(-x), nil
	case *binary:
		return e.binary(n)
	}
	return Value{}, &SemanticError{Formula: e.src, Pos: n.pos(), Kind: ErrTypeMismatch, Msg: "unsupported expression"}
}

func (e *evaluator) binary(n *binary) (Value, error) {
	switch n.op {
	case "&&", "||":
		l, err := e.boolean(n.l)
		if err != nil {
			return Value{}, err
		}
		if (n.op == "&&" && !l) || (n.op == "||" && l) {
			return BoolValue(l), nil
		}
		r, err := e.boolean(n.r)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(r), nil
	case "==", "!=":
		if n.l.kind() == KindBool {
			l, err := e.boolean(n.l)
			if err != nil {
				return Value{}, err
			}
			r, err := e.boolean(n.r)
			if err != nil {
				return Value{}, err
			}
			return BoolValue((l == r) == (n.op == "==")), nil
		}
	}

	l, err := e.number(n.l)
	if err != nil {
		return Value{}, err
	}
	r, err := e.number(n.r)
	if err != nil {
		return Value{}, err
	}

	switch n.op {
	case "+":
		return NumberValue(l + r), nil
	case "-":
		return NumberValue(l - r), nil
	case "*":
		return NumberValue(l * r), nil
	case "/":
		if r == 0 {
			return Value{}, &SemanticError{Formula: e.src, Pos: n.at, Kind: ErrDivisionByZero}
		}
		return NumberValue(l / r), nil
	case ">=":
		return BoolValue(l >= r), nil
	case "<=":
		return BoolValue(l <= r), nil
	case ">":
		return BoolValue(l > r), nil
	case "<":
		return BoolValue(l < r), nil
	case "==":
		return BoolValue(l == r), nil
	case "!=":
		return BoolValue(l != r), nil
	}

	return Value{}, &SemanticError{Formula: e.src, Pos: n.at, Kind: ErrTypeMismatch, Msg: "unsupported operator " + n.op}
}

func (e *evaluator) number(n node) (float64, error) {
	v, err := e.eval(n)
	if err != nil {
		return 0, err
	}
	f, ok := v.Number()
	if !ok {
		return 0, &SemanticError{Formula: e.src, Pos: n.pos(), Kind: ErrTypeMismatch, Msg: "expected a number"}
	}
	return f, nil
}

func (e *evaluator) boolean(n node) (bool, error) {
	v, err := e.eval(n)
	if err != nil {
		return false, err
	}
	b, ok := v.Bool()
	if !ok {
		return false, &SemanticError{Formula: e.src, Pos: n.pos(), Kind: ErrTypeMismatch, Msg: "expected a boolean"}
	}
	return b, nil
}

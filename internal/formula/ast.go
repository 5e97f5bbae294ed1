package formula

import "strconv"

// Kind is the static type of an expression.
type Kind int

const (
	KindNumber Kind = iota + 1
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	default:
		return "unknown"
	}
}

// Value is the result of evaluating a formula.
type Value struct {
	kind Kind
	num  float64
	b    bool
}

// NumberValue wraps a number.
func NumberValue(f float64) Value { return Value{kind: KindNumber, num: f} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind reports which type v holds.
func (v Value) Kind() Kind { return v.kind }

// Number returns the numeric value and whether v holds a number.
func (v Value) Number() (float64, bool) { return v.num, v.kind == KindNumber }

// Bool returns the boolean value and whether v holds a boolean.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return "<invalid>"
	}
}

type node interface {
	kind() Kind
	pos() int
}

type numberLit struct {
	at  int
	val float64
}

type variable struct {
	at   int
	name string
}

type negate struct {
	at int
	x  node
}

type binary struct {
	at   int
	op   string
	l, r node
	k    Kind
}

func (n *numberLit) kind() Kind { return KindNumber }
func (n *numberLit) pos() int   { return n.at }
func (n *variable) kind() Kind  { return KindNumber }
func (n *variable) pos() int    { return n.at }
func (n *negate) kind() Kind    { return KindNumber }
func (n *negate) pos() int      { return n.at }
func (n *binary) kind() Kind    { return n.k }
func (n *binary) pos() int      { return n.at }

// Package formula implements the restricted expression language used to
// configure technical evaluations.
//
// A formula is an arithmetic expression over decimal literals and a fixed set
// of variables, optionally combined with comparisons and logical operators:
//
//	nota * 20 / 30
//	notaParcial >= 13 && notaParcial <= 20
//
// Supported operators, from lowest to highest precedence: || ; && ;
// >= <= > < == != (non-associative) ; + - ; * / ; unary - +. Parentheses
// group. Nothing else is accepted: there are no function calls, no string
// literals and no assignment, so evaluating a stored formula can never run
// arbitrary code.
package formula

import (
	"strings"
)

const (
	// GrammarVersion identifies the language accepted by Compile. Stored
	// formulas written for this version stay valid as long as it is unchanged.
	GrammarVersion = 1
	// MaxLength bounds the accepted source size in bytes.
	MaxLength = 1024
	// MaxDepth bounds parenthesis and unary operator nesting.
	MaxDepth = 64
)

// Vars binds variable names to values for a single evaluation.
type Vars map[string]float64

// Program is a parsed and type-checked formula. It is immutable and may be
// evaluated concurrently.
type Program struct {
	src  string
	root node
	vars []string
}

// Compile parses src and resolves every identifier against vars. Identifiers
// outside vars are reported as ErrUnknownIdentifier.
func Compile(src string, vars ...string) (*Program, error) {
	if strings.TrimSpace(src) == "" {
		return nil, syntaxErr(src, 0, "formula is empty")
	}
	if len(src) > MaxLength {
		return nil, syntaxErr(src[:32]+"...", MaxLength, "formula is longer than %d bytes", MaxLength)
	}

	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}

	p := &parser{
		src:  src,
		toks: toks,
		vars: make(map[string]struct{}, len(vars)),
	}
	for _, v := range vars {
		p.vars[v] = struct{}{}
	}

	root, err := p.parseExpr(precOr)
	if err != nil {
		return nil, err
	}

	if t := p.peek(); t.kind != tokEOF {
		return nil, syntaxErr(src, t.pos, "unexpected %s after end of expression", t.describe())
	}

	return &Program{
		src:  src,
		root: root,
		vars: append([]string(nil), vars...),
	}, nil
}

// Source returns the formula text the program was compiled from.
func (p *Program) Source() string { return p.src }

// Kind returns the static result type of the program.
func (p *Program) Kind() Kind { return p.root.kind() }

// Vars returns the variable names the program may reference.
func (p *Program) Vars() []string { return append([]string(nil), p.vars...) }

// Eval evaluates the program with the given bindings.
func (p *Program) Eval(bindings Vars) (Value, error) {
	e := &evaluator{src: p.src, vars: bindings}
	return e.eval(p.root)
}

// Eval compiles and evaluates src in one step. The bound names are the only
// identifiers src may reference.
func Eval(src string, bindings Vars) (Value, error) {
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}

	prog, err := Compile(src, names...)
	if err != nil {
		return Value{}, err
	}
	return prog.Eval(bindings)
}

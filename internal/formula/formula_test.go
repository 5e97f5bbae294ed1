package formula

import (
	"errors"
	"strings"
	"testing"
)

func TestEvalArithmetic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		src    string
		vars   Vars
		expect float64
	}{
		{name: "rescale", src: "nota * 20 / 30", vars: Vars{"nota": 15}, expect: 10},
		{name: "precedence", src: "1 + 2 * 3", expect: 7},
		{name: "parentheses", src: "(1 + 2) * 3", expect: 9},
		{name: "subtraction is left associative", src: "8 - 3 - 2", expect: 3},
		{name: "division is left associative", src: "16 / 4 / 2", expect: 2},
		{name: "fractional division", src: "10 / 4", expect: 2.5},
		{name: "unary minus", src: "-nota + 30", vars: Vars{"nota": 10}, expect: 20},
		{name: "double negation", src: "2 - -3", expect: 5},
		{name: "unary plus", src: "+nota", vars: Vars{"nota": 4}, expect: 4},
		{name: "leading dot literal", src: ".5 * nota", vars: Vars{"nota": 8}, expect: 4},
		{name: "whitespace is ignored", src: "\tnota\n*\r2 ", vars: Vars{"nota": 3}, expect: 6},
		{name: "nested groups", src: "((nota))*(2+(1))", vars: Vars{"nota": 2}, expect: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v, err := Eval(tt.src, tt.vars)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got, ok := v.Number()
			if !ok {
				t.Fatalf("expected a number, got %s", v.Kind())
			}
			if got != tt.expect {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestEvalBoolean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		src    string
		value  float64
		expect bool
	}{
		{name: "inclusive boundary", src: "notaParcial >= 13", value: 13, expect: true},
		{name: "below boundary", src: "notaParcial >= 13", value: 12.99, expect: false},
		{name: "strict greater", src: "notaParcial > 13", value: 13, expect: false},
		{name: "less or equal", src: "notaParcial <= 10", value: 10, expect: true},
		{name: "less", src: "notaParcial < 10", value: 10, expect: false},
		{name: "equality", src: "notaParcial == 20", value: 20, expect: true},
		{name: "inequality", src: "notaParcial != 20", value: 20, expect: false},
		{name: "and", src: "notaParcial >= 13 && notaParcial <= 20", value: 15, expect: true},
		{name: "or", src: "notaParcial < 5 || notaParcial > 18", value: 19, expect: true},
		{name: "and binds tighter than or", src: "notaParcial > 100 && notaParcial > 0 || notaParcial > 1", value: 2, expect: true},
		{name: "arithmetic inside comparison", src: "notaParcial * 0.3 >= 4", value: 15, expect: true},
		{name: "boolean equality", src: "(notaParcial > 1) == (notaParcial > 2)", value: 1.5, expect: false},
		{name: "or short-circuits", src: "notaParcial > 0 || notaParcial / 0 > 1", value: 1, expect: true},
		{name: "and short-circuits", src: "notaParcial < 0 && notaParcial / 0 > 1", value: 1, expect: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v, err := Eval(tt.src, Vars{"notaParcial": tt.value})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got, ok := v.Bool()
			if !ok {
				t.Fatalf("expected a boolean, got %s", v.Kind())
			}
			if got != tt.expect {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestCompileSyntaxErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		pos  int
		msg  string
	}{
		{name: "missing operand", src: "nota * / 30", pos: 7, msg: "unexpected \"/\""},
		{name: "empty", src: "   ", pos: 0, msg: "formula is empty"},
		{name: "unsupported character", src: "nota ^ 2", pos: 5, msg: "unexpected character"},
		{name: "single equals", src: "nota = 3", pos: 5, msg: "unexpected character"},
		{name: "lone bang", src: "!nota", pos: 0, msg: "unexpected character"},
		{name: "malformed number", src: "1. + nota", pos: 0, msg: "malformed number"},
		{name: "trailing tokens", src: "nota nota", pos: 5, msg: "after end of expression"},
		{name: "unclosed parenthesis", src: "(nota + 1", pos: 9, msg: "expected \")\""},
		{name: "stray closing parenthesis", src: "nota + 1)", pos: 8, msg: "after end of expression"},
		{name: "dangling operator", src: "nota +", pos: 6, msg: "unexpected end of formula"},
		{name: "chained comparison", src: "1 < nota < 3", pos: 9, msg: "cannot be chained"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Compile(tt.src, "nota")
			if err == nil {
				t.Fatalf("expected an error for %q", tt.src)
			}

			var syntaxErr *SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Fatalf("expected *SyntaxError, got %T: %v", err, err)
			}
			if !errors.Is(err, ErrSyntax) {
				t.Fatalf("expected error to wrap ErrSyntax")
			}
			if syntaxErr.Pos != tt.pos {
				t.Fatalf("expected position %d, got %d (%v)", tt.pos, syntaxErr.Pos, err)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Fatalf("expected %q in %q", tt.msg, err.Error())
			}
		})
	}
}

func TestCompileUnknownIdentifier(t *testing.T) {
	t.Parallel()

	_, err := Compile("nota * factor", "nota")

	var semErr *SemanticError
	if !errors.As(err, &semErr) {
		t.Fatalf("expected *SemanticError, got %T: %v", err, err)
	}
	if !errors.Is(err, ErrUnknownIdentifier) {
		t.Fatalf("expected ErrUnknownIdentifier, got %v", err)
	}
	if semErr.Name != "factor" || semErr.Pos != 7 {
		t.Fatalf("unexpected identifier details: %+v", semErr)
	}
	if !strings.Contains(err.Error(), "unknown identifier: factor") {
		t.Fatalf("unexpected message: %s", err)
	}
}

func TestCompileVariablesAreScoped(t *testing.T) {
	t.Parallel()

	// notaParcial is not a prefix match of nota: each formula only sees its own variable.
	if _, err := Compile("notaParcial * 2", "nota"); !errors.Is(err, ErrUnknownIdentifier) {
		t.Fatalf("expected notaParcial to be unknown, got %v", err)
	}
	if _, err := Compile("nota * 2", "notaParcial"); !errors.Is(err, ErrUnknownIdentifier) {
		t.Fatalf("expected nota to be unknown, got %v", err)
	}
}

func TestCompileTypeMismatch(t *testing.T) {
	t.Parallel()

	tests := []string{
		"nota + (nota > 1)",
		"nota && 1",
		"-(nota > 1)",
		"(nota > 1) >= 1",
		"nota == (nota > 1)",
	}

	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			t.Parallel()

			_, err := Compile(src, "nota")
			if !errors.Is(err, ErrTypeMismatch) {
				t.Fatalf("expected ErrTypeMismatch, got %v", err)
			}
		})
	}
}

func TestProgramKind(t *testing.T) {
	t.Parallel()

	num, err := Compile("nota * 2", "nota")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num.Kind() != KindNumber {
		t.Fatalf("expected number kind, got %s", num.Kind())
	}

	cond, err := Compile("nota >= 13", "nota")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cond.Kind() != KindBool {
		t.Fatalf("expected boolean kind, got %s", cond.Kind())
	}

	if cond.Source() != "nota >= 13" {
		t.Fatalf("unexpected source: %q", cond.Source())
	}
	if vars := cond.Vars(); len(vars) != 1 || vars[0] != "nota" {
		t.Fatalf("unexpected vars: %v", vars)
	}
}

func TestDivisionByZero(t *testing.T) {
	t.Parallel()

	prog, err := Compile("notaParcial / 0", "notaParcial")
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}

	_, err = prog.Eval(Vars{"notaParcial": 10})
	if !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected ErrDivisionByZero, got %v", err)
	}

	var semErr *SemanticError
	if !errors.As(err, &semErr) || semErr.Pos != 12 {
		t.Fatalf("expected division position 12, got %+v", semErr)
	}
}

func TestNumberOutOfRange(t *testing.T) {
	t.Parallel()

	_, err := Compile("nota + 1"+strings.Repeat("0", 400), "nota")
	if !errors.Is(err, ErrNumberOutOfRange) {
		t.Fatalf("expected ErrNumberOutOfRange, got %v", err)
	}
	if errors.Is(err, ErrSyntax) {
		t.Fatalf("expected a semantic error, got a syntax error: %v", err)
	}

	var semErr *SemanticError
	if !errors.As(err, &semErr) || semErr.Pos != 7 {
		t.Fatalf("expected literal position 7, got %+v", semErr)
	}
}

func TestUnboundVariable(t *testing.T) {
	t.Parallel()

	prog, err := Compile("nota + 1", "nota")
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}

	if _, err := prog.Eval(Vars{}); !errors.Is(err, ErrUnboundVariable) {
		t.Fatalf("expected ErrUnboundVariable, got %v", err)
	}
}

func TestNestingBound(t *testing.T) {
	t.Parallel()

	ok := strings.Repeat("(", MaxDepth) + "nota" + strings.Repeat(")", MaxDepth)
	if _, err := Compile(ok, "nota"); err != nil {
		t.Fatalf("expected %d levels to compile, got %v", MaxDepth, err)
	}

	deep := strings.Repeat("(", MaxDepth+1) + "nota" + strings.Repeat(")", MaxDepth+1)
	if _, err := Compile(deep, "nota"); !errors.Is(err, ErrSyntax) {
		t.Fatalf("expected nesting to be rejected, got %v", err)
	}

	minuses := strings.Repeat("-", MaxDepth+1) + "nota"
	if _, err := Compile(minuses, "nota"); !errors.Is(err, ErrSyntax) {
		t.Fatalf("expected unary chain to be rejected, got %v", err)
	}
}

func TestLengthBound(t *testing.T) {
	t.Parallel()

	long := "nota" + strings.Repeat(" + 1", MaxLength)
	_, err := Compile(long, "nota")
	if !errors.Is(err, ErrSyntax) {
		t.Fatalf("expected oversized formula to be rejected, got %v", err)
	}
}

func TestEvalIsDeterministic(t *testing.T) {
	t.Parallel()

	prog, err := Compile("nota * 20 / 30 + 0.1", "nota")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := prog.Eval(Vars{"nota": 17})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 100; i++ {
		again, err := prog.Eval(Vars{"nota": 17})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again != first {
			t.Fatalf("evaluation %d differs: %v vs %v", i, again, first)
		}
	}
}

package analyzer

import (
	"testing"
)

func TestASTAnalyzer_Inventory(t *testing.T) {
	metrics := NewASTAnalyzer().Analyze(parseSource(t, `
function top(a) {
  return a + 1;
}

class Greeter {
  greet(name) {
    return "hi " + name;
  }
  wave() {
    return "wave";
  }
}
`))

	// top, greet, wave.
	if len(metrics.Functions) != 3 {
		t.Errorf("functions = %d, want 3", len(metrics.Functions))
	}
	if len(metrics.Classes) != 1 {
		t.Fatalf("classes = %d, want 1", len(metrics.Classes))
	}
	if metrics.Classes[0].Name != "Greeter" {
		t.Errorf("class name = %q, want Greeter", metrics.Classes[0].Name)
	}
	if metrics.Classes[0].Methods != 2 {
		t.Errorf("class methods = %d, want 2", metrics.Classes[0].Methods)
	}
}

func TestASTAnalyzer_MaxDepth(t *testing.T) {
	tests := []struct {
		name string
		code string
		want int
	}{
		{"flat", "function f() { return 1; }", 0},
		{"one if", "function f(a) { if (a) { return 1; } }", 1},
		{
			"if in for",
			"function f(xs) { for (const x of xs) { if (x) { g(x); } } }",
			2,
		},
		{
			"sequential stays shallow",
			"function f(a, b) { if (a) { g(); } if (b) { g(); } }",
			1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := NewASTAnalyzer().Analyze(parseSource(t, tt.code))
			if metrics.MaxDepth != tt.want {
				t.Errorf("MaxDepth = %d, want %d", metrics.MaxDepth, tt.want)
			}
		})
	}
}

func TestASTAnalyzer_Literals(t *testing.T) {
	metrics := NewASTAnalyzer().Analyze(parseSource(t, `
const LIMIT = 300;

function f(x) {
  return x * 7;
}
`))

	if len(metrics.Literals) != 2 {
		t.Fatalf("literals = %d, want 2", len(metrics.Literals))
	}

	byValue := make(map[string]bool)
	for _, lit := range metrics.Literals {
		byValue[lit.Value] = lit.InDeclaration
	}
	if !byValue["300"] {
		t.Error("literal 300 initializes a declaration; InDeclaration should be true")
	}
	if byValue["7"] {
		t.Error("literal 7 appears in an expression; InDeclaration should be false")
	}
}

func TestASTAnalyzer_References(t *testing.T) {
	metrics := NewASTAnalyzer().Analyze(parseSource(t, `
const known = 1;

function f() {
  return known + later() + mystery;
}

function later() {
  return 2;
}
`))

	// known and later resolve (later via hoisting); mystery does not.
	if metrics.ResolvedRefs < 2 {
		t.Errorf("ResolvedRefs = %d, want >= 2", metrics.ResolvedRefs)
	}
	if metrics.UnresolvedRefs != 1 {
		t.Errorf("UnresolvedRefs = %d, want 1", metrics.UnresolvedRefs)
	}
}

func TestASTAnalyzer_StructuralHash(t *testing.T) {
	metrics := NewASTAnalyzer().Analyze(parseSource(t, `
function first(a) {
  const x = a + 1;
  const y = x * 2;
  return y;
}

function second(b) {
  const p = b + 9;
  const q = p * 9;
  return q;
}

function different(c) {
  if (c) {
    return 1;
  }
  return 0;
}
`))

	if len(metrics.Functions) != 3 {
		t.Fatalf("functions = %d, want 3", len(metrics.Functions))
	}

	byName := make(map[string]uint64)
	for _, fn := range metrics.Functions {
		byName[fn.Name] = fn.StructuralHash
	}

	if byName["first"] != byName["second"] {
		t.Error("identically shaped bodies should share a structural hash")
	}
	if byName["first"] == byName["different"] {
		t.Error("differently shaped bodies should not share a structural hash")
	}
}

func TestASTAnalyzer_FunctionBodyLines(t *testing.T) {
	metrics := NewASTAnalyzer().Analyze(parseSource(t, `function f() {
  g();
  h();
}`))

	if len(metrics.Functions) != 1 {
		t.Fatalf("functions = %d, want 1", len(metrics.Functions))
	}
	if metrics.Functions[0].BodyLines != 4 {
		t.Errorf("BodyLines = %d, want 4", metrics.Functions[0].BodyLines)
	}
}

package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"app.js", LangJavaScript},
		{"util.mjs", LangJavaScript},
		{"legacy.cjs", LangJavaScript},
		{"server.ts", LangTypeScript},
		{"types.mts", LangTypeScript},
		{"Widget.tsx", LangTSX},
		{"Widget.jsx", LangTSX},
		{"INDEX.JS", LangJavaScript},
		{"style.css", LangUnknown},
		{"main.go", LangUnknown},
		{"noext", LangUnknown},
	}

	for _, tt := range tests {
		if got := DetectLanguage(tt.path); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestParse_Valid(t *testing.T) {
	p := New()
	defer p.Close()

	tests := []struct {
		name string
		lang Language
		code string
	}{
		{"javascript function", LangJavaScript, "function add(a, b) { return a + b; }"},
		{"typescript annotation", LangTypeScript, "const n: number = 1;"},
		{"tsx element", LangTSX, "const el = <div>hello</div>;"},
		{"empty file", LangJavaScript, ""},
		{"only comments", LangJavaScript, "// nothing here\n/* still nothing */\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Parse([]byte(tt.code), tt.lang, "test."+string(tt.lang))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			defer result.Close()

			if result.Tree.RootNode().Type() != "program" {
				t.Errorf("root node = %q, want program", result.Tree.RootNode().Type())
			}
		})
	}
}

func TestParse_BOM(t *testing.T) {
	p := New()
	defer p.Close()

	code := append([]byte{0xEF, 0xBB, 0xBF}, []byte("const x = 1;")...)
	result, err := p.Parse(code, LangJavaScript, "bom.js")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	defer result.Close()

	if result.Tree.RootNode().HasError() {
		t.Error("BOM-prefixed source should parse cleanly")
	}
}

func TestParse_SyntaxError(t *testing.T) {
	p := New()
	defer p.Close()

	_, err := p.Parse([]byte("function broken( {\n  return 1;\n"), LangJavaScript, "broken.js")
	if err == nil {
		t.Fatal("Parse() expected error for invalid syntax")
	}

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error type = %T, want *ParseError", err)
	}
	if perr.Path != "broken.js" {
		t.Errorf("ParseError.Path = %q, want broken.js", perr.Path)
	}
	if perr.Line == 0 {
		t.Error("ParseError.Line should be 1-based, got 0")
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.ts")
	if err := os.WriteFile(path, []byte("export const x = 42;\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := New()
	defer p.Close()

	result, err := p.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	defer result.Close()

	if result.Language != LangTypeScript {
		t.Errorf("Language = %v, want %v", result.Language, LangTypeScript)
	}
}

func TestParseFile_UnsupportedLanguage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	if err := os.WriteFile(path, []byte("package main\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := New()
	defer p.Close()

	if _, err := p.ParseFile(path); err == nil {
		t.Error("ParseFile() expected error for unsupported language")
	}
}

func TestGetFunctions(t *testing.T) {
	p := New()
	defer p.Close()

	code := `
function declared() { return 1; }
const arrow = () => 2;
const obj = { method() { return 3; } };
class C {
  method() { return 4; }
}
`
	result, err := p.Parse([]byte(code), LangJavaScript, "fns.js")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	defer result.Close()

	functions := GetFunctions(result)
	if len(functions) != 4 {
		t.Fatalf("GetFunctions() returned %d functions, want 4", len(functions))
	}

	names := make(map[string]bool)
	for _, fn := range functions {
		names[fn.Name] = true
	}
	for _, want := range []string{"declared", "arrow", "method"} {
		if !names[want] {
			t.Errorf("missing function %q in %v", want, names)
		}
	}
}

func TestGetClasses(t *testing.T) {
	p := New()
	defer p.Close()

	result, err := p.Parse([]byte("class Cart { add() {} remove() {} }"), LangJavaScript, "cart.js")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	defer result.Close()

	classes := GetClasses(result)
	if len(classes) != 1 {
		t.Fatalf("GetClasses() returned %d classes, want 1", len(classes))
	}
	if classes[0].Name != "Cart" {
		t.Errorf("class name = %q, want Cart", classes[0].Name)
	}
}

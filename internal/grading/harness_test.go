package grading

import (
	"errors"
	"strings"
	"testing"
)

func TestHarnessForKnownLanguages(t *testing.T) {
	cases := []struct {
		language string
		version  string
		fileName string
	}{
		{"javascript", "18.15.0", "main.js"},
		{"python", "3.10.0", "main.py"},
		{"c", "10.2.0", "main.c"},
		{"cpp", "10.2.0", "main.cpp"},
		{"java", "15.0.2", "Main.java"},
	}

	for _, tc := range cases {
		h := HarnessFor(tc.language)
		if h.Version != tc.version {
			t.Errorf("%s: version %q, want %q", tc.language, h.Version, tc.version)
		}
		if h.FileName != tc.fileName {
			t.Errorf("%s: filename %q, want %q", tc.language, h.FileName, tc.fileName)
		}
	}
}

func TestHarnessForUnknownFallsBackToJavascript(t *testing.T) {
	h := HarnessFor("brainfuck")
	if h.Language != "javascript" {
		t.Errorf("got %q, want javascript fallback", h.Language)
	}
}

func TestLookupHarnessRejectsUnknown(t *testing.T) {
	if _, err := LookupHarness("brainfuck"); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("got %v, want ErrUnsupportedLanguage", err)
	}
}

func TestRenderEmbedsCodeAndQuotedInput(t *testing.T) {
	h := HarnessFor("python")
	src := h.Render("def solve(x):\n    return x", `line "with quotes"`)

	if !strings.Contains(src, "def solve(x):") {
		t.Error("rendered source is missing the submitted code")
	}
	// The input must arrive as a quoted literal, quotes escaped.
	if !strings.Contains(src, `"line \"with quotes\""`) {
		t.Errorf("input not quoted correctly:\n%s", src)
	}
	if !strings.Contains(src, "print(str(solve(") {
		t.Error("driver call missing")
	}
}

func TestRenderJavaDriverUsesSeparateClass(t *testing.T) {
	h := HarnessFor("java")
	src := h.Render("class Main { static String solve(String s){ return s; } }", "in")

	if !strings.Contains(src, "class Runner") {
		t.Error("java driver should live in its own class")
	}
	if !strings.Contains(src, "Main.solve(") {
		t.Error("java driver should call Main.solve")
	}
}

func TestSupportedLanguagesComplete(t *testing.T) {
	langs := SupportedLanguages()
	if len(langs) != 5 {
		t.Fatalf("got %d languages, want 5: %v", len(langs), langs)
	}
	seen := map[string]bool{}
	for _, l := range langs {
		seen[l] = true
	}
	for _, want := range []string{"javascript", "python", "c", "cpp", "java"} {
		if !seen[want] {
			t.Errorf("missing language %q", want)
		}
	}
}

package grading

import (
	"errors"
	"strconv"
)

// ErrUnsupportedLanguage is returned when no harness exists for a language.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Harness describes how to run submitted code for one language: the
// gateway language id and version, the source filename, and a template
// that wraps the student's code with a driver calling its `solve` entry
// point and printing the result for one test-case input.
//
// New languages are new table entries, not edits to shared grading code.
type Harness struct {
	Language string
	Version  string
	FileName string
	Render   func(code, input string) string
}

var harnesses = map[string]Harness{
	"javascript": {
		Language: "javascript",
		Version:  "18.15.0",
		FileName: "main.js",
		Render: func(code, input string) string {
			return code + "\nconsole.log(String(solve(" + strconv.Quote(input) + ")))"
		},
	},
	"python": {
		Language: "python",
		Version:  "3.10.0",
		FileName: "main.py",
		Render: func(code, input string) string {
			return code + "\nprint(str(solve(" + strconv.Quote(input) + ")))"
		},
	},
	"c": {
		Language: "c",
		Version:  "10.2.0",
		FileName: "main.c",
		Render: func(code, input string) string {
			return "#include <stdio.h>\n" + code +
				"\nint main(){ printf(\"%s\", solve(" + strconv.Quote(input) + ")); return 0; }"
		},
	},
	"cpp": {
		Language: "cpp",
		Version:  "10.2.0",
		FileName: "main.cpp",
		Render: func(code, input string) string {
			return "#include <bits/stdc++.h>\nusing namespace std;\n" + code +
				"\nint main(){ cout<<solve(" + strconv.Quote(input) + "); return 0; }"
		},
	},
	"java": {
		Language: "java",
		Version:  "15.0.2",
		FileName: "Main.java",
		Render: func(code, input string) string {
			return code + "\nclass Runner{ public static void main(String[] args){ System.out.print(Main.solve(" +
				strconv.Quote(input) + ")); } }"
		},
	},
}

// HarnessFor returns the harness for a language slug, falling back to
// javascript for unknown slugs the way the exam UI defaults do.
func HarnessFor(language string) Harness {
	if h, ok := harnesses[language]; ok {
		return h
	}
	return harnesses["javascript"]
}

// LookupHarness returns the harness for a language slug, or
// ErrUnsupportedLanguage. Used by the interactive run endpoint, which
// surfaces bad languages instead of silently defaulting.
func LookupHarness(language string) (Harness, error) {
	h, ok := harnesses[language]
	if !ok {
		return Harness{}, ErrUnsupportedLanguage
	}
	return h, nil
}

// SupportedLanguages lists the language slugs with a registered harness.
func SupportedLanguages() []string {
	out := make([]string, 0, len(harnesses))
	for k := range harnesses {
		out = append(out, k)
	}
	return out
}

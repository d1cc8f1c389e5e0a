package lang

import (
	"testing"

	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		content  string
		expected models.Language
	}{
		{"Python extension", "script.py", "", models.LangPython},
		{"Go extension", "main.go", "", models.LangGo},
		{"Java extension", "Main.java", "", models.LangJava},
		{"Uppercase extension", "SCRIPT.PY", "", models.LangPython},
		{"JavaScript extension", "app.js", "", models.Language("javascript")},
		{"Empty path", "", "package main", models.LangUnknown},
		{"Go content sniff", "target", "package main\n\nimport (\n\t\"os\"\n)\n", models.LangGo},
		{"Java content sniff", "Target", "package com.example;\nimport java.util.List;\n", models.LangJava},
		{"Python shebang sniff", "run", "#!/usr/bin/env python\nprint('hi')\n", models.LangPython},
		{"Python def sniff", "run", "def main():\n    pass\n", models.LangPython},
		{"Unknown content", "data", "just some text\n", models.LangUnknown},
		{"No extension no content", "blob", "", models.LangUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.path, []byte(tt.content)); got != tt.expected {
				t.Errorf("Detect(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}

func TestSupportedExtension(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"script.py", true},
		{"cmd/main.go", true},
		{"Main.java", true},
		{"app.js", false}, // identified but not analyzable
		{"notes.txt", false},
		{"Makefile", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := SupportedExtension(tt.path); got != tt.expected {
				t.Errorf("SupportedExtension(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}

func TestIsSupported(t *testing.T) {
	tests := []struct {
		lang     models.Language
		expected bool
	}{
		{models.LangPython, true},
		{models.LangGo, true},
		{models.LangJava, true},
		{models.Language("javascript"), false},
		{models.LangUnknown, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.lang), func(t *testing.T) {
			if got := tt.lang.IsSupported(); got != tt.expected {
				t.Errorf("IsSupported(%q) = %v, want %v", tt.lang, got, tt.expected)
			}
		})
	}
}

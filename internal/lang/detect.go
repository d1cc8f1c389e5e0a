// Package lang detects the programming language of a source unit from
// its file extension, falling back to content sniffing for files
// without a recognized extension.
package lang

import (
	"path/filepath"
	"strings"

	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

// extensionMap maps lowercase file extensions to languages. Languages
// outside the supported set are still identified so callers can report
// them as unsupported rather than unknown.
var extensionMap = map[string]models.Language{
	".py":   models.LangPython,
	".go":   models.LangGo,
	".java": models.LangJava,
	".js":   models.Language("javascript"),
	".ts":   models.Language("typescript"),
	".cpp":  models.Language("cpp"),
	".c":    models.Language("c"),
	".cs":   models.Language("csharp"),
	".rb":   models.Language("ruby"),
	".php":  models.Language("php"),
}

// Detect identifies the language of a file from its path and, when the
// extension is unknown, the first lines of its content.
func Detect(path string, content []byte) models.Language {
	if path == "" {
		return models.LangUnknown
	}

	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := extensionMap[ext]; ok {
		return lang
	}

	return sniff(content)
}

// SupportedExtension reports whether the path's extension maps to a
// language the analysis engines handle. Used to pre-filter candidates
// before reading file contents.
func SupportedExtension(path string) bool {
	lang, ok := extensionMap[strings.ToLower(filepath.Ext(path))]
	return ok && lang.IsSupported()
}

// sniff inspects the first five lines of content for language markers
func sniff(content []byte) models.Language {
	if len(content) == 0 {
		return models.LangUnknown
	}

	lines := strings.SplitN(string(content), "\n", 6)
	if len(lines) > 5 {
		lines = lines[:5]
	}
	head := strings.Join(lines, "\n")

	switch {
	case strings.Contains(head, "package main") || strings.Contains(head, "import ("):
		return models.LangGo
	case strings.Contains(head, "package ") && strings.Contains(head, "import "):
		return models.LangJava
	case strings.Contains(head, "#!/usr/bin/env python") || strings.Contains(head, "def "):
		return models.LangPython
	}

	return models.LangUnknown
}

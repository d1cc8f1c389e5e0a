package parser

import (
	"regexp"
	"strings"

	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

var (
	javaPackageRe = regexp.MustCompile(`^package\s+([\w.]+);`)
	javaImportRe  = regexp.MustCompile(`^import\s+(?:static\s+)?([\w.*]+);`)
	javaClassRe   = regexp.MustCompile(`^(?:public\s+|private\s+|protected\s+)?(?:abstract\s+|final\s+)?class\s+(\w+)`)
	javaMethodRe  = regexp.MustCompile(`^(?:public|private|protected|static|\s)*\s*(?:[\w<>\[\]]+\s+)?(\w+)\s*\([^)]*\)\s*(?:throws\s+[\w\s,]+)?\s*\{`)
	javaFieldRe   = regexp.MustCompile(`^(?:public|private|protected|static|\s)*\s*([\w<>\[\]]+)\s+(\w+)\s*[=;]`)
	javaClassLine = regexp.MustCompile(`^\s*class\s+`)
)

// BuildJavaModel extracts a lexical inventory of a Java source unit.
// Like the Go model this is an approximation sufficient for reporting.
func BuildJavaModel(source []byte) *models.SourceModel {
	model := &models.SourceModel{
		Language: models.LangJava,
		ParseOK:  true,
	}

	lines := strings.Split(string(source), "\n")

	// Package name
	for _, line := range lines {
		if m := javaPackageRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			model.Package = m[1]
			break
		}
	}

	// Imports
	for i, line := range lines {
		if m := javaImportRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			model.Imports = append(model.Imports, models.ImportRecord{Path: m[1], Line: i + 1})
		}
	}

	// Classes with brace-counted end lines
	classNames := make(map[string]bool)
	for i, line := range lines {
		if m := javaClassRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			classNames[m[1]] = true
			model.Classes = append(model.Classes, models.Symbol{
				Name:    m[1],
				Kind:    models.SymbolClass,
				Line:    i + 1,
				EndLine: blockEndLine(lines, i),
			})
		}
	}

	// Methods; constructors (same name as a class) are skipped
	for i, line := range lines {
		if javaClassLine.MatchString(line) {
			continue
		}
		if m := javaMethodRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			name := m[1]
			if classNames[name] {
				continue
			}
			model.Functions = append(model.Functions, models.Symbol{
				Name: name,
				Kind: models.SymbolMethod,
				Line: i + 1,
			})
		}
	}

	// Field declarations
	for i, line := range lines {
		if m := javaFieldRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			model.Variables = append(model.Variables, models.Symbol{
				Name: m[2],
				Kind: models.SymbolVariable,
				Line: i + 1,
			})
		}
	}

	return model
}

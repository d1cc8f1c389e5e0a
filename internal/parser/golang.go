package parser

import (
	"regexp"
	"strings"

	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

var (
	goPackageRe    = regexp.MustCompile(`^package\s+(\w+)`)
	goImportLineRe = regexp.MustCompile(`^import\s+"[^"]+"`)
	goQuotedRe     = regexp.MustCompile(`"([^"]+)"`)
	goFuncRe       = regexp.MustCompile(`^func\s+(\w+)\s*\([^)]*\)\s*(?:\([^)]*\))?\s*(?:\w+)?\s*\{`)
	goMethodRe     = regexp.MustCompile(`^func\s+\(\s*\w+\s+\*?(\w+)\s*\)\s+(\w+)\s*\(`)
	goVarRe        = regexp.MustCompile(`^var\s+(\w+)\s+`)
	goShortVarRe   = regexp.MustCompile(`^(\w+)\s*:=\s*`)
)

// BuildGoModel extracts a lexical inventory of a Go source unit. This
// is intentionally an approximation: the model only needs names, lines
// and imports, not a faithful syntax tree.
func BuildGoModel(source []byte) *models.SourceModel {
	model := &models.SourceModel{
		Language: models.LangGo,
		ParseOK:  true,
	}

	lines := strings.Split(string(source), "\n")

	// Package name
	for _, line := range lines {
		if m := goPackageRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			model.Package = m[1]
			break
		}
	}

	// Imports: single-line and block form
	inBlock := false
	for i, line := range lines {
		stripped := strings.TrimSpace(line)

		if goImportLineRe.MatchString(stripped) {
			if m := goQuotedRe.FindStringSubmatch(stripped); m != nil {
				model.Imports = append(model.Imports, models.ImportRecord{Path: m[1], Line: i + 1})
			}
			continue
		}

		if stripped == "import (" {
			inBlock = true
			continue
		}
		if inBlock {
			if stripped == ")" {
				inBlock = false
				continue
			}
			if m := goQuotedRe.FindStringSubmatch(stripped); m != nil {
				model.Imports = append(model.Imports, models.ImportRecord{Path: m[1], Line: i + 1})
			}
		}
	}

	// Functions and methods with brace-counted end lines
	for i, line := range lines {
		stripped := strings.TrimSpace(line)

		if m := goFuncRe.FindStringSubmatch(stripped); m != nil {
			model.Functions = append(model.Functions, models.Symbol{
				Name:    m[1],
				Kind:    models.SymbolFunction,
				Line:    i + 1,
				EndLine: blockEndLine(lines, i),
			})
			continue
		}
		if m := goMethodRe.FindStringSubmatch(stripped); m != nil {
			model.Functions = append(model.Functions, models.Symbol{
				Name:      m[2],
				Kind:      models.SymbolMethod,
				ClassName: m[1],
				Line:      i + 1,
				EndLine:   blockEndLine(lines, i),
			})
		}
	}

	// Variable declarations
	for i, line := range lines {
		stripped := strings.TrimSpace(line)
		if m := goVarRe.FindStringSubmatch(stripped); m != nil {
			model.Variables = append(model.Variables, models.Symbol{
				Name: m[1],
				Kind: models.SymbolVariable,
				Line: i + 1,
			})
			continue
		}
		if m := goShortVarRe.FindStringSubmatch(stripped); m != nil {
			model.Variables = append(model.Variables, models.Symbol{
				Name: m[1],
				Kind: models.SymbolVariable,
				Line: i + 1,
			})
		}
	}

	return model
}

// blockEndLine counts braces from the declaration line until the block
// closes. Returns the declaration line when no closing brace is found.
func blockEndLine(lines []string, start int) int {
	count := strings.Count(lines[start], "{") - strings.Count(lines[start], "}")
	if count <= 0 {
		return start + 1
	}
	for j := start + 1; j < len(lines); j++ {
		count += strings.Count(lines[j], "{") - strings.Count(lines[j], "}")
		if count == 0 {
			return j + 1
		}
	}
	return start + 1
}

package cfg

import (
	"regexp"
	"strings"

	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

// bracePattern binds a structure kind to the line shape that opens it.
type bracePattern struct {
	kind string
	re   *regexp.Regexp
}

var goPatterns = []bracePattern{
	{"if", regexp.MustCompile(`^\s*if\s+(.+?)\s*\{`)},
	{"for", regexp.MustCompile(`^\s*for\s+(.+?)\s*\{`)},
	{"switch", regexp.MustCompile(`^\s*switch\s*(.*?)\s*\{`)},
	{"select", regexp.MustCompile(`^\s*select\s*\{`)},
}

var javaPatterns = []bracePattern{
	{"if", regexp.MustCompile(`^\s*if\s*\((.*?)\)\s*\{`)},
	{"for", regexp.MustCompile(`^\s*for\s*\((.*?)\)\s*\{`)},
	{"while", regexp.MustCompile(`^\s*while\s*\((.*?)\)\s*\{`)},
	{"switch", regexp.MustCompile(`^\s*switch\s*\((.*?)\)\s*\{`)},
	{"try", regexp.MustCompile(`^\s*try\s*\{`)},
}

// analyzeBraces extracts control-flow structures by matching opening
// lines and counting braces to find the block end.
func analyzeBraces(source []byte, patterns []bracePattern) []models.CFGBlock {
	if len(source) == 0 {
		return nil
	}

	lines := stripComments(strings.Split(string(source), "\n"))
	var structures []models.CFGBlock

	for idx, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped == "" || strings.HasPrefix(stripped, "else") {
			continue
		}

		for _, p := range patterns {
			m := p.re.FindStringSubmatch(stripped)
			if m == nil {
				continue
			}

			endIdx := findBlockEnd(lines, idx)
			condition := ""
			if len(m) > 1 {
				condition = strings.TrimSpace(m[1])
			}

			structures = append(structures, models.CFGBlock{
				Kind:      p.kind,
				StartLine: idx + 1,
				EndLine:   endIdx + 1,
				Condition: condition,
				BodyLines: collectBodyLines(lines, idx, endIdx),
			})
			break
		}
	}

	return structures
}

// findBlockEnd returns the index of the line where the brace count
// opened at startIdx returns to zero, or the last line.
func findBlockEnd(lines []string, startIdx int) int {
	count := 0
	started := false
	for idx := startIdx; idx < len(lines); idx++ {
		opens := strings.Count(lines[idx], "{")
		count += opens
		if opens > 0 {
			started = true
		}
		count -= strings.Count(lines[idx], "}")
		if started && count == 0 {
			return idx
		}
	}
	return len(lines) - 1
}

// collectBodyLines returns 1-based numbers of non-blank lines strictly
// between the opening and closing lines.
func collectBodyLines(lines []string, startIdx, endIdx int) []int {
	var body []int
	for idx := startIdx + 1; idx < endIdx; idx++ {
		if strings.TrimSpace(lines[idx]) != "" {
			body = append(body, idx+1)
		}
	}
	return body
}

// stripComments removes // line comments and /* */ block comments,
// carrying block state across lines.
func stripComments(lines []string) []string {
	cleaned := make([]string, 0, len(lines))
	inBlock := false

	for _, line := range lines {
		current := line
		for {
			if inBlock {
				end := strings.Index(current, "*/")
				if end == -1 {
					current = ""
					break
				}
				current = current[end+2:]
				inBlock = false
				continue
			}
			start := strings.Index(current, "/*")
			if start == -1 {
				break
			}
			end := strings.Index(current[start+2:], "*/")
			if end == -1 {
				current = current[:start]
				inBlock = true
				break
			}
			current = current[:start] + current[start+2+end+2:]
		}
		if idx := strings.Index(current, "//"); idx >= 0 {
			current = current[:idx]
		}
		cleaned = append(cleaned, current)
	}
	return cleaned
}

// Package patterns matches regex detection rules against source lines.
package patterns

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

// Matcher scans source code line by line with the loaded rule set.
type Matcher struct {
	rules  *models.RuleSet
	logger *zap.Logger
}

// NewMatcher creates a matcher over a rule set.
func NewMatcher(rules *models.RuleSet, logger *zap.Logger) *Matcher {
	return &Matcher{
		rules:  rules,
		logger: logger,
	}
}

// Match runs every applicable rule against the source and returns hits
// sorted by line number. Rules keep their relative order within a line.
func (m *Matcher) Match(source []byte, language models.Language) []models.PatternMatch {
	if len(source) == 0 {
		return nil
	}

	lines := strings.Split(string(source), "\n")

	// The entropy screen runs even when no regex rule applies to the
	// language.
	matches := matchHighEntropyLiterals(lines)

	applicable := m.rules.ForLanguage(language)
	for _, rule := range applicable {
		for i, line := range lines {
			locs := rule.CompiledRe.FindAllStringIndex(line, -1)
			for _, loc := range locs {
				lineNum := i + 1
				matches = append(matches, models.PatternMatch{
					RuleID:      rule.ID,
					RuleName:    rule.Name,
					Severity:    rule.Severity,
					Line:        lineNum,
					Column:      loc[0],
					MatchedText: line[loc[0]:loc[1]],
					Description: rule.Description,
					Context:     contextLines(lines, lineNum),
				})
			}
		}
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Line < matches[b].Line
	})

	m.logger.Debug("Pattern matching complete",
		zap.String("language", string(language)),
		zap.Int("rules", len(applicable)),
		zap.Int("matches", len(matches)))

	return matches
}

// contextLines returns the source lines surrounding a 1-based line number.
func contextLines(lines []string, lineNum int) string {
	start := lineNum - 2
	if start < 0 {
		start = 0
	}
	end := lineNum + 2
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}

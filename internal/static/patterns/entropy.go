package patterns

import (
	"math"
	"regexp"

	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

// Obfuscated payloads hide behind long, near-random string literals.
// Literals whose Shannon entropy crosses the threshold are reported as
// pattern matches under a synthetic rule so they feed the same
// aggregation path as regex hits.
const (
	entropyRuleID    = "generic_high_entropy_literal"
	entropyThreshold = 5.0
	minLiteralLen    = 40
)

// literalRe captures double- and single-quoted string literals long
// enough to be worth measuring.
var literalRe = regexp.MustCompile(`"([^"\\]{40,})"|'([^'\\]{40,})'`)

// shannonEntropy returns the byte-level Shannon entropy of s,
// between 0 (uniform) and 8 (maximum randomness).
func shannonEntropy(s string) float64 {
	if len(s) == 0 {
		return 0
	}

	var freq [256]int
	for i := 0; i < len(s); i++ {
		freq[s[i]]++
	}

	length := float64(len(s))
	var entropy float64
	for _, count := range freq {
		if count > 0 {
			p := float64(count) / length
			entropy -= p * math.Log2(p)
		}
	}
	return entropy
}

// matchHighEntropyLiterals scans lines for suspiciously random string
// literals and returns synthetic matches for them.
func matchHighEntropyLiterals(lines []string) []models.PatternMatch {
	var matches []models.PatternMatch

	for i, line := range lines {
		for _, groups := range literalRe.FindAllStringSubmatch(line, -1) {
			literal := groups[1]
			if literal == "" {
				literal = groups[2]
			}
			if len(literal) < minLiteralLen {
				continue
			}
			if shannonEntropy(literal) <= entropyThreshold {
				continue
			}

			lineNum := i + 1
			matches = append(matches, models.PatternMatch{
				RuleID:   entropyRuleID,
				RuleName: "High-Entropy String Literal",
				Severity: models.SeverityMedium,
				Line:     lineNum,
				// Verbatim so the match stays findable on the line;
				// reports truncate for display.
				MatchedText: literal,
				Description: "String literal with near-random content, typical of encoded or encrypted payloads",
				Context:     contextLines(lines, lineNum),
			})
		}
	}

	return matches
}

package patterns

import (
	"math"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

// 64 distinct characters, entropy exactly 6.0 bits per byte.
const randomLiteral = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

func TestShannonEntropy(t *testing.T) {
	tests := []struct {
		name string
		s    string
		want float64
	}{
		{"empty", "", 0},
		{"uniform", strings.Repeat("a", 50), 0},
		{"two symbols", strings.Repeat("ab", 25), 1},
		{"64 distinct", randomLiteral, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shannonEntropy(tt.s); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("shannonEntropy() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestMatchHighEntropyLiterals(t *testing.T) {
	lines := []string{
		"import base64",
		`payload = "` + randomLiteral + `"`,
		`label = "just a plain readable sentence with some padding here"`,
		"exec(base64.b64decode(payload))",
	}

	matches := matchHighEntropyLiterals(lines)
	if len(matches) != 1 {
		t.Fatalf("matches = %d, want 1: %+v", len(matches), matches)
	}
	got := matches[0]
	if got.RuleID != entropyRuleID {
		t.Errorf("rule_id = %q", got.RuleID)
	}
	if got.Line != 2 {
		t.Errorf("line = %d, want 2", got.Line)
	}
	if got.Severity != models.SeverityMedium {
		t.Errorf("severity = %s, want medium", got.Severity)
	}
}

func TestMatchHighEntropyLiteralVerbatim(t *testing.T) {
	literal := randomLiteral + randomLiteral[:20] // longer than any display width
	line := `data = "` + literal + `"`

	matches := matchHighEntropyLiterals([]string{line})
	if len(matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(matches))
	}
	if matches[0].MatchedText != literal {
		t.Errorf("matched_text = %q, want the literal verbatim", matches[0].MatchedText)
	}
	if !strings.Contains(line, matches[0].MatchedText) {
		t.Errorf("matched_text %q not present on the line", matches[0].MatchedText)
	}
}

func TestMatchHighEntropyLiteralsShortIgnored(t *testing.T) {
	lines := []string{`x = "` + randomLiteral[:30] + `"`}
	if matches := matchHighEntropyLiterals(lines); len(matches) != 0 {
		t.Errorf("short literal matched: %+v", matches)
	}
}

func TestMatchReportsEntropyHit(t *testing.T) {
	rs := testRuleSet(t,
		&models.Rule{ID: "r", Name: "r", Severity: models.SeverityLow, Pattern: `never_matches_xyz`, Language: "all"},
	)
	m := NewMatcher(rs, zap.NewNop())

	source := `blob = "` + randomLiteral + `"` + "\n"
	matches := m.Match([]byte(source), models.LangPython)
	if len(matches) != 1 || matches[0].RuleID != entropyRuleID {
		t.Fatalf("matches = %+v, want one entropy hit", matches)
	}
}

func TestMatchEntropyWithoutRules(t *testing.T) {
	m := NewMatcher(models.NewRuleSet(), zap.NewNop())

	source := `blob = "` + randomLiteral + `"` + "\n"
	matches := m.Match([]byte(source), models.LangPython)
	if len(matches) != 1 || matches[0].RuleID != entropyRuleID {
		t.Fatalf("matches = %+v, want the entropy hit with an empty rule set", matches)
	}
}

package patterns

import (
	"sort"
	"testing"

	"go.uber.org/zap"

	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

func testRuleSet(t *testing.T, rules ...*models.Rule) *models.RuleSet {
	t.Helper()
	rs := models.NewRuleSet()
	for _, r := range rules {
		r.Enabled = true
		if err := rs.AddRule(r); err != nil {
			t.Fatalf("AddRule(%s) error = %v", r.ID, err)
		}
	}
	return rs
}

func TestMatchBasic(t *testing.T) {
	rs := testRuleSet(t,
		&models.Rule{
			ID:       "py_rce_eval",
			Name:     "eval call",
			Severity: models.SeverityCritical,
			Pattern:  `\beval\s*\(`,
			Language: "python",
		},
	)
	m := NewMatcher(rs, zap.NewNop())

	source := "x = 1\nresult = eval(user_input)\nprint(result)\n"
	matches := m.Match([]byte(source), models.LangPython)

	if len(matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(matches))
	}
	got := matches[0]
	if got.Line != 2 {
		t.Errorf("line = %d, want 2", got.Line)
	}
	if got.MatchedText != "eval(" {
		t.Errorf("matched_text = %q, want eval(", got.MatchedText)
	}
	if got.Column != 9 {
		t.Errorf("col_offset = %d, want 9", got.Column)
	}
	if got.Context == "" {
		t.Error("context is empty")
	}
}

func TestMatchSortedByLine(t *testing.T) {
	rs := testRuleSet(t,
		&models.Rule{ID: "r_late", Name: "late", Severity: models.SeverityLow, Pattern: `late_call`, Language: "all"},
		&models.Rule{ID: "r_early", Name: "early", Severity: models.SeverityLow, Pattern: `early_call`, Language: "all"},
	)
	m := NewMatcher(rs, zap.NewNop())

	source := "early_call()\nnothing\nlate_call()\nearly_call()\n"
	matches := m.Match([]byte(source), models.LangPython)

	if len(matches) != 3 {
		t.Fatalf("matches = %d, want 3", len(matches))
	}
	if !sort.SliceIsSorted(matches, func(a, b int) bool {
		return matches[a].Line < matches[b].Line
	}) {
		t.Errorf("matches not sorted by line: %+v", matches)
	}
}

func TestMatchLanguageFilter(t *testing.T) {
	rs := testRuleSet(t,
		&models.Rule{ID: "go_only", Name: "go", Severity: models.SeverityLow, Pattern: `exec\.Command`, Language: "go"},
		&models.Rule{ID: "any_lang", Name: "any", Severity: models.SeverityLow, Pattern: `token`, Language: "all"},
	)
	m := NewMatcher(rs, zap.NewNop())

	source := "exec.Command(\"ls\")\ntoken = 1\n"

	pyMatches := m.Match([]byte(source), models.LangPython)
	for _, match := range pyMatches {
		if match.RuleID == "go_only" {
			t.Error("go rule matched python source")
		}
	}

	goMatches := m.Match([]byte(source), models.LangGo)
	found := false
	for _, match := range goMatches {
		if match.RuleID == "go_only" {
			found = true
		}
	}
	if !found {
		t.Error("go rule did not match go source")
	}
}

func TestMatchMultiplePerLine(t *testing.T) {
	rs := testRuleSet(t,
		&models.Rule{ID: "r", Name: "r", Severity: models.SeverityLow, Pattern: `hit`, Language: "all"},
	)
	m := NewMatcher(rs, zap.NewNop())

	matches := m.Match([]byte("hit and hit again"), models.LangPython)
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}
	if matches[0].Column >= matches[1].Column {
		t.Errorf("columns not increasing: %d, %d", matches[0].Column, matches[1].Column)
	}
}

func TestMatchEmptySource(t *testing.T) {
	rs := testRuleSet(t,
		&models.Rule{ID: "r", Name: "r", Severity: models.SeverityLow, Pattern: `x`, Language: "all"},
	)
	m := NewMatcher(rs, zap.NewNop())

	if got := m.Match(nil, models.LangPython); got != nil {
		t.Errorf("Match(nil) = %v, want nil", got)
	}
}

package analysis

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

// categoryOrder fixes the reporting order of identified threats.
var categoryOrder = []models.ThreatCategory{
	models.ThreatRCE,
	models.ThreatCommandInjection,
	models.ThreatWebShell,
	models.ThreatBackdoor,
	models.ThreatSQLInjection,
	models.ThreatNetworkExfil,
	models.ThreatSensitiveAccess,
	models.ThreatFileOperation,
	models.ThreatMemoryInjection,
	models.ThreatRuntimeVuln,
}

// categoryDescriptions are the fixed summaries shown per category.
var categoryDescriptions = map[models.ThreatCategory]string{
	models.ThreatRCE:              "Code paths that execute attacker-controllable commands or code",
	models.ThreatCommandInjection: "Untrusted program input flows into a shell command",
	models.ThreatWebShell:         "Remote command interface exposed through a network endpoint",
	models.ThreatBackdoor:         "Hidden listener or covert access channel",
	models.ThreatSQLInjection:     "Untrusted data concatenated into SQL statements",
	models.ThreatNetworkExfil:     "Network connections that may leak data to remote hosts",
	models.ThreatSensitiveAccess:  "Access to credential or system configuration files",
	models.ThreatFileOperation:    "Suspicious file writes or deletions",
	models.ThreatMemoryInjection:  "Native code loading or raw memory manipulation",
	models.ThreatRuntimeVuln:      "Crashes under malformed input observed while fuzzing",
}

// categoryFloor is the minimum severity a category reports at.
var categoryFloor = map[models.ThreatCategory]models.Severity{
	models.ThreatRCE:              models.SeverityCritical,
	models.ThreatCommandInjection: models.SeverityCritical,
	models.ThreatWebShell:         models.SeverityHigh,
	models.ThreatBackdoor:         models.SeverityHigh,
	models.ThreatSQLInjection:     models.SeverityHigh,
	models.ThreatNetworkExfil:     models.SeverityMedium,
	models.ThreatSensitiveAccess:  models.SeverityHigh,
	models.ThreatFileOperation:    models.SeverityMedium,
	models.ThreatMemoryInjection:  models.SeverityMedium,
	models.ThreatRuntimeVuln:      models.SeverityMedium,
}

// sourceLocationRe pulls file:line locations out of raw event text,
// tolerating Windows drive letters.
var sourceLocationRe = regexp.MustCompile(`([A-Za-z]:\\[^:]+|/[^:\s]+):(\d+)`)

// Identify folds all findings into at most one threat per category.
func Identify(static *models.StaticResults, dynamic *models.DynamicResults) []models.Threat {
	acc := newAccumulator()

	if static != nil {
		for _, m := range static.PatternMatches {
			category, ok := categoryForRule(m.RuleID)
			if !ok {
				continue
			}
			acc.add(category, m.Severity,
				fmt.Sprintf("%s: %s (line %d)", m.RuleID, m.MatchedText, m.Line), m.Line)
		}
		for _, f := range static.TaintFlows {
			category, _ := categoryForRule(f.RuleID)
			if category == "" {
				category = models.ThreatRCE
			}
			evidence := fmt.Sprintf("taint flow %s: line %d -> line %d (%s)",
				f.RuleID, f.SourceLine, f.SinkLine, f.MatchedText)
			acc.add(category, models.SeverityCritical, evidence, f.SourceLine, f.SinkLine)

			if isCommandInjection(f) {
				acc.add(models.ThreatCommandInjection, models.SeverityCritical, evidence,
					f.SourceLine, f.SinkLine)
			}
		}
	}

	if dynamic != nil {
		for _, ev := range dynamic.Events {
			switch ev.Category {
			case models.CategorySyscall:
				if strings.Contains(ev.Detail, "os.system") || strings.Contains(ev.Detail, "subprocess") {
					acc.add(models.ThreatRCE, models.SeverityCritical, ev.Detail, eventLines(ev)...)
				}
			case models.CategoryCodeExec:
				acc.add(models.ThreatRCE, models.SeverityCritical, ev.Detail, eventLines(ev)...)
			}
		}
		for _, na := range dynamic.NetworkActivities {
			acc.add(models.ThreatNetworkExfil, models.SeverityMedium,
				fmt.Sprintf("%s %s", na.Type, na.Target))
		}
		for _, fa := range dynamic.FileActivities {
			evidence := fmt.Sprintf("%s %s", fa.Operation, fa.Path)
			if fa.IsSensitive {
				acc.add(models.ThreatSensitiveAccess, models.SeverityHigh, evidence, fa.LineNumbers...)
			} else if fa.Operation == "write" || fa.Operation == "delete" {
				acc.add(models.ThreatFileOperation, models.SeverityMedium, evidence, fa.LineNumbers...)
			}
		}
		// Any memory finding surfaces the threat; a memory API call
		// raises it from medium to high.
		memorySeverity := models.SeverityMedium
		for _, mf := range dynamic.MemoryFindings {
			if mf.Type == "memory_api" {
				memorySeverity = models.SeverityHigh
				break
			}
		}
		for _, mf := range dynamic.MemoryFindings {
			acc.add(models.ThreatMemoryInjection, memorySeverity, mf.Detail, mf.LineNumbers...)
		}
		for _, fc := range dynamic.FuzzResults {
			if fc.Crashed {
				acc.add(models.ThreatRuntimeVuln, models.SeverityMedium,
					fmt.Sprintf("crash on input %q", fc.Input), fc.CrashLines...)
			}
		}
	}

	return acc.threats()
}

// categoryForRule maps a rule identifier onto a threat category.
func categoryForRule(ruleID string) (models.ThreatCategory, bool) {
	switch {
	case strings.Contains(ruleID, "rce"):
		return models.ThreatRCE, true
	case strings.Contains(ruleID, "webshell"):
		return models.ThreatWebShell, true
	case strings.Contains(ruleID, "backdoor"):
		return models.ThreatBackdoor, true
	case strings.Contains(ruleID, "sql_injection"):
		return models.ThreatSQLInjection, true
	case strings.Contains(ruleID, "network"):
		return models.ThreatNetworkExfil, true
	case strings.Contains(ruleID, "file"):
		return models.ThreatFileOperation, true
	case strings.Contains(ruleID, "secret"):
		return models.ThreatSensitiveAccess, true
	}
	return "", false
}

// isCommandInjection recognizes program arguments reaching a shell.
func isCommandInjection(f models.TaintFlow) bool {
	fromArgs := strings.Contains(f.SourceCode, "sys.argv") ||
		strings.Contains(f.SourceCode, "os.Args") ||
		strings.Contains(f.SourceCode, "args[")
	toShell := strings.HasPrefix(f.MatchedText, "os.system") ||
		strings.Contains(f.MatchedText, "exec.Command") ||
		strings.Contains(f.MatchedText, "Runtime.getRuntime")
	return fromArgs && toShell
}

// eventLines extracts source line numbers from an event's stack or,
// failing that, from file:line locations in its raw text.
func eventLines(ev models.RuntimeEvent) []int {
	var lines []int
	for _, frame := range ev.Stack {
		lines = append(lines, frame.Line)
	}
	if len(lines) > 0 {
		return lines
	}
	for _, m := range sourceLocationRe.FindAllStringSubmatch(ev.Raw, -1) {
		if n, err := strconv.Atoi(m[2]); err == nil {
			lines = append(lines, n)
		}
	}
	return lines
}

// accumulator builds one threat per category.
type accumulator struct {
	byCategory map[models.ThreatCategory]*models.Threat
}

func newAccumulator() *accumulator {
	return &accumulator{byCategory: make(map[models.ThreatCategory]*models.Threat)}
}

func (a *accumulator) add(category models.ThreatCategory, severity models.Severity, evidence string, lines ...int) {
	t, ok := a.byCategory[category]
	if !ok {
		t = &models.Threat{
			Category:    category,
			Severity:    categoryFloor[category],
			Description: categoryDescriptions[category],
		}
		a.byCategory[category] = t
	}
	if models.GetSeverityPriority(severity) > models.GetSeverityPriority(t.Severity) {
		t.Severity = severity
	}
	t.Evidence = append(t.Evidence, evidence)
	t.LineNumbers = append(t.LineNumbers, lines...)
}

// threats returns accumulated threats in fixed category order with
// sorted, deduplicated, positive line numbers.
func (a *accumulator) threats() []models.Threat {
	var out []models.Threat
	for _, category := range categoryOrder {
		t, ok := a.byCategory[category]
		if !ok {
			continue
		}
		t.LineNumbers = cleanLines(t.LineNumbers)
		out = append(out, *t)
	}
	return out
}

func cleanLines(lines []int) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, l := range lines {
		if l <= 0 {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	sort.Ints(out)
	return out
}

// Package taint tracks data flow from untrusted input sources to
// dangerous sinks with a single forward pass over the source lines.
// Taint state is line-oriented: a variable assigned from a source (or
// from another tainted variable) carries the origin of its taint until
// it reaches a sink line.
package taint

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

// Analyzer runs taint analysis for the supported languages.
type Analyzer struct {
	logger *zap.Logger
}

// NewAnalyzer creates a taint analyzer.
func NewAnalyzer(logger *zap.Logger) *Analyzer {
	return &Analyzer{logger: logger}
}

// origin records where a variable picked up its taint.
type origin struct {
	sourceLine int
	sourceCode string
}

// state tracks tainted variables in insertion order so flow output is
// deterministic.
type state struct {
	names   []string
	origins map[string]origin
}

func newState() *state {
	return &state{origins: make(map[string]origin)}
}

func (s *state) set(name string, o origin) {
	if _, ok := s.origins[name]; !ok {
		s.names = append(s.names, name)
	}
	s.origins[name] = o
}

// findOrigin returns the origin of the first tainted variable that
// occurs in the given expression.
func (s *state) findOrigin(expr string) (origin, bool) {
	for _, name := range s.names {
		if lineContainsVar(expr, name) {
			return s.origins[name], true
		}
	}
	return origin{}, false
}

// Analyze performs the forward taint pass and returns deduplicated
// flows. Unsupported languages yield no flows.
func (a *Analyzer) Analyze(source []byte, language models.Language) []models.TaintFlow {
	table := tableFor(language)
	if table == nil {
		return nil
	}

	lines := stripComments(strings.Split(string(source), "\n"), table.lineComment, table.blockComments)

	tainted := newState()
	seen := make(map[models.FlowKey]bool)
	var flows []models.TaintFlow

	for i, raw := range lines {
		lineNum := i + 1
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		sourcePresent := false
		for _, src := range table.sources {
			if src.MatchString(line) {
				sourcePresent = true
				break
			}
		}

		assigned, rhs := extractAssignedVars(line, table)

		if sourcePresent && len(assigned) > 0 {
			for _, name := range assigned {
				tainted.set(name, origin{sourceLine: lineNum, sourceCode: line})
			}
		} else if len(assigned) > 0 && rhs != "" {
			if o, ok := tainted.findOrigin(rhs); ok {
				for _, name := range assigned {
					tainted.set(name, o)
				}
			}
		}

		// First matching sink rule wins
		var sink *sinkRule
		matchedText := ""
		for idx := range table.sinks {
			if m := table.sinks[idx].pattern.FindString(line); m != "" {
				sink = &table.sinks[idx]
				matchedText = m
				break
			}
		}
		if sink == nil {
			continue
		}

		// Direct flow: source and sink on the same line
		if sourcePresent {
			flow := models.TaintFlow{
				RuleID:      sink.ruleID,
				Kind:        models.FlowDirect,
				SourceLine:  lineNum,
				SourceCode:  line,
				SinkLine:    lineNum,
				SinkCode:    line,
				MatchedText: matchedText,
				Severity:    sink.severity,
				Description: fmt.Sprintf("Taint source on line %d flows to sink on line %d", lineNum, lineNum),
			}
			if key := flow.Key(); !seen[key] {
				seen[key] = true
				flows = append(flows, flow)
			}
		}

		// Variable flows: any tainted variable used on the sink line
		for _, name := range tainted.names {
			if !lineContainsVar(line, name) {
				continue
			}
			o := tainted.origins[name]
			flow := models.TaintFlow{
				RuleID:      sink.ruleID,
				Kind:        models.FlowVariable,
				Variable:    name,
				SourceLine:  o.sourceLine,
				SourceCode:  o.sourceCode,
				SinkLine:    lineNum,
				SinkCode:    line,
				MatchedText: matchedText,
				Severity:    sink.severity,
				Description: fmt.Sprintf("Taint data from line %d flows to sink at line %d", o.sourceLine, lineNum),
			}
			if key := flow.Key(); !seen[key] {
				seen[key] = true
				flows = append(flows, flow)
			}
		}
	}

	a.logger.Debug("Taint analysis complete",
		zap.String("language", string(language)),
		zap.Int("flows", len(flows)))

	return flows
}

// stripComments removes line and block comments. Block comment state
// carries across lines; string literals are not tracked, matching the
// line-oriented nature of the whole engine.
func stripComments(lines []string, lineComment string, blockComments bool) []string {
	cleaned := make([]string, 0, len(lines))
	inBlock := false

	for _, line := range lines {
		current := line
		if blockComments {
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
		}
		if lineComment != "" {
			if idx := strings.Index(current, lineComment); idx >= 0 {
				current = current[:idx]
			}
		}
		cleaned = append(cleaned, current)
	}
	return cleaned
}

// extractAssignedVars splits an assignment line into target variable
// names and the right-hand side expression.
func extractAssignedVars(line string, table *languageTable) ([]string, string) {
	lhs, rhs, ok := splitAssignment(line, table.shortDecl)
	if !ok {
		return nil, ""
	}

	lhs = strings.TrimSpace(lhs)
	rhs = strings.TrimSpace(rhs)

	for _, prefix := range table.lhsStripPrefixes {
		lhs = strings.TrimPrefix(lhs, prefix)
	}
	lhs = strings.ReplaceAll(lhs, "range ", "")

	var vars []string
	for _, part := range strings.Split(lhs, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tokens := strings.Fields(part)
		if len(tokens) == 0 {
			continue
		}
		name := tokens[0]
		if table.lhsLastToken {
			name = tokens[len(tokens)-1]
		}
		if name == "_" {
			continue
		}
		vars = append(vars, name)
	}
	return vars, rhs
}

// splitAssignment finds the first assignment operator that is not part
// of a comparison (==, !=, <=, >=). With shortDecl, := counts too.
func splitAssignment(line string, shortDecl bool) (lhs, rhs string, ok bool) {
	for k := 0; k < len(line); k++ {
		if line[k] != '=' {
			continue
		}
		if k+1 < len(line) && line[k+1] == '=' {
			k++ // skip both halves of ==
			continue
		}
		if k > 0 {
			prev := line[k-1]
			if prev == '=' || prev == '!' || prev == '<' || prev == '>' {
				continue
			}
			if prev == ':' {
				if !shortDecl {
					continue
				}
				return line[:k-1], line[k+1:], true
			}
		}
		return line[:k], line[k+1:], true
	}
	return "", "", false
}

// lineContainsVar reports whether name occurs in text as a standalone
// identifier: not preceded by a word character or dot, not followed by
// a word character.
func lineContainsVar(text, name string) bool {
	if name == "" {
		return false
	}
	for idx := 0; idx <= len(text)-len(name); {
		j := strings.Index(text[idx:], name)
		if j < 0 {
			return false
		}
		j += idx

		okBefore := j == 0 || !isIdentOrDot(text[j-1])
		after := j + len(name)
		okAfter := after >= len(text) || !isIdent(text[after])
		if okBefore && okAfter {
			return true
		}
		idx = j + 1
	}
	return false
}

func isIdent(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func isIdentOrDot(b byte) bool {
	return b == '.' || isIdent(b)
}

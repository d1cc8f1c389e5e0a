package models

// PatternMatch is a single regex rule hit on a source line
type PatternMatch struct {
	RuleID      string   `json:"rule_id"`
	RuleName    string   `json:"rule_name"`
	Severity    Severity `json:"severity"`
	Line        int      `json:"line"`
	Column      int      `json:"col_offset"`
	MatchedText string   `json:"matched_text"`
	Description string   `json:"description"`
	Context     string   `json:"context"` // surrounding source lines
}

// FlowKind distinguishes how tainted data reached a sink
type FlowKind string

const (
	// FlowDirect means source and sink appear on the same line
	FlowDirect FlowKind = "direct"
	// FlowVariable means a tainted variable carried the data to the sink
	FlowVariable FlowKind = "variable_flow"
)

// TaintFlow records untrusted input reaching a dangerous call
type TaintFlow struct {
	RuleID      string   `json:"rule_id"`
	Kind        FlowKind `json:"kind"`
	Variable    string   `json:"variable,omitempty"` // empty for direct flows
	SourceLine  int      `json:"source_line"`
	SourceCode  string   `json:"source_code"`
	SinkLine    int      `json:"sink_line"`
	SinkCode    string   `json:"sink_code"`
	MatchedText string   `json:"matched_text"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description,omitempty"`
}

// Key returns the composite deduplication key for the flow
func (f *TaintFlow) Key() FlowKey {
	variable := f.Variable
	if f.Kind == FlowDirect {
		variable = "direct"
	}
	return FlowKey{
		SourceLine: f.SourceLine,
		SinkLine:   f.SinkLine,
		Variable:   variable,
		RuleID:     f.RuleID,
	}
}

// FlowKey is the composite identity of a taint flow
type FlowKey struct {
	SourceLine int
	SinkLine   int
	Variable   string
	RuleID     string
}

// CFGBlock describes one control-flow structure found in source code
type CFGBlock struct {
	Kind       string `json:"kind"` // if, for, while, try, switch, select
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
	Condition  string `json:"condition,omitempty"`
	BodyLines  []int  `json:"body_lines"`
	ElseLines  []int  `json:"else_lines,omitempty"`
	ExceptLines []int `json:"except_lines,omitempty"`
	FinalLines []int  `json:"finally_lines,omitempty"`
}

// SyntaxError is a single parse error with its location
type SyntaxError struct {
	Line    int    `json:"line"`
	Column  int    `json:"column,omitempty"`
	Message string `json:"message"`
}

// SyntaxReport is the result of validity checking one source unit
type SyntaxReport struct {
	Valid  bool          `json:"valid"`
	Errors []SyntaxError `json:"errors,omitempty"`
	Note   string        `json:"note,omitempty"` // set when the checker was unavailable
}

// StaticResults collects all static engine outputs for one source unit
type StaticResults struct {
	Model          *SourceModel   `json:"source_model,omitempty"`
	PatternMatches []PatternMatch `json:"pattern_matches"`
	TaintFlows     []TaintFlow    `json:"taint_flows"`
	CFG            []CFGBlock     `json:"cfg_structures"`
	Syntax         *SyntaxReport  `json:"syntax,omitempty"`
	Dependencies   []Dependency   `json:"dependencies,omitempty"`
	CVEMatches     []CVEMatch     `json:"cve_matches,omitempty"`
}

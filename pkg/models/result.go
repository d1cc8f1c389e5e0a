package models

import "time"

// AnalysisResult is the complete outcome for one source unit.
// It is always structurally valid: pipeline failures set Error instead
// of aborting.
type AnalysisResult struct {
	RunID    string        `json:"run_id"`
	FilePath string        `json:"file_path"`
	Language Language      `json:"language"`
	Start    time.Time     `json:"start_time"`
	End      time.Time     `json:"end_time"`
	Duration time.Duration `json:"duration"`

	Skipped    bool   `json:"skipped,omitempty"`
	SkipReason string `json:"skip_reason,omitempty"`

	Static  *StaticResults  `json:"static,omitempty"`
	Dynamic *DynamicResults `json:"dynamic,omitempty"`

	Breakdown SeverityBreakdown `json:"severity_breakdown"`
	Threats   []Threat          `json:"threats"`
	Risk      *RiskAssessment   `json:"risk,omitempty"`

	Error string `json:"error,omitempty"`
}

// ProjectResults aggregates per-file results for a multi-file run
type ProjectResults struct {
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	ScanPath  string        `json:"scan_path"`

	TotalFiles    int `json:"total_files"`
	AnalyzedFiles int `json:"analyzed_files"`
	SkippedFiles  int `json:"skipped_files"`
	ErrorFiles    int `json:"error_files"`

	Results []*AnalysisResult `json:"results"`

	Breakdown SeverityBreakdown `json:"severity_breakdown"`
	Risk      *RiskAssessment   `json:"risk,omitempty"`

	Version string `json:"version"`
	Workers int    `json:"workers"`

	ReportPath string `json:"report_path,omitempty"`
}

// AddResult appends a per-file result and folds its counts into the totals
func (p *ProjectResults) AddResult(r *AnalysisResult) {
	p.Results = append(p.Results, r)
	switch {
	case r.Skipped:
		p.SkippedFiles++
	case r.Error != "":
		p.ErrorFiles++
	default:
		p.AnalyzedFiles++
	}
	p.Breakdown.Add(r.Breakdown)
}

// ThreatsFound returns the total threat count across all results
func (p *ProjectResults) ThreatsFound() int {
	n := 0
	for _, r := range p.Results {
		n += len(r.Threats)
	}
	return n
}

package models

// ThreatCategory names a unified threat bucket
type ThreatCategory string

const (
	ThreatRCE              ThreatCategory = "Remote Code Execution"
	ThreatCommandInjection ThreatCategory = "Command Injection"
	ThreatWebShell         ThreatCategory = "WebShell"
	ThreatBackdoor         ThreatCategory = "Backdoor"
	ThreatSQLInjection     ThreatCategory = "SQL Injection"
	ThreatNetworkExfil     ThreatCategory = "Network Exfiltration"
	ThreatFileOperation    ThreatCategory = "File Operation Risk"
	ThreatSensitiveAccess  ThreatCategory = "Sensitive File Access"
	ThreatRuntimeVuln      ThreatCategory = "Runtime Vulnerability"
	ThreatMemoryInjection  ThreatCategory = "Memory Injection"
)

// Threat is one identified threat category with its supporting evidence.
// At most one Threat per category exists in a result.
type Threat struct {
	Category    ThreatCategory `json:"type"`
	Severity    Severity       `json:"severity"`
	Description string         `json:"description"`
	Evidence    []string       `json:"evidence"`
	LineNumbers []int          `json:"line_numbers"`
}

// SeverityBreakdown counts findings per severity bucket
type SeverityBreakdown struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// Add merges another breakdown into this one
func (b *SeverityBreakdown) Add(other SeverityBreakdown) {
	b.Critical += other.Critical
	b.High += other.High
	b.Medium += other.Medium
	b.Low += other.Low
}

// Count increments the bucket for the given severity.
// Info-level findings do not contribute to risk.
func (b *SeverityBreakdown) Count(s Severity) {
	switch s {
	case SeverityCritical:
		b.Critical++
	case SeverityHigh:
		b.High++
	case SeverityMedium:
		b.Medium++
	case SeverityLow:
		b.Low++
	}
}

// Total returns the number of counted findings
func (b SeverityBreakdown) Total() int {
	return b.Critical + b.High + b.Medium + b.Low
}

// RiskAssessment is the numeric risk verdict for a result
type RiskAssessment struct {
	Score       int               `json:"score"` // 0-100
	Level       Severity          `json:"level"` // critical, high, medium, low
	Breakdown   SeverityBreakdown `json:"breakdown"`
	ThreatCount int               `json:"threat_count"`
}

package analysis

import (
	"testing"

	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

func TestAggregateStatic(t *testing.T) {
	static := &models.StaticResults{
		PatternMatches: []models.PatternMatch{
			{RuleID: "py_rce_eval", Severity: models.SeverityCritical},
			{RuleID: "file_go_write", Severity: models.SeverityMedium},
			{RuleID: "note_only", Severity: models.SeverityInfo},
		},
		TaintFlows: []models.TaintFlow{
			{RuleID: "go_sql_injection", Severity: models.SeverityHigh},
		},
	}

	b := Aggregate(static, nil)
	// The taint flow counts critical regardless of its sink severity
	if b.Critical != 2 {
		t.Errorf("critical = %d, want 2", b.Critical)
	}
	if b.Medium != 1 {
		t.Errorf("medium = %d, want 1", b.Medium)
	}
	if b.Total() != 3 {
		t.Errorf("total = %d, want 3 (info not counted)", b.Total())
	}
}

func TestAggregateDynamic(t *testing.T) {
	dynamic := &models.DynamicResults{
		Events: []models.RuntimeEvent{
			{Category: models.CategorySyscall, Detail: "os.system('ls')"},
			{Category: models.CategorySyscall, Detail: "process_spawn: pid=9 name=sh"},
			{Category: models.CategoryCodeExec, Detail: "eval('1+1')"},
			// Already represented by the extracted activity below
			{Category: models.CategoryNetwork, Detail: "socket.connect(('10.0.0.1', 80))"},
		},
		NetworkActivities: []models.NetworkActivity{
			{Type: "connect", Target: "10.0.0.1:80"},
		},
		FileActivities: []models.FileActivity{
			{Operation: "open", Path: "/etc/passwd", IsSensitive: true},
			{Operation: "write", Path: "/tmp/out.txt"},
		},
		MemoryFindings: []models.MemoryFinding{
			{Type: "memory_api", Detail: "ctypes.CDLL('libc.so.6')"},
			{Type: "memory_usage", Detail: "peak rss=1024 vms=2048"},
		},
		FuzzResults: []models.FuzzCase{
			{Input: "; ls", Crashed: true},
			{Input: "abc", Crashed: false},
		},
	}

	b := Aggregate(nil, dynamic)
	if b.Critical != 2 {
		t.Errorf("critical = %d, want 2 (os.system + eval)", b.Critical)
	}
	if b.High != 2 {
		t.Errorf("high = %d, want 2 (sensitive file + memory api)", b.High)
	}
	// spawn syscall + connect + memory usage + crash
	if b.Medium != 4 {
		t.Errorf("medium = %d, want 4", b.Medium)
	}
	if b.Low != 1 {
		t.Errorf("low = %d, want 1 (plain file write)", b.Low)
	}
}

func TestIdentifyPatternCategories(t *testing.T) {
	static := &models.StaticResults{
		PatternMatches: []models.PatternMatch{
			{RuleID: "py_rce_eval", Severity: models.SeverityCritical, MatchedText: "eval(", Line: 3},
			{RuleID: "webshell_py_shell_spawn", Severity: models.SeverityHigh, MatchedText: "pty.spawn", Line: 8},
			{RuleID: "webshell_py_shell_spawn", Severity: models.SeverityHigh, MatchedText: "pty.spawn", Line: 8},
		},
	}

	threats := Identify(static, nil)
	if len(threats) != 2 {
		t.Fatalf("threats = %d, want 2 (one per category): %+v", len(threats), threats)
	}
	if threats[0].Category != models.ThreatRCE {
		t.Errorf("threats[0] = %q, want RCE first", threats[0].Category)
	}
	if threats[0].Severity != models.SeverityCritical {
		t.Errorf("RCE severity = %q, want critical", threats[0].Severity)
	}
	shell := threats[1]
	if shell.Category != models.ThreatWebShell {
		t.Errorf("threats[1] = %q, want webshell", shell.Category)
	}
	// Duplicate line numbers collapse
	if len(shell.LineNumbers) != 1 || shell.LineNumbers[0] != 8 {
		t.Errorf("line_numbers = %v, want [8]", shell.LineNumbers)
	}
	if len(shell.Evidence) != 2 {
		t.Errorf("evidence = %d entries, want 2", len(shell.Evidence))
	}
}

func TestIdentifyCommandInjection(t *testing.T) {
	static := &models.StaticResults{
		TaintFlows: []models.TaintFlow{
			{
				RuleID:      "py_rce_os_system",
				Kind:        models.FlowVariable,
				Variable:    "cmd",
				SourceLine:  2,
				SourceCode:  "cmd = sys.argv[1]",
				SinkLine:    5,
				SinkCode:    "os.system(cmd)",
				MatchedText: "os.system(",
			},
		},
	}

	threats := Identify(static, nil)
	if len(threats) != 2 {
		t.Fatalf("threats = %d, want RCE + Command Injection: %+v", len(threats), threats)
	}
	if threats[0].Category != models.ThreatRCE || threats[1].Category != models.ThreatCommandInjection {
		t.Errorf("categories = %q, %q", threats[0].Category, threats[1].Category)
	}
	ci := threats[1]
	if ci.Severity != models.SeverityCritical {
		t.Errorf("severity = %q, want critical", ci.Severity)
	}
	if len(ci.LineNumbers) != 2 || ci.LineNumbers[0] != 2 || ci.LineNumbers[1] != 5 {
		t.Errorf("line_numbers = %v, want [2 5]", ci.LineNumbers)
	}
}

func TestIdentifyDynamic(t *testing.T) {
	dynamic := &models.DynamicResults{
		Events: []models.RuntimeEvent{
			{
				Category: models.CategorySyscall,
				Detail:   "subprocess.run('nc -l 1234')",
				Raw:      "[ts] [ALERT] SYSCALL: subprocess.run('nc -l 1234') | stack=/tmp/mal.py:14",
			},
		},
		NetworkActivities: []models.NetworkActivity{
			{Type: "connect", Target: "10.0.0.1:4444"},
		},
		FileActivities: []models.FileActivity{
			{Operation: "open", Path: "/etc/shadow", IsSensitive: true, LineNumbers: []int{7}},
		},
		MemoryFindings: []models.MemoryFinding{
			{Type: "memory_api", Detail: "ctypes.CDLL('libc.so.6')", LineNumbers: []int{9}},
		},
		FuzzResults: []models.FuzzCase{
			{Input: "' || 1=1 --", Crashed: true, CrashLines: []int{12}},
		},
	}

	threats := Identify(nil, dynamic)
	want := []models.ThreatCategory{
		models.ThreatRCE,
		models.ThreatNetworkExfil,
		models.ThreatSensitiveAccess,
		models.ThreatMemoryInjection,
		models.ThreatRuntimeVuln,
	}
	if len(threats) != len(want) {
		t.Fatalf("threats = %d, want %d: %+v", len(threats), len(want), threats)
	}
	for i, category := range want {
		if threats[i].Category != category {
			t.Errorf("threats[%d] = %q, want %q", i, threats[i].Category, category)
		}
	}
	// Line pulled out of the raw log location
	if len(threats[0].LineNumbers) != 1 || threats[0].LineNumbers[0] != 14 {
		t.Errorf("RCE line_numbers = %v, want [14]", threats[0].LineNumbers)
	}
}

func TestIdentifyMemoryFindings(t *testing.T) {
	t.Run("usage only is medium", func(t *testing.T) {
		dynamic := &models.DynamicResults{
			MemoryFindings: []models.MemoryFinding{
				{Type: "memory_usage", Detail: "peak rss=1048576 vms=2097152"},
			},
		}
		threats := Identify(nil, dynamic)
		if len(threats) != 1 || threats[0].Category != models.ThreatMemoryInjection {
			t.Fatalf("threats = %+v, want one memory injection", threats)
		}
		if threats[0].Severity != models.SeverityMedium {
			t.Errorf("severity = %q, want medium without a memory API call", threats[0].Severity)
		}
	})

	t.Run("api call raises to high", func(t *testing.T) {
		dynamic := &models.DynamicResults{
			MemoryFindings: []models.MemoryFinding{
				{Type: "memory_usage", Detail: "peak rss=1048576 vms=2097152"},
				{Type: "memory_api", Detail: "ctypes.CDLL('libc.so.6')", LineNumbers: []int{9}},
			},
		}
		threats := Identify(nil, dynamic)
		if len(threats) != 1 || threats[0].Category != models.ThreatMemoryInjection {
			t.Fatalf("threats = %+v, want one memory injection", threats)
		}
		if threats[0].Severity != models.SeverityHigh {
			t.Errorf("severity = %q, want high", threats[0].Severity)
		}
		if len(threats[0].Evidence) != 2 {
			t.Errorf("evidence = %d entries, want both findings", len(threats[0].Evidence))
		}
	})
}

func TestAssessRisk(t *testing.T) {
	tests := []struct {
		name      string
		breakdown models.SeverityBreakdown
		wantScore int
		wantLevel models.Severity
	}{
		{"empty", models.SeverityBreakdown{}, 0, models.SeverityLow},
		{"one low", models.SeverityBreakdown{Low: 1}, 1, models.SeverityLow},
		{"medium boundary", models.SeverityBreakdown{Medium: 4}, 20, models.SeverityMedium},
		{"high boundary", models.SeverityBreakdown{Critical: 1, High: 1, Medium: 1}, 50, models.SeverityHigh},
		{"critical boundary", models.SeverityBreakdown{Critical: 2, High: 1, Medium: 1}, 80, models.SeverityCritical},
		{"capped", models.SeverityBreakdown{Critical: 10}, 100, models.SeverityCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AssessRisk(tt.breakdown, 0)
			if got.Score != tt.wantScore {
				t.Errorf("score = %d, want %d", got.Score, tt.wantScore)
			}
			if got.Level != tt.wantLevel {
				t.Errorf("level = %q, want %q", got.Level, tt.wantLevel)
			}
		})
	}
}

func TestAssessRiskCarriesCounts(t *testing.T) {
	b := models.SeverityBreakdown{Critical: 1, Low: 2}
	got := AssessRisk(b, 3)
	if got.ThreatCount != 3 {
		t.Errorf("threat_count = %d, want 3", got.ThreatCount)
	}
	if got.Breakdown != b {
		t.Errorf("breakdown = %+v, want %+v", got.Breakdown, b)
	}
}

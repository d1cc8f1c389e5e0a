package procmon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

func TestIsSystemPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/etc/hosts", true},
		{"/var/log/auth.log", true},
		{"/root/.bashrc", true},
		{`C:\Windows\System32\cmd.exe`, true},
		{`C:\Users\alice\doc.txt`, true},
		{"/tmp/scratch.txt", false},
		{"relative/file.txt", false},
	}
	for _, tt := range tests {
		if got := isSystemPath(tt.path); got != tt.want {
			t.Errorf("isSystemPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestSamplerFill(t *testing.T) {
	s := newSampler(1)
	s.files["/etc/hosts"] = struct{}{}
	s.fileOrder = []string{"/etc/hosts"}
	s.conns["k"] = models.NetworkActivity{Type: "connect", Target: "10.0.0.1:4444"}
	s.connOrder = []string{"k"}
	s.children[42] = "sh"
	s.childOrder = []int32{42}
	s.peakRSS = 1024
	s.sampledOnce = true

	var report Report
	s.fill(&report)

	if len(report.FileActivities) != 1 || !report.FileActivities[0].IsSensitive {
		t.Errorf("file activities = %+v", report.FileActivities)
	}
	if len(report.NetworkActivities) != 1 || report.NetworkActivities[0].Target != "10.0.0.1:4444" {
		t.Errorf("network activities = %+v", report.NetworkActivities)
	}
	if len(report.MemoryFindings) != 1 || report.MemoryFindings[0].Type != "memory_usage" {
		t.Errorf("memory findings = %+v", report.MemoryFindings)
	}
	if len(report.Events) != 1 || report.Events[0].Category != models.CategorySyscall {
		t.Errorf("events = %+v", report.Events)
	}
	if report.Events[0].Level != models.LevelAlert {
		t.Errorf("spawn event level = %q, want ALERT", report.Events[0].Level)
	}
}

func TestSamplerFillNoSamples(t *testing.T) {
	var report Report
	newSampler(1).fill(&report)
	if report.MemoryFindings != nil {
		t.Errorf("memory findings without samples: %+v", report.MemoryFindings)
	}
}

func TestFindGoRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module demo\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	pkg := filepath.Join(root, "cmd", "demo")
	if err := os.MkdirAll(pkg, 0o755); err != nil {
		t.Fatal(err)
	}

	if got := findGoRoot(pkg); got != root {
		t.Errorf("findGoRoot() = %q, want %q", got, root)
	}
	if got := relOrDot(root, pkg); got != "cmd/demo" {
		t.Errorf("relOrDot() = %q, want cmd/demo", got)
	}

	// No marker anywhere under the temp tree falls back to the dir
	lone := t.TempDir()
	if got := findGoRoot(lone); got != lone {
		t.Errorf("findGoRoot() without marker = %q, want %q", got, lone)
	}
}

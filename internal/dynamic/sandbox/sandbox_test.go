package sandbox

import (
	"testing"
	"time"

	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

func TestParseLogLine(t *testing.T) {
	line := "[2025-03-01 10:15:30.123] [ALERT] SYSCALL: os.system('ls -la') | stack=/tmp/mal.py:4 -> /tmp/mal.py:12"

	ev, ok := ParseLogLine(line)
	if !ok {
		t.Fatal("ParseLogLine() failed to match")
	}
	if ev.Level != models.LevelAlert {
		t.Errorf("level = %q, want ALERT", ev.Level)
	}
	if ev.Category != models.CategorySyscall {
		t.Errorf("category = %q, want SYSCALL", ev.Category)
	}
	if ev.Detail != "os.system('ls -la')" {
		t.Errorf("detail = %q", ev.Detail)
	}
	if len(ev.Stack) != 2 || ev.Stack[1].Line != 12 || ev.Stack[1].File != "/tmp/mal.py" {
		t.Errorf("stack = %+v", ev.Stack)
	}
	want := time.Date(2025, 3, 1, 10, 15, 30, 123_000_000, time.Local)
	if !ev.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", ev.Timestamp, want)
	}
	if ev.Raw != line {
		t.Errorf("raw line not preserved")
	}
}

func TestParseLogLineNoStack(t *testing.T) {
	ev, ok := ParseLogLine("[2025-03-01 10:15:30.123] [INFO] FILE: open('/tmp/out.txt', 'w')")
	if !ok {
		t.Fatal("ParseLogLine() failed to match")
	}
	if ev.Detail != "open('/tmp/out.txt', 'w')" {
		t.Errorf("detail = %q", ev.Detail)
	}
	if ev.Stack != nil {
		t.Errorf("stack = %+v, want none", ev.Stack)
	}
}

func TestParseLogLineGarbage(t *testing.T) {
	if _, ok := ParseLogLine("Traceback (most recent call last):"); ok {
		t.Error("non-log line should not parse")
	}
}

func TestParseStackWindowsPath(t *testing.T) {
	frames := parseStack(`C:\work\mal.py:7`)
	if len(frames) != 1 || frames[0].File != `C:\work\mal.py` || frames[0].Line != 7 {
		t.Errorf("frames = %+v", frames)
	}
}

func TestIsSensitivePath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/etc/passwd", true},
		{"/home/user/.env", true},
		{`C:\proj\.git\config`, true},
		{"/app/secrets.json", true},
		{"/home/user/.ssh/id_rsa", true},
		{"/tmp/out.txt", false},
		{"main.py", false},
	}
	for _, tt := range tests {
		if got := IsSensitivePath(tt.path); got != tt.want {
			t.Errorf("IsSensitivePath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestHookSetEnvValue(t *testing.T) {
	if got := DefaultHookSet().envValue(); got != "SYSCALL,NETWORK,FILE,CODE_EXEC,MEMORY" {
		t.Errorf("envValue() = %q", got)
	}
	partial := RuntimeHookSet{Syscall: true, Memory: true}
	if got := partial.envValue(); got != "SYSCALL,MEMORY" {
		t.Errorf("envValue() = %q", got)
	}
}

func TestExtractNetwork(t *testing.T) {
	events := []models.RuntimeEvent{
		{Category: models.CategoryNetwork, Detail: "socket.connect(('10.0.0.1', 4444))", Raw: "raw1"},
		{Category: models.CategorySyscall, Detail: "os.system('ls')"},
	}
	activities := ExtractNetwork(events)
	if len(activities) != 1 {
		t.Fatalf("activities = %d, want 1", len(activities))
	}
	if activities[0].Type != "connect" {
		t.Errorf("type = %q, want connect", activities[0].Type)
	}
	if activities[0].Target != "('10.0.0.1', 4444)" {
		t.Errorf("target = %q", activities[0].Target)
	}
	if activities[0].Line != "raw1" {
		t.Errorf("line = %q", activities[0].Line)
	}
}

func TestExtractFiles(t *testing.T) {
	events := []models.RuntimeEvent{
		{Category: models.CategoryFile, Detail: "open('/etc/passwd', 'r')",
			Stack: []models.StackFrame{{File: "m.py", Line: 3}}},
		{Category: models.CategoryFile, Detail: "open('/etc/passwd', 'r')",
			Stack: []models.StackFrame{{File: "m.py", Line: 9}}},
		{Category: models.CategoryFile, Detail: "open('/tmp/out.txt', 'w')"},
		{Category: models.CategoryFile, Detail: "os.remove('/tmp/out.txt')"},
	}
	activities := ExtractFiles(events)
	if len(activities) != 3 {
		t.Fatalf("activities = %d, want 3: %+v", len(activities), activities)
	}

	read := activities[0]
	if read.Operation != "open" || !read.IsSensitive {
		t.Errorf("sensitive read = %+v", read)
	}
	if len(read.LineNumbers) != 2 || read.LineNumbers[0] != 3 || read.LineNumbers[1] != 9 {
		t.Errorf("line_numbers = %v, want [3 9]", read.LineNumbers)
	}

	if activities[1].Operation != "write" || activities[1].IsSensitive {
		t.Errorf("write = %+v", activities[1])
	}
	if activities[2].Operation != "delete" {
		t.Errorf("delete = %+v", activities[2])
	}
}

func TestExtractMemory(t *testing.T) {
	events := []models.RuntimeEvent{
		{Category: models.CategoryMemory, Detail: "ctypes.CDLL('libc.so.6')",
			Stack: []models.StackFrame{{File: "m.py", Line: 5}}},
	}
	findings := ExtractMemory(events)
	if len(findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(findings))
	}
	if findings[0].Type != "memory_api" {
		t.Errorf("type = %q", findings[0].Type)
	}
	if len(findings[0].LineNumbers) != 1 || findings[0].LineNumbers[0] != 5 {
		t.Errorf("line_numbers = %v, want [5]", findings[0].LineNumbers)
	}
}

package dynamic

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/SunXiangyuNico/OSS-Guardian/internal/config"
	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

func TestAnalyzeUnsupportedLanguage(t *testing.T) {
	e := NewEngine(config.DynamicConfig{}, zap.NewNop())
	results := e.Analyze(context.Background(), "whatever.rb", models.LangUnknown)
	if results == nil {
		t.Fatal("Analyze() returned nil")
	}
	if results.Note == "" {
		t.Error("unsupported language should carry a note")
	}
	if results.Events != nil || results.Execution != nil {
		t.Errorf("unsupported language produced observations: %+v", results)
	}
}

func TestAnalyzePythonMissingInterpreter(t *testing.T) {
	cfg := config.DynamicConfig{PythonPath: "definitely-not-a-real-python", Timeout: 5}
	e := NewEngine(cfg, zap.NewNop())
	results := e.Analyze(context.Background(), "target.py", models.LangPython)
	if !strings.Contains(results.Note, "skipped") {
		t.Errorf("note = %q, want degradation note", results.Note)
	}
}

func TestExecutionLogPath(t *testing.T) {
	if got := executionLogPath("", "/tmp/guardian-sandbox-1/sandbox_a.log"); got != "" {
		t.Errorf("executionLogPath() = %q, want empty for a deleted scratch dir", got)
	}
	if got := executionLogPath("/var/lib/guardian", "/var/lib/guardian/sandbox_a.log"); got == "" {
		t.Error("executionLogPath() dropped a log kept in the work dir")
	}
}

func TestAnalyzeGoMissingToolchain(t *testing.T) {
	cfg := config.DynamicConfig{GoPath: "definitely-not-a-real-go", Timeout: 5}
	e := NewEngine(cfg, zap.NewNop())
	results := e.Analyze(context.Background(), "target.go", models.LangGo)
	if !strings.Contains(results.Note, "skipped") {
		t.Errorf("note = %q, want degradation note", results.Note)
	}
}

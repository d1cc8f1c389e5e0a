package config

import (
	"testing"
)

func TestLanguageEnabled(t *testing.T) {
	tests := []struct {
		name      string
		languages []string
		lang      string
		expected  bool
	}{
		{"Empty list allows python", nil, "python", true},
		{"Empty list allows go", nil, "go", true},
		{"Listed language", []string{"python", "go"}, "go", true},
		{"Unlisted language", []string{"python"}, "java", false},
		{"Single language match", []string{"java"}, "java", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Languages: tt.languages}
			if got := cfg.LanguageEnabled(tt.lang); got != tt.expected {
				t.Errorf("LanguageEnabled(%q) = %v, want %v", tt.lang, got, tt.expected)
			}
		})
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"650K", 650 * 1024},
		{"2M", 2 * 1024 * 1024},
		{"1G", 1024 * 1024 * 1024},
		{"4096", 4096},
		{"", 2 * 1024 * 1024},
		{"abc", 2 * 1024 * 1024},
		{"0", 2 * 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseSize(tt.input, 2*1024*1024); got != tt.expected {
				t.Errorf("parseSize(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	// Test default config loading (without config file)
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	// Check defaults
	if cfg.MaxSize != "2M" {
		t.Errorf("Default max_size = %v, want %v", cfg.MaxSize, "2M")
	}

	if cfg.ReportFormat != "" {
		t.Errorf("Default report_format = %v, want %v", cfg.ReportFormat, "")
	}

	if !cfg.EnableTaint {
		t.Errorf("Default enable_taint = %v, want true", cfg.EnableTaint)
	}

	if cfg.Dynamic.Enabled {
		t.Errorf("Default dynamic.dyn_enabled = %v, want false", cfg.Dynamic.Enabled)
	}

	if cfg.Dynamic.Timeout != 30 {
		t.Errorf("Default dynamic.dyn_timeout = %v, want 30", cfg.Dynamic.Timeout)
	}

	if cfg.Dynamic.FuzzIterations != 10 {
		t.Errorf("Default dynamic.dyn_fuzz_iterations = %v, want 10", cfg.Dynamic.FuzzIterations)
	}

	// Check default exclude list
	expectedExclude := []string{".git", "node_modules", "vendor", ".svn", ".hg", "__pycache__"}
	if len(cfg.Exclude) != len(expectedExclude) {
		t.Errorf("Default exclude count = %v, want %v", len(cfg.Exclude), len(expectedExclude))
	}
}

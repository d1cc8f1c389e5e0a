package config

import (
	"runtime"

	"github.com/spf13/viper"
)

// Config represents the analyzer configuration
type Config struct {
	// Analysis settings
	Path      string   `mapstructure:"path"`       // file or directory to analyze
	Workers   int      `mapstructure:"workers"`    // number of worker goroutines
	MaxSize   string   `mapstructure:"max_size"`   // maximum file size to analyze
	Exclude   []string `mapstructure:"exclude"`    // directories to exclude
	Languages []string `mapstructure:"languages"`  // restrict analysis to these languages
	RulesPath string   `mapstructure:"rules_path"` // path to YAML rule files

	// Static engine toggles
	EnableTaint  bool `mapstructure:"enable_taint"`  // taint flow analysis
	EnableCFG    bool `mapstructure:"enable_cfg"`    // control-flow extraction
	EnableSyntax bool `mapstructure:"enable_syntax"` // syntax validity checking
	EnableDeps   bool `mapstructure:"enable_deps"`   // dependency manifest extraction

	// Dynamic engine settings
	Dynamic DynamicConfig `mapstructure:"dynamic"`

	// Report settings
	ReportFormat string `mapstructure:"report_format"` // json, markdown
	OutputFile   string `mapstructure:"output_file"`   // output file path
}

// DynamicConfig holds sandbox, monitor and fuzzer configuration
type DynamicConfig struct {
	Enabled        bool    `mapstructure:"dyn_enabled"`         // run dynamic engines at all
	PythonPath     string  `mapstructure:"dyn_python"`          // python interpreter for sandboxed runs
	GoPath         string  `mapstructure:"dyn_go"`              // go toolchain for compiled targets
	JavacPath      string  `mapstructure:"dyn_javac"`           // java compiler for compiled targets
	Timeout        int     `mapstructure:"dyn_timeout"`         // seconds per target run
	SampleInterval float64 `mapstructure:"dyn_sample_interval"` // process sampling interval, seconds
	FuzzEnabled    bool    `mapstructure:"dyn_fuzz"`            // run the fuzzer after the baseline run
	FuzzIterations int     `mapstructure:"dyn_fuzz_iterations"` // random inputs per fuzz session
	WorkDir        string  `mapstructure:"dyn_work_dir"`        // scratch directory for logs and builds
}

// LoadConfig loads configuration from environment variables and defaults
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("max_size", "2M")
	v.SetDefault("exclude", []string{".git", "node_modules", "vendor", ".svn", ".hg", "__pycache__"})
	v.SetDefault("rules_path", "configs/rules")
	v.SetDefault("enable_taint", true)
	v.SetDefault("enable_cfg", true)
	v.SetDefault("enable_syntax", true)
	v.SetDefault("enable_deps", true)
	v.SetDefault("report_format", "")

	// Dynamic defaults
	v.SetDefault("dynamic.dyn_enabled", false)
	v.SetDefault("dynamic.dyn_python", "python3")
	v.SetDefault("dynamic.dyn_go", "go")
	v.SetDefault("dynamic.dyn_javac", "javac")
	v.SetDefault("dynamic.dyn_timeout", 30)
	v.SetDefault("dynamic.dyn_sample_interval", 0.1)
	v.SetDefault("dynamic.dyn_fuzz", true)
	v.SetDefault("dynamic.dyn_fuzz_iterations", 10)
	v.SetDefault("dynamic.dyn_work_dir", "")

	// Read environment variables
	v.SetEnvPrefix("GUARDIAN")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LanguageEnabled reports whether analysis is enabled for the language.
// An empty language list means all supported languages are analyzed.
func (c *Config) LanguageEnabled(lang string) bool {
	if len(c.Languages) == 0 {
		return true
	}
	for _, l := range c.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// MaxSizeBytes parses the configured size limit into bytes.
// Unparseable values fall back to 2 MiB.
func (c *Config) MaxSizeBytes() int64 {
	return parseSize(c.MaxSize, 2*1024*1024)
}

// parseSize parses sizes like "650K", "2M", "1G" or plain byte counts
func parseSize(s string, fallback int64) int64 {
	if s == "" {
		return fallback
	}

	multiplier := int64(1)
	last := s[len(s)-1]
	switch last {
	case 'k', 'K':
		multiplier = 1024
		s = s[:len(s)-1]
	case 'm', 'M':
		multiplier = 1024 * 1024
		s = s[:len(s)-1]
	case 'g', 'G':
		multiplier = 1024 * 1024 * 1024
		s = s[:len(s)-1]
	}

	var n int64
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return fallback
		}
		n = n*10 + int64(ch-'0')
	}
	if n == 0 {
		return fallback
	}
	return n * multiplier
}

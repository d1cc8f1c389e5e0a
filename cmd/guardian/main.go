package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/SunXiangyuNico/OSS-Guardian/internal/config"
	"github.com/SunXiangyuNico/OSS-Guardian/internal/core"
	"github.com/SunXiangyuNico/OSS-Guardian/internal/rules"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorRed    = "\033[31m"
	colorOrange = "\033[38;5;208m"
	colorYellow = "\033[38;5;220m"
	colorGray   = "\033[38;5;245m"
	colorCyan   = "\033[36m"
)

var (
	logger  *zap.Logger
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "guardian",
		Short: "OSS Guardian - Security Analyzer for Open Source Packages",
		Long: `Static and dynamic security analysis for Python, Go, and Java source code.
Detects malicious patterns, taint flows, suspicious runtime behavior, and
assesses the overall risk of a package before you depend on it.`,
		Version: core.Version,
		Run: func(cmd *cobra.Command, args []string) {
			printBanner()
			cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(rulesCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// printBanner prints the startup banner
func printBanner() {
	fmt.Println()
	fmt.Printf("%s", colorOrange)
	fmt.Println(" ▄████▄  ▄█████ ▄█████     ▄████▄ ██  ██ ▄████▄ ████▄  ████▄  ██ ▄████▄ ███  ██")
	fmt.Println(" ██  ██  ▀████▄ ▀████▄     ██ ▄▄▄ ██  ██ ██▄▄██ ██▄▄█▀ ██  ██ ██ ██▄▄██ ██ ▀▄██")
	fmt.Println(" ▀████▀  █████▀ █████▀     ▀███▀█ ▀████▀ ██  ██ ██  ██ ████▀  ██ ██  ██ ██   ██")
	fmt.Printf("%s", colorReset)
	fmt.Println()
	fmt.Printf("%sSecurity Analyzer v%s%s\n", colorGray, core.Version, colorReset)
	fmt.Println()
}

// newLogger builds the CLI logger. Verbose mode gets the development
// encoder; otherwise only errors reach stderr.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapcore.ErrorLevel),
		Encoding:         "json",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig:    zap.NewProductionEncoderConfig(),
	}
	return cfg.Build()
}

// analyzeCmd creates the analyze command
func analyzeCmd() *cobra.Command {
	var (
		workers      int
		maxSize      string
		exclude      []string
		languages    []string
		rulesPath    string
		reportFormat string
		outputFile   string
		noTaint      bool
		noCFG        bool
		noSyntax     bool
		noDeps       bool
		dynamic      bool
		dynTimeout   int
		fuzz         bool
		fuzzIters    int
		workDir      string
	)

	cmd := &cobra.Command{
		Use:   "analyze [path]",
		Short: "Analyze a file or directory for security threats",
		Long: `Run the full analysis pipeline against a source file or a directory tree:
pattern matching, taint tracking, control-flow extraction, syntax checking,
dependency extraction, and (optionally) sandboxed execution with runtime
monitoring and fuzzing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			if err := validateFlags(reportFormat, languages); err != nil {
				fmt.Printf("\n  %s✗ Invalid parameter:%s %s\n\n", colorRed, colorReset, err.Error())
				return err
			}

			var err error
			logger, err = newLogger()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
				return err
			}
			defer logger.Sync()

			printBanner()
			fmt.Printf("  %sAnalyzing:%s %s\n", colorGray, colorReset, path)
			if dynamic {
				fmt.Printf("  %sDynamic:%s   enabled (sandboxed execution)\n", colorGray, colorReset)
			}
			fmt.Println()

			cfg, err := config.LoadConfig()
			if err != nil {
				logger.Error("Failed to load config", zap.Error(err))
				return err
			}

			// Override config with CLI flags
			if workers > 0 {
				cfg.Workers = workers
			}
			if maxSize != "" {
				cfg.MaxSize = maxSize
			}
			if len(exclude) > 0 {
				cfg.Exclude = exclude
			}
			if len(languages) > 0 {
				cfg.Languages = languages
			}
			if rulesPath != "" {
				cfg.RulesPath = rulesPath
			}
			if reportFormat != "" {
				cfg.ReportFormat = reportFormat
			}
			if outputFile != "" {
				cfg.OutputFile = outputFile
			}
			if noTaint {
				cfg.EnableTaint = false
			}
			if noCFG {
				cfg.EnableCFG = false
			}
			if noSyntax {
				cfg.EnableSyntax = false
			}
			if noDeps {
				cfg.EnableDeps = false
			}
			if dynamic {
				cfg.Dynamic.Enabled = true
			}
			if dynTimeout > 0 {
				cfg.Dynamic.Timeout = dynTimeout
			}
			if cmd.Flags().Changed("fuzz") {
				cfg.Dynamic.FuzzEnabled = fuzz
			}
			if fuzzIters > 0 {
				cfg.Dynamic.FuzzIterations = fuzzIters
			}
			if workDir != "" {
				cfg.Dynamic.WorkDir = workDir
			}

			scanner := core.NewScanner(cfg, logger)

			lastPhase := ""
			scanner.SetProgressCallback(func(phase string, current, total int, message string) {
				if lastPhase == phase && phase != "counting" && phase != "started" {
					fmt.Print("\033[1A\033[K")
				}
				lastPhase = phase

				switch phase {
				case "counting":
					if current == 0 && total == 0 {
						fmt.Printf("\n  %sStarting analysis...%s\n", colorReset, colorReset)
					}
					if total > 0 {
						fmt.Printf("  %sFiles:%s      %s\n", colorGray, colorReset, message)
					}
				case "analyzing":
					if total > 0 {
						pct := float64(current) / float64(total) * 100
						barWidth := 30
						filled := int(float64(barWidth) * float64(current) / float64(total))
						bar := fmt.Sprintf("%s%s", strings.Repeat("█", filled), strings.Repeat("░", barWidth-filled))
						fmt.Printf("  %sAnalyzing:%s [%s%s%s] %s%.1f%%%s (%d/%d)\n",
							colorGray, colorReset, colorOrange, bar, colorReset, colorOrange, pct, colorReset, current, total)
					}
				}
			})

			results, err := scanner.Scan(path)
			if err != nil {
				logger.Error("Analysis failed", zap.Error(err))
				return err
			}

			if results.ReportPath != "" {
				fmt.Printf("  %sReport:%s    %s%s%s\n", colorGray, colorReset, colorOrange, results.ReportPath, colorReset)
				fmt.Println()
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Number of worker goroutines (default: CPU cores)")
	cmd.Flags().StringVar(&maxSize, "max-size", "", "Maximum file size to analyze (default: 2M)")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Directories to exclude (comma-separated)")
	cmd.Flags().StringSliceVar(&languages, "languages", nil, "Restrict analysis to languages: python, go, java")
	cmd.Flags().StringVar(&rulesPath, "rules", "", "Path to YAML rule directory (default: configs/rules)")
	cmd.Flags().StringVarP(&reportFormat, "report", "r", "", "Report format: json, md (default: console output)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path")
	cmd.Flags().BoolVar(&noTaint, "no-taint", false, "Disable taint flow analysis")
	cmd.Flags().BoolVar(&noCFG, "no-cfg", false, "Disable control-flow extraction")
	cmd.Flags().BoolVar(&noSyntax, "no-syntax", false, "Disable syntax checking")
	cmd.Flags().BoolVar(&noDeps, "no-deps", false, "Disable dependency extraction")
	cmd.Flags().BoolVar(&dynamic, "dynamic", false, "Enable sandboxed execution and runtime monitoring")
	cmd.Flags().IntVar(&dynTimeout, "timeout", 0, "Seconds per sandboxed run (default: 30)")
	cmd.Flags().BoolVar(&fuzz, "fuzz", true, "Run the fuzzer after the baseline sandboxed run")
	cmd.Flags().IntVar(&fuzzIters, "fuzz-iterations", 0, "Random inputs per fuzz session (default: 10)")
	cmd.Flags().StringVar(&workDir, "work-dir", "", "Scratch directory for sandbox logs and builds")

	return cmd
}

// rulesCmd creates the rules listing command
func rulesCmd() *cobra.Command {
	var rulesPath string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List loaded detection rules",
		Long:  `Display the built-in detection rules plus any rules loaded from the YAML rule directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			rs, err := rules.NewLoader(rulesPath, logger).Load()
			if err != nil {
				return fmt.Errorf("failed to load rules: %w", err)
			}

			byLanguage := make(map[string][]string)
			for _, rule := range rs.Rules {
				lang := rule.Language
				if lang == "" {
					lang = "all"
				}
				byLanguage[lang] = append(byLanguage[lang], fmt.Sprintf(
					"  %s%-30s%s %s%-8s%s %s",
					colorBold, rule.ID, colorReset,
					severityColor(string(rule.Severity)), strings.ToUpper(string(rule.Severity)), colorReset,
					rule.Name))
			}

			langs := make([]string, 0, len(byLanguage))
			for lang := range byLanguage {
				langs = append(langs, lang)
			}
			sort.Strings(langs)

			fmt.Printf("\n%s%sDETECTION RULES%s (%d total)\n\n", colorBold, colorOrange, colorReset, len(rs.Rules))
			for _, lang := range langs {
				fmt.Printf("%s%s%s\n", colorCyan, strings.ToUpper(lang), colorReset)
				lines := byLanguage[lang]
				sort.Strings(lines)
				for _, line := range lines {
					fmt.Println(line)
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rulesPath, "rules", "configs/rules", "Path to YAML rule directory")

	return cmd
}

// versionCmd creates the version command
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the analyzer version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("guardian %s\n", core.Version)
		},
	}
}

// validateFlags validates CLI flag values
func validateFlags(reportFormat string, languages []string) error {
	if reportFormat != "" {
		validFormats := []string{"json", "md", "markdown"}
		if !contains(validFormats, reportFormat) {
			return fmt.Errorf("--report must be one of: %s (got: %s)", strings.Join(validFormats, ", "), reportFormat)
		}
	}

	validLangs := []string{"python", "go", "java"}
	for _, lang := range languages {
		if !contains(validLangs, lang) {
			return fmt.Errorf("--languages must be from: %s (got: %s)", strings.Join(validLangs, ", "), lang)
		}
	}

	return nil
}

// severityColor returns the ANSI color for a rule severity label
func severityColor(severity string) string {
	switch severity {
	case "critical":
		return colorRed + colorBold
	case "high":
		return colorOrange
	case "medium":
		return colorYellow
	default:
		return colorGray
	}
}

// contains checks if a slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

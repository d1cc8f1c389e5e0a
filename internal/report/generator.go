package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/SunXiangyuNico/OSS-Guardian/internal/config"
	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorWhite  = "\033[37m"
	colorOrange = "\033[38;5;208m"
	colorGray   = "\033[38;5;245m"
)

// FormatDuration formats duration to a human-readable string with max 2 decimal places
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	} else if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	} else if d < time.Hour {
		mins := int(d.Minutes())
		secs := d.Seconds() - float64(mins*60)
		return fmt.Sprintf("%dm%.2fs", mins, secs)
	}
	hours := int(d.Hours())
	mins := int(d.Minutes()) - hours*60
	secs := d.Seconds() - float64(hours*3600) - float64(mins*60)
	return fmt.Sprintf("%dh%dm%.2fs", hours, mins, secs)
}

// Generator generates analysis reports in various formats
type Generator struct {
	config *config.Config
	logger *zap.Logger
}

// NewGenerator creates a new report generator
func NewGenerator(cfg *config.Config, logger *zap.Logger) (*Generator, error) {
	return &Generator{
		config: cfg,
		logger: logger,
	}, nil
}

// Generate writes the report in the configured format. An empty format
// prints to the console and returns no path.
func (g *Generator) Generate(results *models.ProjectResults) (string, error) {
	format := g.config.ReportFormat
	outputFile := g.config.OutputFile

	if format == "" {
		g.printConsole(results)
		return "", nil
	}

	if outputFile == "" {
		timestamp := time.Now().Format("20060102-150405")
		switch format {
		case "json":
			outputFile = fmt.Sprintf("GUARDIAN-REPORT-%s.json", timestamp)
		case "md", "markdown":
			outputFile = fmt.Sprintf("GUARDIAN-REPORT-%s.md", timestamp)
		default:
			return "", fmt.Errorf("unknown report format: %s", format)
		}
	}

	g.logger.Info("Generating report",
		zap.String("format", format),
		zap.String("output", outputFile))

	var err error
	switch format {
	case "json":
		err = g.generateJSON(results, outputFile)
	case "md", "markdown":
		err = g.generateMarkdown(results, outputFile)
	default:
		return "", fmt.Errorf("unknown report format: %s", format)
	}

	if err != nil {
		return "", fmt.Errorf("failed to generate %s report: %w", format, err)
	}

	absPath, _ := filepath.Abs(outputFile)
	return absPath, nil
}

// printConsole prints results to stdout with colors
func (g *Generator) printConsole(results *models.ProjectResults) {
	fmt.Println()

	fmt.Printf("%s%sANALYSIS COMPLETE%s\n", colorBold, colorOrange, colorReset)
	fmt.Println()

	fmt.Printf("  %sPath:%s      %s\n", colorGray, colorReset, results.ScanPath)
	fmt.Printf("  %sFiles:%s     %d analyzed, %d skipped, %d errors\n",
		colorGray, colorReset, results.AnalyzedFiles, results.SkippedFiles, results.ErrorFiles)
	fmt.Printf("  %sDuration:%s  %s\n", colorGray, colorReset, FormatDuration(results.Duration))
	if results.Risk != nil {
		riskColor := getSeverityColor(results.Risk.Level)
		fmt.Printf("  %sRisk:%s      %s%d/100 (%s)%s\n",
			colorGray, colorReset, riskColor, results.Risk.Score,
			strings.ToUpper(string(results.Risk.Level)), colorReset)
	}
	fmt.Println()

	threatsFound := results.ThreatsFound()
	if threatsFound == 0 {
		fmt.Printf("  %s%s✓ No threats detected%s\n", colorBold, colorGreen, colorReset)
		fmt.Println()
		return
	}

	fmt.Printf("  %s%s⚠ THREATS FOUND: %d%s\n", colorBold, colorRed, threatsFound, colorReset)
	fmt.Println()
	fmt.Printf("%s───────────────────────────────────────────────────────────────%s\n", colorGray, colorReset)

	n := 0
	for _, result := range results.Results {
		for _, threat := range result.Threats {
			n++
			severityColor := getSeverityColor(threat.Severity)
			severityLabel := strings.ToUpper(string(threat.Severity))

			fmt.Printf("\n  %s%s[%d]%s %s%s%s\n", colorBold, colorWhite, n, colorReset, colorBold, threat.Category, colorReset)
			fmt.Printf("      %sSeverity:%s  %s%s%s\n", colorGray, colorReset, severityColor, severityLabel, colorReset)
			fmt.Printf("      %sFile:%s      %s%s%s\n", colorGray, colorReset, colorOrange, result.FilePath, colorReset)
			if len(threat.LineNumbers) > 0 {
				fmt.Printf("      %sLines:%s     %s%s%s\n", colorGray, colorReset, colorRed, formatLines(threat.LineNumbers), colorReset)
			}
			if len(threat.Evidence) > 0 {
				evidence := cleanFragment(threat.Evidence[0], 120)
				fmt.Printf("      %sEvidence:%s  %s%s%s\n", colorGray, colorReset, colorDim, evidence, colorReset)
			}
		}
	}

	fmt.Println()
	fmt.Printf("%s───────────────────────────────────────────────────────────────%s\n", colorGray, colorReset)
	fmt.Println()
}

// getSeverityColor returns ANSI color for severity level
func getSeverityColor(severity models.Severity) string {
	switch severity {
	case models.SeverityCritical:
		return colorRed + colorBold
	case models.SeverityHigh:
		return colorOrange
	case models.SeverityMedium:
		return colorYellow
	case models.SeverityLow:
		return colorGreen
	case models.SeverityInfo:
		return colorBlue
	default:
		return colorWhite
	}
}

// formatLines renders line numbers as a comma-separated list
func formatLines(lines []int) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = fmt.Sprintf("%d", l)
	}
	return strings.Join(parts, ", ")
}

// cleanFragment cleans and truncates evidence text for console output
func cleanFragment(fragment string, maxLen int) string {
	fragment = strings.ReplaceAll(fragment, "\n", " ")
	fragment = strings.ReplaceAll(fragment, "\r", "")
	fragment = strings.ReplaceAll(fragment, "\t", " ")

	// Collapse multiple spaces
	for strings.Contains(fragment, "  ") {
		fragment = strings.ReplaceAll(fragment, "  ", " ")
	}

	fragment = strings.TrimSpace(fragment)

	if len(fragment) > maxLen {
		fragment = fragment[:maxLen] + "..."
	}

	return fragment
}

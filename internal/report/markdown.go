package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

// generateMarkdown generates a Markdown report
func (g *Generator) generateMarkdown(results *models.ProjectResults, outputFile string) error {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# OSS Guardian Analysis Report v%s\n\n", results.Version))

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Parameter | Value |\n")
	sb.WriteString("|-----------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Analysis Path | `%s` |\n", results.ScanPath))
	sb.WriteString(fmt.Sprintf("| Start Time | %s |\n", results.StartTime.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("| End Time | %s |\n", results.EndTime.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("| Duration | %s |\n", FormatDuration(results.Duration)))
	sb.WriteString(fmt.Sprintf("| Total Files | %d |\n", results.TotalFiles))
	sb.WriteString(fmt.Sprintf("| Analyzed Files | %d |\n", results.AnalyzedFiles))
	sb.WriteString(fmt.Sprintf("| Skipped Files | %d |\n", results.SkippedFiles))
	sb.WriteString(fmt.Sprintf("| Error Files | %d |\n", results.ErrorFiles))
	if results.Risk != nil {
		sb.WriteString(fmt.Sprintf("| **Risk Score** | **%d/100 (%s)** |\n",
			results.Risk.Score, strings.ToUpper(string(results.Risk.Level))))
	}
	sb.WriteString(fmt.Sprintf("| **Threats Found** | **%d** |\n", results.ThreatsFound()))
	sb.WriteString("\n")

	if results.ThreatsFound() == 0 {
		sb.WriteString("> ✅ **No threats detected**\n\n")
		return os.WriteFile(outputFile, []byte(sb.String()), 0644)
	}

	// Findings by severity
	sb.WriteString("## Findings by Severity\n\n")
	sb.WriteString("| Severity | Count |\n")
	sb.WriteString("|----------|-------|\n")
	for _, row := range []struct {
		severity models.Severity
		count    int
	}{
		{models.SeverityCritical, results.Breakdown.Critical},
		{models.SeverityHigh, results.Breakdown.High},
		{models.SeverityMedium, results.Breakdown.Medium},
		{models.SeverityLow, results.Breakdown.Low},
	} {
		if row.count > 0 {
			emoji := getSeverityEmoji(row.severity)
			sb.WriteString(fmt.Sprintf("| %s %s | %d |\n",
				emoji, strings.ToUpper(string(row.severity)), row.count))
		}
	}
	sb.WriteString("\n")

	// Detailed threats
	sb.WriteString("## Detailed Threats\n\n")

	n := 0
	for _, result := range results.Results {
		for _, threat := range result.Threats {
			n++
			emoji := getSeverityEmoji(threat.Severity)
			sb.WriteString(fmt.Sprintf("### %d. %s %s\n\n", n, emoji, threat.Category))

			sb.WriteString("| Field | Value |\n")
			sb.WriteString("|-------|-------|\n")
			sb.WriteString(fmt.Sprintf("| File | `%s` |\n", result.FilePath))
			sb.WriteString(fmt.Sprintf("| Language | %s |\n", result.Language.DisplayName()))
			sb.WriteString(fmt.Sprintf("| Severity | %s |\n", strings.ToUpper(string(threat.Severity))))
			if len(threat.LineNumbers) > 0 {
				sb.WriteString(fmt.Sprintf("| Lines | %s |\n", formatLines(threat.LineNumbers)))
			}
			sb.WriteString("\n")

			if threat.Description != "" {
				sb.WriteString(fmt.Sprintf("**Description:** %s\n\n", threat.Description))
			}

			if len(threat.Evidence) > 0 {
				sb.WriteString("**Evidence:**\n\n")
				for _, evidence := range threat.Evidence {
					sb.WriteString(fmt.Sprintf("- `%s`\n", cleanFragment(evidence, 200)))
				}
				sb.WriteString("\n")
			}

			sb.WriteString("---\n\n")
		}
	}

	// Per-file risk table
	sb.WriteString("## Risk by File\n\n")
	sb.WriteString("| File | Language | Score | Level | Threats |\n")
	sb.WriteString("|------|----------|-------|-------|--------|\n")
	for _, result := range results.Results {
		if result.Risk == nil || result.Skipped {
			continue
		}
		sb.WriteString(fmt.Sprintf("| `%s` | %s | %d | %s | %d |\n",
			result.FilePath,
			result.Language.DisplayName(),
			result.Risk.Score,
			strings.ToUpper(string(result.Risk.Level)),
			len(result.Threats)))
	}
	sb.WriteString("\n")

	sb.WriteString("---\n\n")
	sb.WriteString("*Generated by OSS Guardian*\n")

	return os.WriteFile(outputFile, []byte(sb.String()), 0644)
}

// getSeverityEmoji returns emoji for severity level
func getSeverityEmoji(severity models.Severity) string {
	switch severity {
	case models.SeverityCritical:
		return "🔴"
	case models.SeverityHigh:
		return "🟠"
	case models.SeverityMedium:
		return "🟡"
	case models.SeverityLow:
		return "🟢"
	case models.SeverityInfo:
		return "🔵"
	default:
		return "⚪"
	}
}

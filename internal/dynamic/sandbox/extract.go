package sandbox

import (
	"regexp"
	"strings"

	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

var quotedRe = regexp.MustCompile(`'([^']*)'`)

// ExtractNetwork turns NETWORK events into network activity records.
func ExtractNetwork(events []models.RuntimeEvent) []models.NetworkActivity {
	var activities []models.NetworkActivity
	for _, ev := range events {
		if ev.Category != models.CategoryNetwork {
			continue
		}
		activities = append(activities, models.NetworkActivity{
			Type:      networkType(ev.Detail),
			Target:    callArgument(ev.Detail),
			Timestamp: ev.Timestamp,
			Line:      ev.Raw,
		})
	}
	return activities
}

func networkType(detail string) string {
	switch {
	case strings.Contains(detail, "bind"):
		return "bind"
	case strings.Contains(detail, "getaddrinfo") || strings.Contains(detail, "gethostbyname"):
		return "dns"
	default:
		return "connect"
	}
}

// callArgument returns the text inside the outermost parentheses of a
// hooked-call detail string.
func callArgument(detail string) string {
	open := strings.Index(detail, "(")
	close := strings.LastIndex(detail, ")")
	if open < 0 || close <= open {
		return detail
	}
	return detail[open+1 : close]
}

// ExtractFiles turns FILE events into per-path activity records,
// merging repeated operations on the same path.
func ExtractFiles(events []models.RuntimeEvent) []models.FileActivity {
	type key struct {
		op, path, mode string
	}
	index := make(map[key]int)
	var activities []models.FileActivity

	for _, ev := range events {
		if ev.Category != models.CategoryFile {
			continue
		}

		path, mode := fileArgs(ev.Detail)
		if path == "" {
			continue
		}
		op := fileOperation(ev.Detail, mode)

		k := key{op, path, mode}
		idx, seen := index[k]
		if !seen {
			index[k] = len(activities)
			activities = append(activities, models.FileActivity{
				Operation:   op,
				Path:        path,
				Mode:        mode,
				IsSensitive: IsSensitivePath(path),
			})
			idx = index[k]
		}
		if line := lastStackLine(ev.Stack); line > 0 {
			activities[idx].LineNumbers = appendUniqueLine(activities[idx].LineNumbers, line)
		}
	}
	return activities
}

// fileArgs extracts the path and, when present, the mode from details
// like open('/etc/passwd', 'r').
func fileArgs(detail string) (path, mode string) {
	args := quotedRe.FindAllStringSubmatch(detail, 2)
	if len(args) > 0 {
		path = args[0][1]
	}
	if len(args) > 1 {
		mode = args[1][1]
	}
	return path, mode
}

func fileOperation(detail, mode string) string {
	switch {
	case strings.HasPrefix(detail, "os.remove") || strings.HasPrefix(detail, "os.unlink"):
		return "delete"
	case strings.ContainsAny(mode, "wa+"):
		return "write"
	default:
		return "open"
	}
}

// ExtractMemory turns MEMORY events into findings.
func ExtractMemory(events []models.RuntimeEvent) []models.MemoryFinding {
	var findings []models.MemoryFinding
	for _, ev := range events {
		if ev.Category != models.CategoryMemory {
			continue
		}
		finding := models.MemoryFinding{
			Type:   "memory_api",
			Detail: ev.Detail,
		}
		if line := lastStackLine(ev.Stack); line > 0 {
			finding.LineNumbers = []int{line}
		}
		findings = append(findings, finding)
	}
	return findings
}

// lastStackLine returns the innermost frame's line, the call site
// inside the target.
func lastStackLine(stack []models.StackFrame) int {
	if len(stack) == 0 {
		return 0
	}
	return stack[len(stack)-1].Line
}

func appendUniqueLine(lines []int, line int) []int {
	for _, l := range lines {
		if l == line {
			return lines
		}
	}
	return append(lines, line)
}

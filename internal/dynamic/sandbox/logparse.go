package sandbox

import (
	"bufio"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

const logTimeLayout = "2006-01-02 15:04:05.000"

var logLineRe = regexp.MustCompile(`^\[([^\]]+)\] \[(ALERT|INFO)\] (\w+): (.*)$`)

// ParseLogFile reads a hook log and returns its events in file order.
// A missing log means the target emitted nothing.
func ParseLogFile(path string) ([]models.RuntimeEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var events []models.RuntimeEvent
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if ev, ok := ParseLogLine(scanner.Text()); ok {
			events = append(events, ev)
		}
	}
	return events, scanner.Err()
}

// ParseLogLine parses one hook log line of the form
//
//	[ts] [LEVEL] CATEGORY: detail | stack=file:line -> file:line
func ParseLogLine(line string) (models.RuntimeEvent, bool) {
	m := logLineRe.FindStringSubmatch(line)
	if m == nil {
		return models.RuntimeEvent{}, false
	}

	ev := models.RuntimeEvent{
		Level:    models.EventLevel(m[2]),
		Category: models.EventCategory(m[3]),
		Raw:      line,
	}
	if ts, err := time.ParseInLocation(logTimeLayout, m[1], time.Local); err == nil {
		ev.Timestamp = ts
	}

	rest := m[4]
	if idx := strings.LastIndex(rest, " | stack="); idx >= 0 {
		ev.Detail = rest[:idx]
		ev.Stack = parseStack(rest[idx+len(" | stack="):])
	} else {
		ev.Detail = rest
	}
	return ev, true
}

// parseStack splits "file:line -> file:line" frames. The line number
// follows the last colon so Windows drive letters survive.
func parseStack(s string) []models.StackFrame {
	var frames []models.StackFrame
	for _, part := range strings.Split(s, " -> ") {
		part = strings.TrimSpace(part)
		idx := strings.LastIndex(part, ":")
		if idx <= 0 {
			continue
		}
		line, err := strconv.Atoi(part[idx+1:])
		if err != nil {
			continue
		}
		frames = append(frames, models.StackFrame{File: part[:idx], Line: line})
	}
	return frames
}

// Package procmon runs compiled targets under OS-level observation,
// sampling open files, sockets, memory and child processes while the
// target executes.
package procmon

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"

	"github.com/SunXiangyuNico/OSS-Guardian/internal/config"
	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

// systemPathMarkers flag access to system directories during a run.
var systemPathMarkers = []string{
	`\windows\system32`,
	`\windows\syswow64`,
	`\users\`,
	"/etc/",
	"/var/",
	"/root/",
	"/home/",
	"/usr/",
}

// isSystemPath reports whether the path sits under a system directory.
func isSystemPath(path string) bool {
	lowered := strings.ToLower(path)
	for _, marker := range systemPathMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

// Report is everything observed while monitoring one target run.
type Report struct {
	Execution         *models.ExecutionResult
	Events            []models.RuntimeEvent
	FileActivities    []models.FileActivity
	NetworkActivities []models.NetworkActivity
	MemoryFindings    []models.MemoryFinding
	MonitorError      string // non-fatal sampling failure
}

// Monitor samples a running process through the OS process table.
type Monitor struct {
	cfg    config.DynamicConfig
	logger *zap.Logger
}

// NewMonitor creates a process monitor.
func NewMonitor(cfg config.DynamicConfig, logger *zap.Logger) *Monitor {
	return &Monitor{cfg: cfg, logger: logger}
}

// Run starts the command and samples it until exit or timeout.
// Sampling failures (access denied, racing process exit) are recorded
// in the report, never returned as errors.
func (m *Monitor) Run(ctx context.Context, name string, args []string, dir string) (*Report, error) {
	timeout := time.Duration(m.cfg.Timeout) * time.Second
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start target: %w", err)
	}

	report := &Report{}
	sampler := newSampler(int32(cmd.Process.Pid))

	interval := time.Duration(m.cfg.SampleInterval * float64(time.Second))
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var waitErr error
sampling:
	for {
		select {
		case waitErr = <-done:
			break sampling
		case <-ticker.C:
			if err := sampler.sample(); err != nil {
				report.MonitorError = err.Error()
			}
		}
	}
	duration := time.Since(start)

	result := &models.ExecutionResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: duration,
	}
	switch {
	case runCtx.Err() == context.DeadlineExceeded:
		result.TimedOut = true
		result.ReturnCode = -1
		result.Stderr = fmt.Sprintf("Execution timed out after %ds", m.cfg.Timeout)
	case waitErr != nil:
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			result.ReturnCode = exitErr.ExitCode()
		} else {
			return nil, fmt.Errorf("wait target: %w", waitErr)
		}
	}
	report.Execution = result

	sampler.fill(report)
	m.logger.Debug("Monitored run finished",
		zap.String("target", name),
		zap.Int("return_code", result.ReturnCode),
		zap.Int("files", len(report.FileActivities)),
		zap.Int("connections", len(report.NetworkActivities)))
	return report, nil
}

// sampler accumulates deduplicated observations across sampling ticks.
type sampler struct {
	pid int32

	files       map[string]struct{}
	fileOrder   []string
	conns       map[string]models.NetworkActivity
	connOrder   []string
	children    map[int32]string
	childOrder  []int32
	peakRSS     uint64
	peakVMS     uint64
	sampledOnce bool
}

func newSampler(pid int32) *sampler {
	return &sampler{
		pid:      pid,
		files:    make(map[string]struct{}),
		conns:    make(map[string]models.NetworkActivity),
		children: make(map[int32]string),
	}
}

func (s *sampler) sample() error {
	proc, err := process.NewProcess(s.pid)
	if err != nil {
		// Short-lived targets exit between ticks
		return nil
	}

	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if open, err := proc.OpenFiles(); err != nil {
		record(err)
	} else {
		for _, f := range open {
			if _, seen := s.files[f.Path]; !seen {
				s.files[f.Path] = struct{}{}
				s.fileOrder = append(s.fileOrder, f.Path)
			}
		}
	}

	if conns, err := proc.Connections(); err != nil {
		record(err)
	} else {
		for _, c := range conns {
			laddr := fmt.Sprintf("%s:%d", c.Laddr.IP, c.Laddr.Port)
			raddr := fmt.Sprintf("%s:%d", c.Raddr.IP, c.Raddr.Port)
			key := laddr + "|" + raddr + "|" + c.Status
			if _, seen := s.conns[key]; seen {
				continue
			}
			activity := models.NetworkActivity{
				Timestamp: time.Now(),
				Line:      fmt.Sprintf("pid=%d laddr=%s raddr=%s status=%s", c.Pid, laddr, raddr, c.Status),
			}
			if c.Raddr.IP != "" {
				activity.Type = "connect"
				activity.Target = raddr
			} else {
				activity.Type = "bind"
				activity.Target = laddr
			}
			s.conns[key] = activity
			s.connOrder = append(s.connOrder, key)
		}
	}

	if mem, err := proc.MemoryInfo(); err != nil {
		record(err)
	} else {
		if mem.RSS > s.peakRSS {
			s.peakRSS = mem.RSS
		}
		if mem.VMS > s.peakVMS {
			s.peakVMS = mem.VMS
		}
		s.sampledOnce = true
	}

	if kids, err := proc.Children(); err == nil {
		for _, kid := range kids {
			if _, seen := s.children[kid.Pid]; seen {
				continue
			}
			name, _ := kid.Name()
			s.children[kid.Pid] = name
			s.childOrder = append(s.childOrder, kid.Pid)
		}
	}

	return firstErr
}

// fill converts the accumulated samples into report records.
func (s *sampler) fill(report *Report) {
	for _, path := range s.fileOrder {
		report.FileActivities = append(report.FileActivities, models.FileActivity{
			Operation:   "open",
			Path:        path,
			IsSensitive: isSystemPath(path),
		})
	}
	for _, key := range s.connOrder {
		report.NetworkActivities = append(report.NetworkActivities, s.conns[key])
	}
	if s.sampledOnce {
		report.MemoryFindings = append(report.MemoryFindings, models.MemoryFinding{
			Type:   "memory_usage",
			Detail: fmt.Sprintf("peak rss=%d vms=%d", s.peakRSS, s.peakVMS),
		})
	}
	for _, pid := range s.childOrder {
		report.Events = append(report.Events, models.RuntimeEvent{
			Timestamp: time.Now(),
			Level:     models.LevelAlert,
			Category:  models.CategorySyscall,
			Detail:    fmt.Sprintf("process_spawn: pid=%d name=%s", pid, s.children[pid]),
			Raw:       fmt.Sprintf("process_spawn: pid=%d name=%s", pid, s.children[pid]),
		})
	}
}

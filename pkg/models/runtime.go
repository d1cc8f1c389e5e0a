package models

import "time"

// EventLevel marks how alarming a runtime event is
type EventLevel string

const (
	LevelAlert EventLevel = "ALERT"
	LevelInfo  EventLevel = "INFO"
)

// EventCategory groups runtime events by the hooked entry point family
type EventCategory string

const (
	CategorySyscall  EventCategory = "SYSCALL"
	CategoryNetwork  EventCategory = "NETWORK"
	CategoryFile     EventCategory = "FILE"
	CategoryCodeExec EventCategory = "CODE_EXEC"
	CategoryMemory   EventCategory = "MEMORY"
)

// StackFrame is one hop of the call stack captured at event time
type StackFrame struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// RuntimeEvent is one instrumented observation from a sandboxed run
type RuntimeEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Level     EventLevel    `json:"level"`
	Category  EventCategory `json:"category"`
	Detail    string        `json:"detail"`
	Stack     []StackFrame  `json:"stack,omitempty"`
	Raw       string        `json:"raw"` // original log line
}

// NetworkActivity is a network operation observed during execution
type NetworkActivity struct {
	Type      string    `json:"type"` // connect, bind, dns
	Target    string    `json:"target"`
	Timestamp time.Time `json:"timestamp"`
	Line      string    `json:"line"` // raw evidence line
}

// FileActivity is a file operation observed during execution
type FileActivity struct {
	Operation   string `json:"operation"` // open, read, write, delete
	Path        string `json:"file_path"`
	Mode        string `json:"mode,omitempty"`
	IsSensitive bool   `json:"is_sensitive"`
	LineNumbers []int  `json:"line_numbers"`
}

// MemoryFinding is a memory-related observation from a run
type MemoryFinding struct {
	Type        string `json:"type"` // memory_api, memory_usage
	Detail      string `json:"detail"`
	LineNumbers []int  `json:"line_numbers"`
}

// ExecutionResult is the outcome of one sandboxed target run
type ExecutionResult struct {
	ReturnCode int            `json:"return_code"`
	Stdout     string         `json:"stdout"`
	Stderr     string         `json:"stderr"`
	Duration   time.Duration  `json:"execution_time"`
	TimedOut   bool           `json:"timed_out"`
	Events     []RuntimeEvent `json:"log_entries"`
	LogPath    string         `json:"log_path,omitempty"`
}

// BuildResult is the outcome of compiling a target before monitoring
type BuildResult struct {
	ReturnCode  int    `json:"return_code"`
	Stdout      string `json:"stdout"`
	Stderr      string `json:"stderr"`
	ToolPath    string `json:"tool_path"`
	SourcePath  string `json:"source_path"`
	BuildTarget string `json:"build_target"`
	BuildDir    string `json:"build_dir"`
}

// FuzzCase is the outcome of one fuzzing iteration
type FuzzCase struct {
	Input             string            `json:"input"`
	ReturnCode        int               `json:"return_code"`
	Crashed           bool              `json:"crashed"`
	TimedOut          bool              `json:"timed_out"`
	Stderr            string            `json:"stderr,omitempty"`
	CrashLines        []int             `json:"crash_lines,omitempty"`
	NetworkActivities []NetworkActivity `json:"network_activities,omitempty"`
}

// DynamicResults collects all dynamic engine outputs for one source unit
type DynamicResults struct {
	Events            []RuntimeEvent    `json:"syscalls"`
	NetworkActivities []NetworkActivity `json:"network_activities"`
	FileActivities    []FileActivity    `json:"file_activities"`
	MemoryFindings    []MemoryFinding   `json:"memory_findings"`
	FuzzResults       []FuzzCase        `json:"fuzz_results"`
	Execution         *ExecutionResult  `json:"execution,omitempty"`
	Build             *BuildResult      `json:"build,omitempty"`
	ExecutionLog      string            `json:"execution_log,omitempty"`
	Note              string            `json:"note,omitempty"`          // set when an engine was skipped
	MonitorError      string            `json:"monitor_error,omitempty"` // non-fatal sampling failure
}

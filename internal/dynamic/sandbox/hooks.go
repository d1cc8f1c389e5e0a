// Package sandbox executes untrusted targets out of process with
// runtime instrumentation and turns the hook log into structured events.
package sandbox

import (
	"strings"

	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

// RuntimeHookSet selects which hook categories the instrumented run
// installs. A fresh value is built per invocation so concurrent runs
// never share hook state.
type RuntimeHookSet struct {
	Syscall  bool
	Network  bool
	File     bool
	CodeExec bool
	Memory   bool
}

// DefaultHookSet enables every hook category.
func DefaultHookSet() RuntimeHookSet {
	return RuntimeHookSet{
		Syscall:  true,
		Network:  true,
		File:     true,
		CodeExec: true,
		Memory:   true,
	}
}

// envValue renders the set for the GUARDIAN_SANDBOX_HOOKS variable the
// instrumentation shim reads.
func (h RuntimeHookSet) envValue() string {
	var cats []string
	if h.Syscall {
		cats = append(cats, string(models.CategorySyscall))
	}
	if h.Network {
		cats = append(cats, string(models.CategoryNetwork))
	}
	if h.File {
		cats = append(cats, string(models.CategoryFile))
	}
	if h.CodeExec {
		cats = append(cats, string(models.CategoryCodeExec))
	}
	if h.Memory {
		cats = append(cats, string(models.CategoryMemory))
	}
	return strings.Join(cats, ",")
}

// sensitiveMarkers are path fragments whose access is always alarming.
var sensitiveMarkers = []string{
	"/etc/passwd",
	"/etc/shadow",
	".env",
	".git/config",
	"config.json",
	"secrets.json",
	"credentials.json",
	"private_key",
	"id_rsa",
	"id_dsa",
}

// IsSensitivePath reports whether the path touches a known secret or
// system credential location.
func IsSensitivePath(path string) bool {
	lowered := strings.ToLower(strings.ReplaceAll(path, "\\", "/"))
	for _, marker := range sensitiveMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

package rules

import "github.com/SunXiangyuNico/OSS-Guardian/pkg/models"

// builtinRules is the default detection rule set compiled into the
// binary. Rule id prefixes (rce_, webshell_, backdoor_, sql_injection_,
// network_, file_) feed threat categorization downstream.
var builtinRules = []*models.Rule{
	// Python
	{
		ID:          "py_rce_eval",
		Name:        "Python eval call",
		Description: "eval() executes arbitrary expressions at runtime",
		Severity:    models.SeverityCritical,
		Pattern:     `\beval\s*\(`,
		Language:    "python",
	},
	{
		ID:          "py_rce_exec",
		Name:        "Python exec call",
		Description: "exec() executes arbitrary statements at runtime",
		Severity:    models.SeverityCritical,
		Pattern:     `\bexec\s*\(`,
		Language:    "python",
	},
	{
		ID:          "py_rce_os_system",
		Name:        "Shell command via os.system",
		Description: "os.system() passes its argument to the shell",
		Severity:    models.SeverityCritical,
		Pattern:     `os\.(system|popen)\s*\(`,
		Language:    "python",
	},
	{
		ID:          "py_rce_subprocess",
		Name:        "Subprocess invocation",
		Description: "subprocess with untrusted arguments can execute commands",
		Severity:    models.SeverityHigh,
		Pattern:     `subprocess\.(call|run|Popen|check_output)\s*\(`,
		Language:    "python",
	},
	{
		ID:          "webshell_py_shell_spawn",
		Name:        "Interactive shell spawn",
		Description: "pty.spawn or fd duplication onto a socket indicates a web/reverse shell",
		Severity:    models.SeverityCritical,
		Pattern:     `pty\.spawn\s*\(|os\.dup2\s*\(`,
		Language:    "python",
	},
	{
		ID:          "backdoor_py_listener",
		Name:        "Socket listener",
		Description: "a listening socket in a script is a common backdoor primitive",
		Severity:    models.SeverityHigh,
		Pattern:     `\.listen\s*\(\s*\d*\s*\)`,
		Language:    "python",
	},
	{
		ID:          "sql_injection_py_format",
		Name:        "SQL built by string formatting",
		Description: "query strings assembled with % or + formatting invite injection",
		Severity:    models.SeverityHigh,
		Pattern:     `(execute|executemany)\s*\([^)]*(%|\+)`,
		Language:    "python",
	},
	{
		ID:          "network_py_outbound",
		Name:        "Outbound HTTP request",
		Description: "outbound requests can exfiltrate data",
		Severity:    models.SeverityMedium,
		Pattern:     `urllib\.request\.urlopen\s*\(|requests\.(get|post)\s*\(`,
		Language:    "python",
	},
	{
		ID:          "file_py_write",
		Name:        "File opened for writing",
		Description: "write-mode open of files from a script",
		Severity:    models.SeverityMedium,
		Pattern:     `open\s*\([^)]*,\s*['"][wa]b?['"]`,
		Language:    "python",
	},
	{
		ID:          "py_deserialization",
		Name:        "Unsafe deserialization",
		Description: "pickle/marshal load of untrusted data executes code",
		Severity:    models.SeverityHigh,
		Pattern:     `pickle\.loads?\s*\(|marshal\.loads?\s*\(`,
		Language:    "python",
	},

	// Go
	{
		ID:          "rce_go_exec_command",
		Name:        "External command execution",
		Description: "exec.Command with untrusted input can run arbitrary programs",
		Severity:    models.SeverityHigh,
		Pattern:     `exec\.Command(Context)?\s*\(`,
		Language:    "go",
	},
	{
		ID:          "rce_go_syscall_exec",
		Name:        "Process image replacement",
		Description: "syscall.Exec replaces the process image",
		Severity:    models.SeverityCritical,
		Pattern:     `syscall\.Exec\s*\(`,
		Language:    "go",
	},
	{
		ID:          "sql_injection_go_concat",
		Name:        "SQL built by concatenation",
		Description: "query strings assembled with + invite injection",
		Severity:    models.SeverityHigh,
		Pattern:     `\.(Query|Exec)(Context)?\s*\(\s*"[^"]*"\s*\+`,
		Language:    "go",
	},
	{
		ID:          "network_go_dial",
		Name:        "Raw network dial",
		Description: "net.Dial opens arbitrary outbound connections",
		Severity:    models.SeverityMedium,
		Pattern:     `net\.Dial(Timeout)?\s*\(`,
		Language:    "go",
	},
	{
		ID:          "file_go_write",
		Name:        "File write operation",
		Description: "direct file creation or write",
		Severity:    models.SeverityMedium,
		Pattern:     `os\.(OpenFile|Create|WriteFile)\s*\(`,
		Language:    "go",
	},
	{
		ID:          "go_unsafe_pointer",
		Name:        "Unsafe pointer use",
		Description: "unsafe.Pointer bypasses type safety",
		Severity:    models.SeverityMedium,
		Pattern:     `unsafe\.Pointer`,
		Language:    "go",
	},

	// Java
	{
		ID:          "rce_java_runtime_exec",
		Name:        "Runtime.exec call",
		Description: "Runtime.getRuntime().exec runs external commands",
		Severity:    models.SeverityCritical,
		Pattern:     `Runtime\.getRuntime\s*\(\s*\)\s*\.exec`,
		Language:    "java",
	},
	{
		ID:          "rce_java_processbuilder",
		Name:        "ProcessBuilder invocation",
		Description: "ProcessBuilder with untrusted arguments can run commands",
		Severity:    models.SeverityHigh,
		Pattern:     `new\s+ProcessBuilder\s*\(`,
		Language:    "java",
	},
	{
		ID:          "sql_injection_java_concat",
		Name:        "SQL built by concatenation",
		Description: "statement execution over concatenated strings invites injection",
		Severity:    models.SeverityHigh,
		Pattern:     `(executeQuery|executeUpdate|execute)\s*\([^)]*\+`,
		Language:    "java",
	},
	{
		ID:          "network_java_socket",
		Name:        "Outbound socket or URL",
		Description: "raw sockets and URL connections can exfiltrate data",
		Severity:    models.SeverityMedium,
		Pattern:     `new\s+(Socket|URL|HttpURLConnection)\s*\(`,
		Language:    "java",
	},
	{
		ID:          "file_java_write",
		Name:        "File write stream",
		Description: "direct file output streams",
		Severity:    models.SeverityMedium,
		Pattern:     `new\s+(FileWriter|FileOutputStream|PrintWriter)\s*\(`,
		Language:    "java",
	},
	{
		ID:          "java_deserialization",
		Name:        "Unsafe deserialization",
		Description: "ObjectInputStream.readObject on untrusted data executes gadget chains",
		Severity:    models.SeverityHigh,
		Pattern:     `new\s+ObjectInputStream\s*\(|\.readObject\s*\(|\.readUnshared\s*\(`,
		Language:    "java",
	},

	// All languages
	{
		ID:          "secret_hardcoded",
		Name:        "Hardcoded credential",
		Description: "credential-looking literal assigned in source",
		Severity:    models.SeverityMedium,
		Pattern:     `(?i)(password|passwd|secret|api_key|apikey|token)\s*[:=]\s*["'][^"']{4,}["']`,
		Language:    "all",
	},
}

// DefaultRuleSet returns the compiled built-in rule set
func DefaultRuleSet() *models.RuleSet {
	rs := models.NewRuleSet()
	for _, r := range builtinRules {
		rule := *r
		rule.Enabled = true
		// Built-in patterns are known-good; a compile failure here is a
		// programming error, but the rule engine contract is to skip, not fail.
		_ = rs.AddRule(&rule)
	}
	return rs
}

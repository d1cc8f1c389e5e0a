package taint

import (
	"regexp"

	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

// sinkRule binds a sink pattern to its rule identity. Sink rules are
// ordered; the first match on a line wins.
type sinkRule struct {
	pattern  *regexp.Regexp
	ruleID   string
	ruleName string
	severity models.Severity
}

// languageTable configures the generic engine for one language.
type languageTable struct {
	sources          []*regexp.Regexp
	sinks            []sinkRule
	lineComment      string
	blockComments    bool
	shortDecl        bool     // := counts as assignment
	lhsLastToken     bool     // typed declarations put the name last
	lhsStripPrefixes []string // keywords removed from the left-hand side
}

var pythonTable = &languageTable{
	sources: []*regexp.Regexp{
		regexp.MustCompile(`sys\.argv`),
		regexp.MustCompile(`\binput\s*\(`),
		regexp.MustCompile(`\braw_input\s*\(`),
	},
	sinks: []sinkRule{
		{regexp.MustCompile(`os\.(system|popen)\s*\(`), "py_rce_os_system", "Python RCE - os.system", models.SeverityCritical},
		{regexp.MustCompile(`subprocess\.(call|run|Popen)\s*\(`), "py_rce_subprocess", "Python RCE - subprocess", models.SeverityCritical},
		{regexp.MustCompile(`\beval\s*\(`), "py_rce_eval", "Python RCE - eval", models.SeverityCritical},
		{regexp.MustCompile(`\bexec\s*\(`), "py_rce_exec", "Python RCE - exec", models.SeverityCritical},
	},
	lineComment: "#",
}

var goTable = &languageTable{
	sources: []*regexp.Regexp{
		regexp.MustCompile(`os\.Args`),
		regexp.MustCompile(`flag\.String\(`),
		regexp.MustCompile(`flag\.Int\(`),
		regexp.MustCompile(`flag\.Bool\(`),
		regexp.MustCompile(`http\.Request\.FormValue\(`),
		regexp.MustCompile(`http\.Request\.PostFormValue\(`),
		regexp.MustCompile(`http\.Request\.Header\.Get\(`),
		regexp.MustCompile(`c\.Query\(`),
		regexp.MustCompile(`c\.Param\(`),
	},
	sinks: []sinkRule{
		{regexp.MustCompile(`exec\.CommandContext\(`), "go_rce_exec_command", "Go RCE - exec.CommandContext", models.SeverityCritical},
		{regexp.MustCompile(`exec\.Command\(`), "go_rce_exec_command", "Go RCE - exec.Command", models.SeverityCritical},
		{regexp.MustCompile(`exec\.Run\(`), "go_rce_exec_command", "Go RCE - exec.Run", models.SeverityCritical},
		{regexp.MustCompile(`(os|syscall)\.Exec\(`), "go_os_exec", "Go RCE - os/exec Usage", models.SeverityCritical},
		{regexp.MustCompile(`sql\.DB\.(Query|Exec)\(`), "go_sql_injection", "Go SQL Injection - String Concatenation", models.SeverityHigh},
		{regexp.MustCompile(`os\.(OpenFile|Create|WriteFile)\(`), "go_file_write", "Go File Write Operation", models.SeverityMedium},
		{regexp.MustCompile(`net\.Dial\(`), "go_network_dial", "Go Network - net.Dial()", models.SeverityMedium},
	},
	lineComment:      "//",
	blockComments:    true,
	shortDecl:        true,
	lhsStripPrefixes: []string{"if ", "for ", "switch ", "var "},
}

var javaTable = &languageTable{
	sources: []*regexp.Regexp{
		regexp.MustCompile(`System\.in`),
		regexp.MustCompile(`args\s*\[`),
		regexp.MustCompile(`request\.getParameter\(`),
		regexp.MustCompile(`request\.getHeader\(`),
		regexp.MustCompile(`request\.getQueryString\(`),
		regexp.MustCompile(`request\.getCookies\(`),
		regexp.MustCompile(`session\.getAttribute\(`),
	},
	sinks: []sinkRule{
		{regexp.MustCompile(`Runtime\.getRuntime\(\)\.exec\(`), "java_rce_runtime_exec", "Java RCE - Runtime.exec()", models.SeverityCritical},
		{regexp.MustCompile(`new\s+ProcessBuilder\(|ProcessBuilder\(`), "java_rce_processbuilder", "Java RCE - ProcessBuilder", models.SeverityCritical},
		{regexp.MustCompile(`(Statement|PreparedStatement)\.execute(Query|Update|)\(`), "java_sql_injection", "Java SQL Injection - String Concatenation", models.SeverityHigh},
		{regexp.MustCompile(`(FileWriter|FileOutputStream|PrintWriter)\(`), "java_file_operation", "Java File Operation", models.SeverityMedium},
		{regexp.MustCompile(`(Socket|URL|HttpURLConnection)\s*\(|\.connect\s*\(`), "java_network_connection", "Java Network Connection", models.SeverityMedium},
		{regexp.MustCompile(`(ObjectInputStream|readObject|readUnshared)\s*\(`), "java_deserialization", "Java Deserialization Risk", models.SeverityHigh},
	},
	lineComment:   "//",
	blockComments: true,
	lhsLastToken:  true,
}

// tableFor returns the engine configuration for a language, or nil
// when the language has no taint support.
func tableFor(lang models.Language) *languageTable {
	switch lang {
	case models.LangPython:
		return pythonTable
	case models.LangGo:
		return goTable
	case models.LangJava:
		return javaTable
	}
	return nil
}

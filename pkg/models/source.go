package models

// Language identifies the programming language of a source unit
type Language string

const (
	LangPython  Language = "python"
	LangGo      Language = "go"
	LangJava    Language = "java"
	LangUnknown Language = "unknown"
)

// IsSupported reports whether the language has analysis engines
func (l Language) IsSupported() bool {
	switch l {
	case LangPython, LangGo, LangJava:
		return true
	}
	return false
}

// DisplayName returns a human-readable language name
func (l Language) DisplayName() string {
	switch l {
	case LangPython:
		return "Python"
	case LangGo:
		return "Go"
	case LangJava:
		return "Java"
	default:
		return "Unknown"
	}
}

// SymbolKind classifies an entry in a source model
type SymbolKind string

const (
	SymbolFunction SymbolKind = "function"
	SymbolMethod   SymbolKind = "method"
	SymbolClass    SymbolKind = "class"
	SymbolVariable SymbolKind = "variable"
)

// Symbol is a named declaration found in source code
type Symbol struct {
	Name      string     `json:"name"`
	Kind      SymbolKind `json:"kind"`
	Line      int        `json:"line"`
	EndLine   int        `json:"end_line,omitempty"`
	ClassName string     `json:"class_name,omitempty"` // enclosing class for methods
}

// ImportRecord is a single import declaration
type ImportRecord struct {
	Path string `json:"path"`
	Line int    `json:"line"`
}

// SourceModel is the structural inventory of a single source unit.
// Python models come from a real parse tree; Go and Java models are
// lexical approximations.
type SourceModel struct {
	Language  Language       `json:"language"`
	Package   string         `json:"package,omitempty"` // go/java package name
	Imports   []ImportRecord `json:"imports"`
	Functions []Symbol       `json:"functions"`
	Classes   []Symbol       `json:"classes"`
	Variables []Symbol       `json:"variables"`
	ParseOK   bool           `json:"parse_ok"`
	Note      string         `json:"note,omitempty"`
}

// Dependency is a declared third-party dependency from a manifest file
type Dependency struct {
	Name       string `json:"name"`
	Version    string `json:"version"`              // "unknown" when the manifest pins nothing
	Constraint string `json:"constraint,omitempty"` // ==, >=, etc.
	Source     string `json:"source"`               // manifest file the entry came from
}

// CVEMatch links a declared dependency to a known vulnerability.
// Matches are supplied by the caller; no online lookup happens here.
type CVEMatch struct {
	Dependency string   `json:"dependency"`
	Version    string   `json:"version"`
	ID         string   `json:"id"`
	Severity   Severity `json:"severity"`
	Summary    string   `json:"summary,omitempty"`
}

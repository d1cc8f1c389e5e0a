package models

import "regexp"

// Rule is a regex detection rule scoped to a language.
// Language "all" applies the rule to every source unit.
type Rule struct {
	ID          string         `yaml:"id" json:"id"`
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description" json:"description"`
	Severity    Severity       `yaml:"severity" json:"severity"`
	Pattern     string         `yaml:"pattern" json:"pattern"`
	Language    string         `yaml:"language" json:"language"`
	Enabled     bool           `yaml:"enabled" json:"enabled"`
	CompiledRe  *regexp.Regexp `yaml:"-" json:"-"`
}

// RuleSet contains all loaded detection rules
type RuleSet struct {
	Rules      []*Rule
	ByID       map[string]*Rule
	ByLanguage map[string][]*Rule
}

// NewRuleSet creates an empty rule set
func NewRuleSet() *RuleSet {
	return &RuleSet{
		Rules:      make([]*Rule, 0),
		ByID:       make(map[string]*Rule),
		ByLanguage: make(map[string][]*Rule),
	}
}

// AddRule adds a rule and compiles its pattern.
// Returns the compile error without adding the rule when the pattern is invalid.
func (rs *RuleSet) AddRule(rule *Rule) error {
	re, err := regexp.Compile(rule.Pattern)
	if err != nil {
		return err
	}
	rule.CompiledRe = re

	if rule.Language == "" {
		rule.Language = "all"
	}

	rs.Rules = append(rs.Rules, rule)
	rs.ByID[rule.ID] = rule
	rs.ByLanguage[rule.Language] = append(rs.ByLanguage[rule.Language], rule)
	return nil
}

// ForLanguage returns enabled rules applicable to the given language,
// in insertion order. Rules tagged "all" always apply.
func (rs *RuleSet) ForLanguage(lang Language) []*Rule {
	var out []*Rule
	for _, rule := range rs.Rules {
		if !rule.Enabled {
			continue
		}
		if rule.Language == "all" || rule.Language == string(lang) {
			out = append(out, rule)
		}
	}
	return out
}

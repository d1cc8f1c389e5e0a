// Package rules loads detection rules from YAML files and provides the
// built-in default rule set.
package rules

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Loader loads rules from YAML files
type Loader struct {
	rulesPath string
	logger    *zap.Logger
}

// NewLoader creates a new rule loader
func NewLoader(rulesPath string, logger *zap.Logger) *Loader {
	return &Loader{
		rulesPath: rulesPath,
		logger:    logger,
	}
}

// RuleFile represents a YAML rule file
type RuleFile struct {
	Rules []*models.Rule `yaml:"rules"`
}

// Load loads all rules from the rules directory on top of the built-in
// set. A missing directory yields just the built-ins. Rules with
// invalid patterns are skipped with a warning; they never fail the load.
func (l *Loader) Load() (*models.RuleSet, error) {
	rs := DefaultRuleSet()

	if l.rulesPath == "" {
		return rs, nil
	}
	if _, err := os.Stat(l.rulesPath); os.IsNotExist(err) {
		return rs, nil
	}

	err := filepath.Walk(l.rulesPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Skip directories and non-YAML files
		if info.IsDir() || (filepath.Ext(path) != ".yaml" && filepath.Ext(path) != ".yml") {
			return nil
		}

		if err := l.loadFile(path, rs); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}

		return nil
	})

	return rs, err
}

// loadFile loads rules from a single YAML file
func (l *Loader) loadFile(path string, rs *models.RuleSet) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var ruleFile RuleFile
	if err := yaml.Unmarshal(data, &ruleFile); err != nil {
		return err
	}

	for _, rule := range ruleFile.Rules {
		if rule.Pattern == "" {
			continue
		}
		if rule.Severity == "" {
			rule.Severity = models.SeverityMedium
		}
		rule.Enabled = true

		if err := rs.AddRule(rule); err != nil {
			// One bad pattern never blocks the rest of the file
			l.logger.Warn("Skipping rule with invalid pattern",
				zap.String("rule_id", rule.ID),
				zap.String("file", path),
				zap.Error(err))
		}
	}

	return nil
}

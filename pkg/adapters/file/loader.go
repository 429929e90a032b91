package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ruleSetExts are the file extensions recognised as rule set documents.
var ruleSetExts = []string{".yaml", ".yml", ".json"}

// Loader implements ports.RuleSetLoader over a directory of rule set files.
// A file named algebra.yaml is the rule set "algebra".
type Loader struct {
	Dir string
}

// NewLoader creates a Loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir}
}

// GetRuleSet reads the document for name, trying each known extension.
func (l *Loader) GetRuleSet(name string) ([]byte, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("invalid rule set name %q", name)
	}
	for _, ext := range ruleSetExts {
		data, err := os.ReadFile(filepath.Join(l.Dir, name+ext))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read rule set %s: %w", name, err)
		}
	}
	return nil, fmt.Errorf("rule set not found: %s", name)
}

// ListRuleSets returns the names of all rule set files in the directory.
func (l *Loader) ListRuleSets() ([]string, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list rule sets: %w", err)
	}

	seen := make(map[string]bool)
	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if !isRuleSetExt(ext) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ext)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func isRuleSetExt(ext string) bool {
	for _, e := range ruleSetExts {
		if e == ext {
			return true
		}
	}
	return false
}

package memory

import (
	"fmt"
	"sort"
)

// Loader implements ports.RuleSetLoader using an in-memory map of rule set
// documents (YAML or JSON).
type Loader struct {
	sets map[string][]byte
}

// NewLoader creates a Loader with the provided raw documents.
func NewLoader(data map[string]string) *Loader {
	sets := make(map[string][]byte, len(data))
	for k, v := range data {
		sets[k] = []byte(v)
	}
	return &Loader{sets: sets}
}

// GetRuleSet returns the raw document of a rule set.
func (l *Loader) GetRuleSet(name string) ([]byte, error) {
	content, ok := l.sets[name]
	if !ok {
		return nil, fmt.Errorf("rule set not found: %s", name)
	}
	return content, nil
}

// ListRuleSets returns all rule set names.
func (l *Loader) ListRuleSets() ([]string, error) {
	keys := make([]string, 0, len(l.sets))
	for k := range l.sets {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}

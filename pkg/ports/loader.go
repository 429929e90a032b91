package ports

// RuleSetLoader retrieves rule set documents by name. The raw bytes are YAML
// or JSON and are decoded by package ruleset.
type RuleSetLoader interface {
	// GetRuleSet returns the raw document of the named rule set.
	GetRuleSet(name string) ([]byte, error)

	// ListRuleSets returns the available names in sorted order.
	ListRuleSets() ([]string, error)
}

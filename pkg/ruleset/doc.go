// Package ruleset loads named rewrite rules from YAML or JSON documents.
//
// A document names the set, optionally a context base and extra pattern
// variables, and lists rules in infix (expr) or prefix (expr_prefix) form:
//
//	name: algebra
//	context: arithmetic
//	variables: [X]
//	rules:
//	  - id: add_zero
//	    label: Add by Zero
//	    expr_prefix: "=(+(X,0),X)"
//
// Rule IDs are namespaced by the set name, so the rule above is installed
// as "algebra/add_zero".
package ruleset

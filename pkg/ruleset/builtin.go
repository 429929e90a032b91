package ruleset

import (
	_ "embed"
	"fmt"
)

//go:embed algebra.yaml
var algebraDocument []byte

// Builtin returns the algebra identities: add_zero, zero_add, mul_one,
// one_mul, mul_zero, zero_mul and div_one, over the pattern variable X.
func Builtin() *RuleSet {
	set, err := Parse(algebraDocument)
	if err != nil {
		panic(fmt.Sprintf("ruleset: builtin algebra set: %v", err))
	}
	return set
}

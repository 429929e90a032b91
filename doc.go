/*
Package equaio is a symbolic term-rewriting engine for stepwise equation
derivation.

A derivation starts from an equality such as x + 3 = 5 and transforms it one
step at a time: rewriting with named rules (a + 0 = a), applying the same
operation to both sides, or evaluating literal arithmetic. Every step is kept
in an append-only history, together with a diagnostic log of rejected
operations, until the current statement equals the target.

# Usage

	t, err := equaio.New(nil)
	if err != nil {
		log.Fatal(err)
	}
	t.SetTargetEq("x = 2")
	t.SetCurrentEq("x + 3 = 5")
	t.ApplyArithmeticToBothSide(arithmetic.Subtract, "3", "")
	...
	fmt.Println(t.TargetReached())

# Architecture

  - pkg/expr: immutable expression trees, pattern matching and rule rewriting.
  - pkg/arithmetic: the arithmetic context and numeric normalizations.
  - pkg/parser: infix and prefix notation.
  - pkg/task: the derivation state machine.
  - pkg/ruleset and pkg/runner: rule sets and derivation scripts as YAML.
  - pkg/session and pkg/adapters: stored derivations served over HTTP and MCP.
*/
package equaio

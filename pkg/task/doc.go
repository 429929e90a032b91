/*
Package task implements the derivation state machine.

A Task holds a Context, named rules, the current and target equalities and
an append-only history. Every operation returns true on success. On failure
it returns false, appends a message to the diagnostic log and leaves
current, target, rules and history untouched; LastError exposes the same
failure as an error matching a pkg/domain sentinel.

	t := task.New(arithmetic.Context("a"))
	t.SetCurrentEq("x + 3 = 5")
	t.ApplyArithmeticToBothSide(arithmetic.Subtract, "3", "")
	// current: (x + 3) - 3 = 5 - 3

Rule application always commits to the first rewrite site in pre-order.
Candidates and ApplyRuleChoice expose the others.
*/
package task

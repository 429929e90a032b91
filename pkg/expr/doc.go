/*
Package expr implements the expression tree of the rewriting engine and the
algorithms that operate on it.

# Trees and addresses

An Expression is a Value, UnaryOperator or BinaryOperator node carrying a
symbol, a bracketed flag and exactly 0, 1 or 2 children. Trees are treated as
immutable values: At, Replace, SwapTwoElement and the rest always return new
trees and leave their receiver alone. An Address is the path of child indices
from the root; AllAddresses enumerates them in pre-order.

# Matching

A pattern is an ordinary Expression whose Context-declared variables act as
wildcards. CanPatternMatch is the cheap shape test, TryMatchPattern performs
full unification and ApplyVariableMap instantiates a template from the
resulting Bindings. SubstituteSymbol is the unrelated textual substitution
used when a function is applied to both sides of an equality.

# Chains and rules

OperatorChainFrom flattens nested uses of one binary operator, which is what
SwapTwoElement and StripParenthesesForAssociativeOp work on. ApplyRuleEqual
rewrites every match site of an equality rule, one candidate per site.
*/
package expr

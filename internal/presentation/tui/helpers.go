package tui

import (
	"sort"

	"github.com/aretw0/equaio/pkg/expr"
)

func code(e *expr.Expression) string {
	if e == nil {
		return "_None_"
	}
	return "`" + e.String() + "`"
}

func sortedKeys(m map[string]expr.Expression) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

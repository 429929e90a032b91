package ruleset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/equaio/pkg/adapters/memory"
	"github.com/aretw0/equaio/pkg/arithmetic"
	"github.com/aretw0/equaio/pkg/domain"
	"github.com/aretw0/equaio/pkg/ruleset"
	"github.com/aretw0/equaio/pkg/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin(t *testing.T) {
	set := ruleset.Builtin()

	assert.Equal(t, "algebra", set.Name)
	assert.Equal(t, []string{
		"algebra/add_zero", "algebra/div_one", "algebra/mul_one", "algebra/mul_zero",
		"algebra/one_mul", "algebra/zero_add", "algebra/zero_mul",
	}, set.IDs())

	rule, ok := set.Lookup("add_zero")
	require.True(t, ok)
	assert.Equal(t, "algebra/add_zero", rule.ID)
	assert.Equal(t, "Add by Zero", rule.Label)
	assert.Equal(t, "X + 0 = X", rule.Expression.String())

	rule, ok = set.Lookup("algebra/div_one")
	require.True(t, ok)
	assert.Equal(t, "X / 1 = X", rule.Expression.String())

	_, ok = set.Lookup("missing")
	assert.False(t, ok)
}

func TestInstall_DrivesTask(t *testing.T) {
	tk := task.New(arithmetic.Context("X"))
	require.NoError(t, ruleset.Builtin().Install(tk))
	assert.Len(t, tk.Rules(), 7)

	require.True(t, tk.SetCurrentEq("y * 1 = 0 + 5"))
	require.True(t, tk.ApplyRule("algebra/mul_one", ""))
	require.True(t, tk.ApplyRule("algebra/zero_add", ""))

	cur, ok := tk.Current()
	require.True(t, ok)
	assert.Equal(t, "y = 5", cur.String())

	history := tk.History()
	require.Len(t, history, 3)
	assert.Equal(t, "Multiply by One", history[1].Label)
	assert.Equal(t, "Add by Zero", history[2].Label)
	assert.Equal(t, "Multiply by One", tk.RuleLabel("algebra/mul_one"))
}

func TestInstall_MissingVariable(t *testing.T) {
	tk := task.New(arithmetic.Context("x"))
	err := ruleset.Builtin().Install(tk)
	assert.ErrorIs(t, err, ruleset.ErrMissingVariable)
	assert.Empty(t, tk.Rules())
}

func TestParse(t *testing.T) {
	set, err := ruleset.Parse([]byte(`
name: mine
variables: [A, B]
rules:
  - id: comm
    label: Commute
    expr: "A + B = B + A"
  - id: double
    expr_prefix: "=(+(A,A),*(2,A))"
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"mine/comm", "mine/double"}, set.IDs())
	assert.True(t, set.Context.IsVariable("A"))
	assert.Equal(t, "A + A = 2 * A", set.Map()["mine/double"].String())
}

func TestParse_JSONDocument(t *testing.T) {
	doc := []byte(`{"name": "j", "context": "arithmetic", "variables": ["X"], "rules": [{"id": "r", "expr_prefix": "=(-(X,X),0)"}]}`)

	for name, parse := range map[string]func([]byte) (*ruleset.RuleSet, error){
		"yaml decoder": ruleset.Parse,
		"json decoder": ruleset.ParseJSON,
	} {
		set, err := parse(doc)
		require.NoError(t, err, name)
		assert.Equal(t, "X - X = 0", set.Rules[0].Expression.String(), name)
	}
}

func TestParse_ContextForms(t *testing.T) {
	docs := map[string]string{
		"string":      `{"name": "c", "context": "arithmetic", "variables": ["X"], "rules": [{"id": "r", "expr": "X * 1 = X"}]}`,
		"object":      `{"name": "c", "context": {"base": "arithmetic"}, "variables": ["X"], "rules": [{"id": "r", "expr": "X * 1 = X"}]}`,
		"null":        `{"name": "c", "context": null, "variables": ["X"], "rules": [{"id": "r", "expr": "X * 1 = X"}]}`,
		"yaml object": "name: c\ncontext:\n  base: arithmetic\nvariables: [X]\nrules:\n  - id: r\n    expr: \"X * 1 = X\"\n",
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			set, err := ruleset.Parse([]byte(doc))
			require.NoError(t, err)
			assert.Equal(t, "X * 1 = X", set.Rules[0].Expression.String())

			if name == "yaml object" {
				return
			}
			set, err = ruleset.ParseJSON([]byte(doc))
			require.NoError(t, err)
			assert.True(t, set.Context.IsVariable("X"))
		})
	}

	_, err := ruleset.ParseJSON([]byte(`{"name": "c", "context": {"base": "logic"}, "rules": []}`))
	assert.ErrorIs(t, err, domain.ErrParse)
	_, err = ruleset.Parse([]byte("name: c\ncontext: {base: logic}\nrules: []\n"))
	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"not yaml":       "name: [",
		"no name":        "rules: []",
		"unknown base":   "name: s\ncontext: logic\nrules: []",
		"no id":          "name: s\nrules:\n  - expr: \"X = X\"",
		"no expression":  "name: s\nrules:\n  - id: a",
		"both forms":     "name: s\nrules:\n  - id: a\n    expr: \"X = X\"\n    expr_prefix: \"=(X,X)\"",
		"bad infix":      "name: s\nrules:\n  - id: a\n    expr: \"X + = X\"",
		"bad prefix":     "name: s\nrules:\n  - id: a\n    expr_prefix: \"=(X,X\"",
		"not equality":   "name: s\nrules:\n  - id: a\n    expr_prefix: \"+(X,0)\"",
		"duplicate id":   "name: s\nrules:\n  - id: a\n    expr: \"X = X\"\n  - id: a\n    expr: \"X = X\"",
		"missing equals": "name: s\nrules:\n  - id: a\n    expr: \"X + 0\"",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ruleset.Parse([]byte(doc))
			assert.ErrorIs(t, err, domain.ErrParse)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "a.yaml")
	jsonPath := filepath.Join(dir, "b.json")
	require.NoError(t, os.WriteFile(yamlPath, []byte("name: a\nvariables: [X]\nrules:\n  - id: r\n    expr: \"X * 0 = 0\"\n"), 0o644))
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"name": "b", "rules": []}`), 0o644))

	set, err := ruleset.LoadFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/r"}, set.IDs())

	set, err = ruleset.LoadFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "b", set.Name)
	assert.Empty(t, set.Rules)

	_, err = ruleset.LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_FromLoader(t *testing.T) {
	loader := memory.NewLoader(map[string]string{
		"logs": "name: logs\nvariables: [X]\nrules:\n  - id: zero\n    expr: \"X ^ 0 = 1\"\n",
	})

	set, err := ruleset.Load(loader, "logs")
	require.NoError(t, err)
	assert.Equal(t, "X ^ 0 = 1", set.Rules[0].Expression.String())

	_, err = ruleset.Load(loader, "absent")
	assert.Error(t, err)
}

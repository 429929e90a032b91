package expr_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/equaio/pkg/expr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpressionJSON(t *testing.T) {
	e := mustParseEq(t, "(x + 3) * -y = f(1, 2)")

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"binary","symbol":"="`)
	assert.Contains(t, string(data), `"bracketed":true`)

	var back expr.Expression
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, e.Equal(back))
}

func TestExpressionJSON_Leaf(t *testing.T) {
	data, err := json.Marshal(expr.NewValue("x"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"value","symbol":"x"}`, string(data))
}

func TestExpressionJSON_Invalid(t *testing.T) {
	var e expr.Expression
	err := json.Unmarshal([]byte(`{"type":"binary","symbol":"+","children":[{"type":"value","symbol":"a"}]}`), &e)
	assert.Error(t, err)

	err = json.Unmarshal([]byte(`{"type":"ternary","symbol":"?"}`), &e)
	assert.Error(t, err)

	err = json.Unmarshal([]byte(`{"type":"unary","symbol":"-","children":[{"type":"value","symbol":"a","children":[{"type":"value","symbol":"b"}]}]}`), &e)
	assert.Error(t, err)
}

package http_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	api "github.com/aretw0/equaio/pkg/adapters/http"
	"github.com/aretw0/equaio/pkg/adapters/memory"
	"github.com/aretw0/equaio/pkg/display"
	"github.com/aretw0/equaio/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const script = `{
  "variables": ["X"],
  "rules": {"cancel": "(X + 3) - 3 = X"},
  "steps": [{"op": "set_current", "text": "x + 3 = 5"}]
}`

func newHandler(t *testing.T) http.Handler {
	t.Helper()
	return api.NewHandler(session.NewManager(memory.NewStore()))
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func create(t *testing.T, h http.Handler) string {
	t.Helper()
	w := do(t, h, http.MethodPost, "/sessions", script)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp api.CreateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	require.NotNil(t, resp.Snapshot.Current)
	assert.Equal(t, "x + 3 = 5", resp.Snapshot.Current.String())
	return resp.ID
}

func TestServer_Derivation(t *testing.T) {
	h := newHandler(t)
	id := create(t, h)

	steps := []struct {
		body string
		want string
	}{
		{`{"op": "arith_both_sides", "operator": "subtract", "value": "3"}`, "(x + 3) - 3 = 5 - 3"},
		{`{"op": "apply_rule_at", "rule": "cancel", "addr": "[0]"}`, "x = 5 - 3"},
		{`{"op": "calculate_at", "addr": "[1]"}`, "x = 2"},
	}
	for _, step := range steps {
		w := do(t, h, http.MethodPost, "/sessions/"+id+"/commands", step.body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp api.CommandResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.OK)
		require.NotNil(t, resp.Snapshot.Current)
		assert.Equal(t, step.want, resp.Snapshot.Current.String())
	}

	w := do(t, h, http.MethodGet, "/sessions/"+id+"/state", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "x = 2")
}

func TestServer_CommandFailures(t *testing.T) {
	h := newHandler(t)
	id := create(t, h)

	w := do(t, h, http.MethodPost, "/sessions/"+id+"/commands", `{"op": "apply_rule", "rule": "missing"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp api.CommandResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.Equal(t, "rule missing is not defined", resp.Error)
	assert.Equal(t, []string{"rule missing is not defined"}, resp.Snapshot.ErrorMessages)

	w = do(t, h, http.MethodPost, "/sessions/"+id+"/commands", `{"op": "fly"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/sessions/"+id+"/commands", `{"op": "swap", "colour": "red"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "unknown fields are rejected")

	w = do(t, h, http.MethodPost, "/sessions/"+id+"/commands", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/sessions/nope/commands", `{"op": "sub_to_add"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_CreateFailures(t *testing.T) {
	h := newHandler(t)

	w := do(t, h, http.MethodPost, "/sessions", `{"steps": [{"op": "set_current", "text": "x +"}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, h, http.MethodPost, "/sessions", `{"rulesets": ["geometry"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/sessions", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sessions": []}`, w.Body.String())
}

func TestServer_EmptyCreateAndLifecycle(t *testing.T) {
	h := newHandler(t)

	w := do(t, h, http.MethodPost, "/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created api.CreateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Nil(t, created.Snapshot.Current)

	w = do(t, h, http.MethodGet, "/sessions", "")
	assert.Contains(t, w.Body.String(), created.ID)

	w = do(t, h, http.MethodGet, "/sessions/"+created.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodDelete, "/sessions/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/sessions/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_Render(t *testing.T) {
	h := newHandler(t)
	id := create(t, h)

	w := do(t, h, http.MethodGet, "/sessions/"+id+"/render", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Current *json.RawMessage `json:"current"`
		Target  *json.RawMessage `json:"target"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Current)
	assert.Nil(t, resp.Target)
	assert.Contains(t, string(*resp.Current), `"kind":"`+display.Container.String()+`"`)
}

func TestServer_HealthAndInfo(t *testing.T) {
	h := newHandler(t)

	w := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/info", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"app":"equaio-http"`)
	assert.Contains(t, w.Body.String(), "arith_both_sides")

	w = do(t, h, http.MethodOptions, "/sessions", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_Events(t *testing.T) {
	h := newHandler(t)
	id := create(t, h)
	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/events?session_id=" + id + "&watch=current")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	lines := bufio.NewScanner(resp.Body)
	readData := func() string {
		for lines.Scan() {
			if data, ok := strings.CutPrefix(lines.Text(), "data: "); ok {
				return data
			}
		}
		return ""
	}
	require.Equal(t, "connected", readData())

	post := func(body string) {
		r, err := http.Post(srv.URL+"/sessions/"+id+"/commands", "application/json", bytes.NewBufferString(body))
		require.NoError(t, err)
		r.Body.Close()
	}
	// Only the error log changes, so the current-only watch filters it out.
	post(`{"op": "apply_rule", "rule": "missing"}`)
	post(`{"op": "sub_to_add"}`)
	post(`{"op": "arith_both_sides", "operator": "-", "value": "3"}`)

	msg := readData()
	assert.Contains(t, msg, `"current"`)
	assert.NotContains(t, msg, "rule missing")
}

func TestServer_EventsRequiresSession(t *testing.T) {
	w := do(t, newHandler(t), http.MethodGet, "/events", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

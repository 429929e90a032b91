package cli_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/equaio/internal/cli"
	"github.com/aretw0/equaio/internal/config"
	"github.com/aretw0/equaio/internal/logging"
	"github.com/aretw0/equaio/pkg/domain"
	"github.com/aretw0/equaio/pkg/ruleset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const derivation = `
variables: [X]
rules:
  cancel: "(X + 3) - 3 = X"
steps:
  - {op: set_target, text: "x = 2"}
  - {op: set_current, text: "x + 3 = 5"}
  - {op: arith_both_sides, operator: subtract, value: 3}
  - {op: apply_rule, rule: cancel}
`

const finish = `
steps:
  - {op: calculate, left: "5", operator: "-", right: "3"}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func memoryBackend(t *testing.T) *cli.Backend {
	t.Helper()
	b, err := cli.OpenBackend(config.Config{Store: config.StoreMemory})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestOpenBackend(t *testing.T) {
	dir := t.TempDir()
	mr := miniredis.RunT(t)

	for _, cfg := range []config.Config{
		{Store: config.StoreMemory},
		{Store: config.StoreFile, SessionDir: filepath.Join(dir, "sessions"), RulesDir: dir},
		{Store: config.StoreSQLite, SQLitePath: filepath.Join(dir, "db", "sessions.db")},
		{Store: config.StoreRedis, RedisAddr: mr.Addr()},
	} {
		t.Run(cfg.Store, func(t *testing.T) {
			b, err := cli.OpenBackend(cfg)
			require.NoError(t, err)
			defer b.Close()

			ctx := context.Background()
			require.NoError(t, b.Store.Save(ctx, "s1", domain.NewSnapshot("s1", nil)))
			ids, err := b.Store.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"s1"}, ids)
			assert.Equal(t, cfg.Store == config.StoreRedis, b.Locker != nil)
			assert.Equal(t, cfg.RulesDir != "", b.Rules != nil)
		})
	}

	_, err := cli.OpenBackend(config.Config{Store: "tape"})
	assert.Error(t, err)
}

func TestOpenBackend_Encrypted(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{
		Store:      config.StoreFile,
		SessionDir: dir,
		StoreKey:   base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32)),
	}
	b, err := cli.OpenBackend(cfg)
	require.NoError(t, err)
	defer b.Close()

	var out bytes.Buffer
	require.NoError(t, cli.RunScript(context.Background(), cli.RunOptions{
		ScriptPath: writeFile(t, "d.yaml", derivation),
		SessionID:  "secret",
		Format:     cli.FormatPlain,
	}, b, &out, logging.NewNop()))

	raw, err := os.ReadFile(filepath.Join(dir, "secret.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"sealed"`)
	assert.NotContains(t, string(raw), `"history"`)

	loaded, err := b.Store.Load(context.Background(), "secret")
	require.NoError(t, err)
	assert.Equal(t, "x = 5 - 3", loaded.Current.String())

	cfg.StoreKey = "short"
	_, err = cli.OpenBackend(cfg)
	assert.Error(t, err)
}

func TestRunScript(t *testing.T) {
	var out bytes.Buffer
	err := cli.RunScript(context.Background(), cli.RunOptions{
		ScriptPath: writeFile(t, "d.yaml", derivation),
		Format:     cli.FormatPlain,
	}, memoryBackend(t), &out, logging.NewNop())
	require.NoError(t, err)

	assert.Contains(t, out.String(), "x = 5 - 3 ... (apply rule: cancel)\n")
	assert.Contains(t, out.String(), "Current: x = 5 - 3\n")
}

func TestRunScript_SessionResumes(t *testing.T) {
	b := memoryBackend(t)
	ctx := context.Background()
	logger := logging.NewNop()

	require.NoError(t, cli.RunScript(ctx, cli.RunOptions{
		ScriptPath: writeFile(t, "d.yaml", derivation),
		SessionID:  "work",
		Format:     cli.FormatPlain,
	}, b, &bytes.Buffer{}, logger))

	var out bytes.Buffer
	require.NoError(t, cli.RunScript(ctx, cli.RunOptions{
		ScriptPath: writeFile(t, "f.yaml", finish),
		SessionID:  "work",
		Format:     cli.FormatJSON,
	}, b, &out, logger))
	assert.Contains(t, out.String(), `"id": "work"`)

	snapshot, err := b.Store.Load(ctx, "work")
	require.NoError(t, err)
	require.Len(t, snapshot.History, 4)
	assert.Equal(t, "x = 2", snapshot.Current.String())

	// Fresh starts over: the finishing script alone has no current statement.
	err = cli.RunScript(ctx, cli.RunOptions{
		ScriptPath: writeFile(t, "f.yaml", finish),
		SessionID:  "work",
		Fresh:      true,
		Format:     cli.FormatPlain,
	}, b, &bytes.Buffer{}, logger)
	assert.ErrorIs(t, err, domain.ErrCurrentNotSet)

	snapshot, err = b.Store.Load(ctx, "work")
	require.NoError(t, err)
	assert.Empty(t, snapshot.History)
	assert.Equal(t, []string{"current statement is not set"}, snapshot.ErrorMessages)
}

func TestRunScript_Errors(t *testing.T) {
	b := memoryBackend(t)
	err := cli.RunScript(context.Background(), cli.RunOptions{ScriptPath: "missing.yaml"}, b, &bytes.Buffer{}, logging.NewNop())
	assert.Error(t, err)

	var out bytes.Buffer
	err = cli.RunScript(context.Background(), cli.RunOptions{
		ScriptPath: writeFile(t, "bad.yaml", "steps:\n  - {op: set_current, text: \"x +\"}\n"),
		Format:     cli.FormatPlain,
	}, b, &out, logging.NewNop())
	assert.ErrorIs(t, err, domain.ErrParse)
	assert.Contains(t, out.String(), "Errors:\n  failed to parse statement: x +\n", "state is printed before the error is returned")
}

func TestSessions(t *testing.T) {
	b := memoryBackend(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, cli.ListSessions(ctx, b, &out))
	assert.Equal(t, "No active sessions found.\n", out.String())

	require.NoError(t, cli.RunScript(ctx, cli.RunOptions{
		ScriptPath: writeFile(t, "d.yaml", derivation),
		SessionID:  "s1",
		Format:     cli.FormatPlain,
	}, b, &bytes.Buffer{}, logging.NewNop()))

	out.Reset()
	require.NoError(t, cli.ListSessions(ctx, b, &out))
	assert.Equal(t, "s1\n", out.String())

	out.Reset()
	require.NoError(t, cli.InspectSession(ctx, b, "s1", cli.FormatPlain, &out))
	assert.Contains(t, out.String(), "Target: x = 2\n")

	require.NoError(t, cli.RemoveSession(ctx, b, "s1"))
	assert.ErrorIs(t, cli.RemoveSession(ctx, b, "s1"), domain.ErrSessionNotFound)
	assert.ErrorIs(t, cli.InspectSession(ctx, b, "s1", cli.FormatPlain, &out), domain.ErrSessionNotFound)
}

func TestPrintRuleSet(t *testing.T) {
	var out bytes.Buffer
	cli.PrintRuleSet(&out, ruleset.Builtin())
	assert.True(t, strings.HasPrefix(out.String(), "algebra (7 rules)\n"))
	assert.Contains(t, out.String(), "  algebra/add_zero: X + 0 = X  # Add by Zero\n")
}

func TestParseFormat(t *testing.T) {
	f, err := cli.ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, cli.FormatJSON, f)

	_, err = cli.ParseFormat("xml")
	assert.Error(t, err)
}

func TestRunREPL(t *testing.T) {
	b := memoryBackend(t)
	ctx := context.Background()
	in := strings.NewReader("set_current y * 1 = 5\napply_rule algebra/mul_one\n")

	var out bytes.Buffer
	require.NoError(t, cli.RunREPL(ctx, cli.REPLOptions{SessionID: "r1"}, b, in, &out, logging.NewNop()))
	assert.Contains(t, out.String(), "y = 5")

	snapshot, err := b.Store.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, snapshot.History, 2)
	assert.Contains(t, snapshot.Rules, "algebra/mul_one")

	// Resuming skips the script and continues the stored history.
	in = strings.NewReader("set_current y = 6\n")
	require.NoError(t, cli.RunREPL(ctx, cli.REPLOptions{SessionID: "r1"}, b, in, &bytes.Buffer{}, logging.NewNop()))
	snapshot, err = b.Store.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, snapshot.History, 3)
}

func TestRunREPL_JSON(t *testing.T) {
	in := strings.NewReader(`{"op": "set_current", "text": "a = b"}` + "\n")
	var out bytes.Buffer
	require.NoError(t, cli.RunREPL(context.Background(), cli.REPLOptions{JSON: true}, memoryBackend(t), in, &out, logging.NewNop()))
	assert.JSONEq(t, `{"ok": true, "current": "a = b"}`, strings.TrimSpace(out.String()))
}
